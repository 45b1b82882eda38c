package main

import (
	"context"
	"log"
	"net/http"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"

	gwconfig "github.com/giftwise/giftwise/config"
	assistanthandler "github.com/giftwise/giftwise/internal/assistant/handler"
	"github.com/giftwise/giftwise/internal/httputil"
	"github.com/giftwise/giftwise/internal/store"
	"github.com/giftwise/giftwise/pkg/dialog"
	"github.com/giftwise/giftwise/pkg/events"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWithOIDC[gwconfig.AssistantConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	activity := events.NewRecorder(0)

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("giftwise-assistant"),
		frame.WithDatastore(),
		frame.WithRegisterPublisher(eventRef, eventURL),
		frame.WithRegisterSubscriber(eventRef+".activity", eventURL, activity),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	pub := events.NewPublisher(srv.QueueManager(), "assistant", eventRef)

	repo := store.NewRepository(
		srv.DatastoreManager().GetPool(ctx, "__default__pool_name__"),
	)

	loader, err := dialog.NewLoader(cfg.FlowDir, dialog.BuiltinFlows()...)
	if err != nil {
		log.Fatalf("building flow loader: %v", err)
	}
	if _, err := loader.LoadAll(); err != nil {
		log.Printf("warning: loading flows: %v", err)
	}
	if cfg.FlowHotReload {
		watch := func() {
			if err := loader.WatchAndReload(ctx.Done()); err != nil {
				log.Printf("warning: flow watcher: %v", err)
			}
		}
		if pool != nil {
			_ = pool.Submit(ctx, watch)
		} else {
			go watch()
		}
	}

	drain := func() { activity.Run(ctx, pub.Subscribe("activity", 0)) }
	if pool != nil {
		_ = pool.Submit(ctx, drain)
	} else {
		go drain()
	}

	handler := assistanthandler.NewAssistantHandler(loader, repo, pub, pool, cfg.SessionTTL())
	handler.AttachActivity(activity)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	handler.StartReaper(ctx)

	srv.Init(ctx, frame.WithHTTPHandler(
		httputil.H2CHandler(httputil.LoggingMiddleware(mux)),
	))

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}
