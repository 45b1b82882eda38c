package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestRecorderHandle(t *testing.T) {
	rec := NewRecorder(10)
	ctx := context.Background()

	if err := rec.Handle(ctx, nil, []byte("not json")); err == nil {
		t.Fatal("expected error for malformed message")
	}
	if got := rec.Recent(0); len(got) != 0 {
		t.Fatalf("malformed message recorded: %+v", got)
	}

	raw, err := json.Marshal(Envelope{ID: "ev-1", Type: GiftCreated, SessionID: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Handle(ctx, nil, raw); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got := rec.Recent(0)
	if len(got) != 1 || got[0].ID != "ev-1" || got[0].Type != GiftCreated {
		t.Fatalf("unexpected trail: %+v", got)
	}
}

func TestRecorderRecentNewestFirstAndBounded(t *testing.T) {
	rec := NewRecorder(3)
	for _, id := range []string{"a", "b", "c", "d"} {
		rec.record(Envelope{ID: id})
	}

	got := rec.Recent(0)
	if len(got) != 3 {
		t.Fatalf("capacity not enforced, got %d events", len(got))
	}
	for i, want := range []string{"d", "c", "b"} {
		if got[i].ID != want {
			t.Errorf("Recent[%d] = %q, want %q", i, got[i].ID, want)
		}
	}

	if got := rec.Recent(2); len(got) != 2 || got[0].ID != "d" {
		t.Fatalf("limit not applied: %+v", got)
	}
}

func TestRecorderRunDrainsLocalSubscription(t *testing.T) {
	pub := NewPublisher(nil, "test", "")
	rec := NewRecorder(10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	ch := pub.Subscribe("activity", 8)
	go func() {
		rec.Run(ctx, ch)
		close(done)
	}()

	if err := pub.Emit(ctx, FlowStarted, "s1", &FlowStartedData{Flow: "gift"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for len(rec.Recent(0)) == 0 {
		select {
		case <-deadline:
			t.Fatal("event never reached recorder")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if got := rec.Recent(0); got[0].Type != FlowStarted || got[0].SessionID != "s1" {
		t.Fatalf("unexpected event: %+v", got[0])
	}

	pub.Unsubscribe("activity")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after unsubscribe")
	}
}
