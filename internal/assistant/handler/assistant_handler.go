package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pitabwire/frame/workerpool"
	"github.com/rs/xid"

	"github.com/giftwise/giftwise/internal/store"
	"github.com/giftwise/giftwise/pkg/chat"
	"github.com/giftwise/giftwise/pkg/dialog"
	"github.com/giftwise/giftwise/pkg/events"
)

const (
	DefaultSessionTTL = 12 * time.Hour

	reaperInterval     = 1 * time.Minute
	maxRequestBodySize = 1 << 20
	activityFeedLimit  = 50
)

const (
	greetingText = `Hi! I'm your gift assistant. Say "add a gift" to schedule ` +
		`a gift, or "add a person" to save someone to your list.`
	restartText = "Okay, let's start fresh. What would you like to do?"
	// Persistence failures surface as one generic message; the cause stays
	// in the logs and the flow is not resumed.
	persistFailedText = "Sorry, something went wrong while saving. Nothing was " +
		"stored — please start the flow again."
)

// Persister is the slice of the store the assistant needs to carry out
// dialog effects.
type Persister interface {
	FindOrCreatePerson(ctx context.Context, profileID, name string) (*store.Person, error)
	CreatePerson(ctx context.Context, profileID string, payload store.PersonPayload) (*store.Person, error)
	CreateGift(ctx context.Context, profileID string, payload store.GiftPayload) (*store.Gift, error)
	ListPeople(ctx context.Context, profileID string) ([]store.Person, error)
	ListGifts(ctx context.Context, profileID string) ([]store.Gift, error)
}

// AssistantHandler serves the chat widget API. It owns the widget sessions
// and orchestrates the dialog engine's effects against the store; the engine
// itself stays pure.
type AssistantHandler struct {
	machine  *dialog.Machine
	flows    dialog.FlowSource
	repo     Persister
	pub      *events.Publisher
	activity *events.Recorder
	pool     workerpool.WorkerPool
	ttl      time.Duration
	store    SessionStore
}

// NewAssistantHandler creates the assistant API handler. A zero ttl falls
// back to DefaultSessionTTL.
func NewAssistantHandler(flows dialog.FlowSource, repo Persister, pub *events.Publisher, pool workerpool.WorkerPool, ttl time.Duration) *AssistantHandler {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AssistantHandler{
		machine: dialog.NewMachine(flows),
		flows:   flows,
		repo:    repo,
		pub:     pub,
		pool:    pool,
		ttl:     ttl,
		store: SessionStore{
			sessions: make(map[string]*widgetSession),
		},
	}
}

// AttachActivity wires a recorder for the recent-activity endpoint. Without
// one, GET /v1/assistant/activity serves an empty list.
func (h *AssistantHandler) AttachActivity(rec *events.Recorder) {
	h.activity = rec
}

// RegisterRoutes registers all assistant API routes on the given mux.
func (h *AssistantHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/assistant/sessions", h.OpenSession)
	mux.HandleFunc("GET /v1/assistant/sessions/{id}", h.GetSession)
	mux.HandleFunc("POST /v1/assistant/sessions/{id}/messages", h.PostMessage)
	mux.HandleFunc("POST /v1/assistant/sessions/{id}/reset", h.ResetSession)
	mux.HandleFunc("GET /v1/assistant/flows", h.ListFlows)
	mux.HandleFunc("GET /v1/assistant/activity", h.RecentActivity)
	mux.HandleFunc("GET /v1/assistant/profiles/{profileID}/gifts", h.ListGifts)
	mux.HandleFunc("GET /v1/assistant/profiles/{profileID}/people", h.ListPeople)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// OpenSession handles POST /v1/assistant/sessions
func (h *AssistantHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProfileID == "" {
		writeError(w, http.StatusBadRequest, "profile_id is required")
		return
	}

	id := xid.New().String()
	ws := newWidgetSession(req.ProfileID, dialog.NewSession(id))
	ws.log.Append(chat.AuthorAssistant, greetingText)
	h.store.put(id, ws)

	session, transcript := ws.snapshot()
	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID:  id,
		ProfileID:  req.ProfileID,
		Mode:       string(session.Mode),
		Step:       session.Step,
		Transcript: transcript,
	})
}

// GetSession handles GET /v1/assistant/sessions/{id}
func (h *AssistantHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.store.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	session, transcript := ws.snapshot()
	writeJSON(w, http.StatusOK, SessionResponse{
		SessionID:  session.ID,
		ProfileID:  ws.profileID,
		Mode:       string(session.Mode),
		Step:       session.Step,
		Transcript: transcript,
	})
}

// PostMessage handles POST /v1/assistant/sessions/{id}/messages
//
// The whole turn runs under the session's lock: while a previous utterance
// is still being processed (its persistence effect included) further
// submissions get 409, mirroring the widget's disabled input box.
func (h *AssistantHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	ws, ok := h.store.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if !ws.mu.TryLock() {
		writeError(w, http.StatusConflict, "still working on the previous message")
		return
	}
	defer ws.mu.Unlock()

	ws.log.Append(chat.AuthorUser, text)

	prev := ws.session
	res, err := h.machine.Advance(prev, text)
	if err != nil {
		slog.ErrorContext(r.Context(), "dialog advance failed",
			slog.String("session_id", prev.ID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "dialog engine error")
		return
	}

	replies := res.Messages
	if res.Effect != nil {
		replies = append(replies, h.applyEffect(r.Context(), ws.profileID, prev.ID, res.Effect))
	}

	h.emitTransition(r.Context(), prev, res)

	messages := make([]chat.Message, 0, len(replies))
	for _, reply := range replies {
		messages = append(messages, ws.log.Append(chat.AuthorAssistant, reply))
	}

	ws.session = res.Next
	ws.touch()

	writeJSON(w, http.StatusOK, MessageResponse{
		SessionID: res.Next.ID,
		Mode:      string(res.Next.Mode),
		Step:      res.Next.Step,
		Messages:  messages,
	})
}

// ResetSession handles POST /v1/assistant/sessions/{id}/reset — the widget's
// explicit restart control, distinct from the in-dialog cancel keyword.
func (h *AssistantHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.store.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	ws.mu.Lock()
	ws.session = ws.session.Reset()
	ws.log.Append(chat.AuthorAssistant, restartText)
	ws.touch()
	ws.mu.Unlock()

	session, transcript := ws.snapshot()
	writeJSON(w, http.StatusOK, SessionResponse{
		SessionID:  session.ID,
		ProfileID:  ws.profileID,
		Mode:       string(session.Mode),
		Step:       session.Step,
		Transcript: transcript,
	})
}

// ListFlows handles GET /v1/assistant/flows
func (h *AssistantHandler) ListFlows(w http.ResponseWriter, _ *http.Request) {
	all := h.flows.All()

	infos := make([]FlowInfo, 0, len(all))
	for _, f := range all {
		steps := make([]string, 0, len(f.Steps))
		for _, s := range f.Steps {
			steps = append(steps, s.Key)
		}
		infos = append(infos, FlowInfo{
			Name:        f.Name,
			Version:     f.Version,
			Description: f.Description,
			Mode:        string(f.Mode),
			Keywords:    f.Keywords,
			Steps:       steps,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

// ListGifts handles GET /v1/assistant/profiles/{profileID}/gifts
func (h *AssistantHandler) ListGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := h.repo.ListGifts(r.Context(), r.PathValue("profileID"))
	if err != nil {
		slog.ErrorContext(r.Context(), "listing gifts", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not list gifts")
		return
	}
	writeJSON(w, http.StatusOK, gifts)
}

// ListPeople handles GET /v1/assistant/profiles/{profileID}/people
func (h *AssistantHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.repo.ListPeople(r.Context(), r.PathValue("profileID"))
	if err != nil {
		slog.ErrorContext(r.Context(), "listing people", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not list people")
		return
	}
	writeJSON(w, http.StatusOK, people)
}

// RecentActivity handles GET /v1/assistant/activity
func (h *AssistantHandler) RecentActivity(w http.ResponseWriter, _ *http.Request) {
	recent := []events.Envelope{}
	if h.activity != nil {
		recent = h.activity.Recent(activityFeedLimit)
	}
	writeJSON(w, http.StatusOK, recent)
}

// applyEffect carries out the persistence operation a completed flow
// requested and returns the outcome message for the transcript. The session
// has already been reset by the engine; failure never resumes the flow.
func (h *AssistantHandler) applyEffect(ctx context.Context, profileID, sessionID string, eff *dialog.Effect) string {
	switch eff.Kind {
	case dialog.EffectCreateGift:
		person, err := h.repo.FindOrCreatePerson(ctx, profileID, eff.Payload[dialog.FieldRecipient])
		if err != nil {
			return h.persistFailed(ctx, sessionID, eff, err)
		}
		gift, err := h.repo.CreateGift(ctx, profileID, store.GiftPayload{
			RecipientID: person.ID,
			EventType:   eff.Payload[dialog.FieldEventType],
			EventDate:   eff.Payload[dialog.FieldEventDate],
			AmountTier:  eff.Payload[dialog.FieldGiftAmount],
			Message:     eff.Payload[dialog.FieldPersonalMessage],
		})
		if err != nil {
			return h.persistFailed(ctx, sessionID, eff, err)
		}
		if h.pub != nil {
			_ = h.pub.Emit(ctx, events.GiftCreated, sessionID, &events.GiftCreatedData{
				GiftID:      gift.ID,
				RecipientID: person.ID,
				EventType:   gift.EventType,
				EventDate:   gift.EventDate,
				AmountTier:  gift.AmountTier,
			})
			_ = h.pub.Emit(ctx, events.FlowCompleted, sessionID, &events.FlowCompletedData{
				Flow:   eff.Flow,
				Effect: string(eff.Kind),
			})
		}
		return fmt.Sprintf("Done! I've scheduled a %s gift for %s on %s.",
			gift.EventType, person.Name, gift.EventDate)

	case dialog.EffectCreatePerson:
		person, err := h.repo.CreatePerson(ctx, profileID, store.PersonPayload{
			Name:         eff.Payload[dialog.FieldName],
			Relationship: eff.Payload[dialog.FieldRelationship],
			Birthday:     eff.Payload[dialog.FieldBirthday],
		})
		if err != nil {
			return h.persistFailed(ctx, sessionID, eff, err)
		}
		if h.pub != nil {
			_ = h.pub.Emit(ctx, events.PersonCreated, sessionID, &events.PersonCreatedData{
				PersonID:     person.ID,
				Name:         person.Name,
				Relationship: person.Relationship,
			})
			_ = h.pub.Emit(ctx, events.FlowCompleted, sessionID, &events.FlowCompletedData{
				Flow:   eff.Flow,
				Effect: string(eff.Kind),
			})
		}
		return fmt.Sprintf("Done! %s is now on your gift list.", person.Name)

	default:
		slog.WarnContext(ctx, "unknown dialog effect",
			slog.String("session_id", sessionID), slog.String("kind", string(eff.Kind)))
		return persistFailedText
	}
}

func (h *AssistantHandler) persistFailed(ctx context.Context, sessionID string, eff *dialog.Effect, err error) string {
	slog.ErrorContext(ctx, "persistence effect failed",
		slog.String("session_id", sessionID),
		slog.String("effect", string(eff.Kind)),
		slog.String("error", err.Error()))
	if h.pub != nil {
		_ = h.pub.Emit(ctx, events.PersistenceFailed, sessionID, &events.PersistenceFailedData{
			Flow:   eff.Flow,
			Effect: string(eff.Kind),
			Cause:  err.Error(),
		})
	}
	return persistFailedText
}

// emitTransition publishes flow lifecycle and transition events for one turn.
func (h *AssistantHandler) emitTransition(ctx context.Context, prev dialog.Session, res dialog.Result) {
	if h.pub == nil {
		return
	}
	next := res.Next

	switch {
	case prev.Idle() && !next.Idle():
		_ = h.pub.Emit(ctx, events.FlowStarted, next.ID, &events.FlowStartedData{
			Flow: next.Flow,
			Mode: string(next.Mode),
		})
	case !prev.Idle() && next.Idle() && res.Effect == nil:
		_ = h.pub.Emit(ctx, events.FlowCancelled, next.ID, &events.FlowCancelledData{
			Flow:    prev.Flow,
			Step:    prev.Step,
			Trigger: lastTrigger(next),
		})
	}

	if prev.Mode != next.Mode || prev.Step != next.Step {
		flowName := prev.Flow
		if flowName == "" {
			flowName = next.Flow
		}
		_ = h.pub.Emit(ctx, events.StateTransition, next.ID, &events.StateTransitionData{
			Flow:     flowName,
			FromMode: string(prev.Mode),
			ToMode:   string(next.Mode),
			FromStep: prev.Step,
			ToStep:   next.Step,
		})
	}
}

func lastTrigger(s dialog.Session) string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1].Trigger
}

// StartReaper begins the background session TTL reaper.
func (h *AssistantHandler) StartReaper(ctx context.Context) {
	reap := func() {
		ticker := time.NewTicker(reaperInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.reapStaleSessions()
			}
		}
	}
	if h.pool != nil {
		_ = h.pool.Submit(ctx, reap)
	} else {
		go reap()
	}
}

func (h *AssistantHandler) reapStaleSessions() {
	now := time.Now()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	for id, ws := range h.store.sessions {
		if now.Sub(ws.idleSince()) > h.ttl {
			slog.Warn("reaping stale widget session", slog.String("session_id", id))
			delete(h.store.sessions, id)
		}
	}
}
