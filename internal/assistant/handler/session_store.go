package handler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/giftwise/giftwise/pkg/chat"
	"github.com/giftwise/giftwise/pkg/dialog"
)

// widgetSession pairs one widget's dialog state with its transcript. The
// mutex serializes utterances: it is held for the whole turn, persistence
// effect included, so a second submission while the assistant is working is
// rejected rather than interleaved.
type widgetSession struct {
	mu        sync.Mutex
	profileID string
	session   dialog.Session
	log       *chat.Log

	lastActive atomic.Int64 // unix seconds
}

func newWidgetSession(profileID string, session dialog.Session) *widgetSession {
	ws := &widgetSession{
		profileID: profileID,
		session:   session,
		log:       chat.NewLog(),
	}
	ws.touch()
	return ws
}

func (ws *widgetSession) touch() {
	ws.lastActive.Store(time.Now().Unix())
}

func (ws *widgetSession) idleSince() time.Time {
	return time.Unix(ws.lastActive.Load(), 0)
}

// snapshot returns a consistent view of session state and transcript.
func (ws *widgetSession) snapshot() (dialog.Session, []chat.Message) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.session, ws.log.Messages()
}

// SessionStore holds active widget sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*widgetSession
}

func (s *SessionStore) get(id string) (*widgetSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.sessions[id]
	return ws, ok
}

func (s *SessionStore) put(id string, ws *widgetSession) {
	s.mu.Lock()
	s.sessions[id] = ws
	s.mu.Unlock()
}
