package dialog

import "time"

// DefaultMaxHistory is the maximum number of transition records kept on a
// session before the oldest are evicted.
const DefaultMaxHistory = 100

// StateRecord records one session transition for audit and replay.
type StateRecord struct {
	FromMode  Mode      `json:"from_mode"`
	ToMode    Mode      `json:"to_mode"`
	FromStep  string    `json:"from_step,omitempty"`
	ToStep    string    `json:"to_step,omitempty"`
	Trigger   string    `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the live state of one conversation. It is a value: Advance
// never mutates the session it is given and instead returns a fresh one, so
// callers can replay or diff transitions freely.
type Session struct {
	ID        string            `json:"id"`
	Mode      Mode              `json:"mode"`
	Flow      string            `json:"flow,omitempty"`
	Step      string            `json:"step,omitempty"`
	Draft     map[string]string `json:"draft,omitempty"`
	History   []StateRecord     `json:"history,omitempty"`
	StartTime time.Time         `json:"start_time"`
}

// NewSession creates an idle session.
func NewSession(id string) Session {
	return Session{
		ID:        id,
		Mode:      ModeIdle,
		StartTime: time.Now().UTC(),
	}
}

// Idle reports whether no flow is active.
func (s Session) Idle() bool {
	return s.Mode == ModeIdle
}

// DraftValue returns the collected value for a field key.
func (s Session) DraftValue(key string) (string, bool) {
	v, ok := s.Draft[key]
	return v, ok
}

// clone deep-copies the session so the original stays untouched.
func (s Session) clone() Session {
	next := s
	next.Draft = make(map[string]string, len(s.Draft))
	for k, v := range s.Draft {
		next.Draft[k] = v
	}
	next.History = make([]StateRecord, len(s.History), len(s.History)+1)
	copy(next.History, s.History)
	return next
}

// withRecord appends a transition record, evicting the oldest entries once
// the history cap is reached.
func (s Session) withRecord(to Session, trigger string) Session {
	rec := StateRecord{
		FromMode:  s.Mode,
		ToMode:    to.Mode,
		FromStep:  s.Step,
		ToStep:    to.Step,
		Trigger:   trigger,
		Timestamp: time.Now().UTC(),
	}
	if len(to.History) >= DefaultMaxHistory {
		evict := DefaultMaxHistory / 10
		if evict < 1 {
			evict = 1
		}
		to.History = to.History[evict:]
	}
	to.History = append(to.History, rec)
	return to
}

// Reset returns the session's idle form, clearing any active flow and
// draft. The shell uses it for its explicit restart control, which is
// distinct from the in-dialog cancel keyword.
func (s Session) Reset() Session {
	return s.reset("reset")
}

// reset returns the idle form of the session: no flow, no step, empty draft.
func (s Session) reset(trigger string) Session {
	next := s.clone()
	next.Mode = ModeIdle
	next.Flow = ""
	next.Step = ""
	next.Draft = nil
	return s.withRecord(next, trigger)
}
