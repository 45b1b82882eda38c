package handler

import "github.com/giftwise/giftwise/pkg/chat"

// OpenSessionRequest opens a chat widget session for a profile.
type OpenSessionRequest struct {
	ProfileID string `json:"profile_id"`
}

// MessageRequest carries one user utterance.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse returns the assistant messages produced by one utterance
// along with the session's new state.
type MessageResponse struct {
	SessionID string         `json:"session_id"`
	Mode      string         `json:"mode"`
	Step      string         `json:"step,omitempty"`
	Messages  []chat.Message `json:"messages"`
}

// SessionResponse is the full view of a widget session, transcript included.
type SessionResponse struct {
	SessionID  string         `json:"session_id"`
	ProfileID  string         `json:"profile_id"`
	Mode       string         `json:"mode"`
	Step       string         `json:"step,omitempty"`
	Transcript []chat.Message `json:"transcript"`
}

// FlowInfo describes one loaded flow definition.
type FlowInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Mode        string   `json:"mode"`
	Keywords    []string `json:"keywords"`
	Steps       []string `json:"steps"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
