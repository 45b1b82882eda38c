package chat

import (
	"sync"
	"time"

	"github.com/rs/xid"
)

// Author identifies who wrote a message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is one entry in a conversation transcript. Immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is an append-only record of exchanged messages. All access is thread-safe.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog creates an empty message log.
func NewLog() *Log {
	return &Log{}
}

// Append records a new message and returns it.
func (l *Log) Append(author Author, text string) Message {
	msg := Message{
		ID:        xid.New().String(),
		Author:    author,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg
}

// Messages returns a snapshot of the transcript in append order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]Message, len(l.messages))
	copy(cp, l.messages)
	return cp
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recent message, if any.
func (l *Log) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}
