package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pitabwire/util"
)

const defaultRecorderCapacity = 256

// Recorder keeps a bounded in-memory trail of recent events. It implements
// frame's queue.SubscribeWorker so events published by other instances land
// in the trail too, and Run drains a local Publisher subscription for events
// emitted in-process.
type Recorder struct {
	mu       sync.RWMutex
	buf      []Envelope
	capacity int
}

// NewRecorder creates a recorder that retains up to capacity recent events.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = defaultRecorderCapacity
	}
	return &Recorder{capacity: capacity}
}

// Handle is called by frame's pub/sub for each event message.
func (r *Recorder) Handle(ctx context.Context, _ map[string]string, message []byte) error {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		util.Log(ctx).WithError(err).Error("activity recorder: unmarshal envelope")
		return err
	}
	r.record(env)
	return nil
}

// Run drains a local subscription channel until it closes or ctx is done.
func (r *Recorder) Run(ctx context.Context, ch <-chan Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-ch:
			if !ok {
				return
			}
			r.record(env)
		}
	}
}

func (r *Recorder) record(env Envelope) {
	r.mu.Lock()
	r.buf = append(r.buf, env)
	if len(r.buf) > r.capacity {
		r.buf = r.buf[len(r.buf)-r.capacity:]
	}
	r.mu.Unlock()
}

// Recent returns up to limit events, newest first.
func (r *Recorder) Recent(limit int) []Envelope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.buf)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Envelope, 0, n)
	for i := len(r.buf) - 1; i >= len(r.buf)-n; i-- {
		out = append(out, r.buf[i])
	}
	return out
}
