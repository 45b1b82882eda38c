package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestEnvelopeSerialization(t *testing.T) {
	data := &GiftCreatedData{
		GiftID:      "gift-1",
		RecipientID: "person-1",
		EventType:   "Birthday",
		EventDate:   "2025-12-01",
		AmountTier:  "$25",
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}

	env := Envelope{
		ID:        "test-id",
		Type:      GiftCreated,
		Source:    "assistant",
		SessionID: "session-123",
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}

	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if decoded.Type != GiftCreated {
		t.Errorf("type = %q, want %q", decoded.Type, GiftCreated)
	}
	if decoded.SessionID != "session-123" {
		t.Errorf("session_id = %q, want %q", decoded.SessionID, "session-123")
	}

	var payload GiftCreatedData
	if err := json.Unmarshal(decoded.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.GiftID != "gift-1" {
		t.Errorf("gift_id = %q, want %q", payload.GiftID, "gift-1")
	}
}

func TestPublisherLocalFanOut(t *testing.T) {
	pub := NewPublisher(nil, "assistant", "events")

	ch := pub.Subscribe("sub-1", 4)
	defer pub.Unsubscribe("sub-1")

	err := pub.Emit(context.Background(), FlowStarted, "session-1", &FlowStartedData{
		Flow: "gift",
		Mode: "collecting_gift",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	select {
	case env := <-ch:
		if env.Type != FlowStarted {
			t.Errorf("type = %q, want %q", env.Type, FlowStarted)
		}
		if env.ID == "" {
			t.Error("envelope ID not assigned")
		}
	case <-time.After(time.Second):
		t.Fatal("no envelope received")
	}
}

func TestPublisherDropsWhenSubscriberFull(t *testing.T) {
	pub := NewPublisher(nil, "assistant", "events")

	pub.Subscribe("slow", 1)
	defer pub.Unsubscribe("slow")

	// Second emit overflows the buffer; Emit must not block or fail.
	for i := 0; i < 2; i++ {
		if err := pub.Emit(context.Background(), FlowCancelled, "s1", &FlowCancelledData{
			Flow:    "gift",
			Trigger: "cancel",
		}); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}
}
