package chat

import "testing"

func TestLogAppend(t *testing.T) {
	log := NewLog()

	first := log.Append(AuthorUser, "add gift")
	second := log.Append(AuthorAssistant, "Who is the gift for?")

	if log.Len() != 2 {
		t.Fatalf("Len = %d, want 2", log.Len())
	}
	if first.ID == second.ID {
		t.Error("expected unique message IDs")
	}
	if first.Timestamp.After(second.Timestamp) {
		t.Error("timestamps out of order")
	}

	msgs := log.Messages()
	if msgs[0].Text != "add gift" || msgs[1].Text != "Who is the gift for?" {
		t.Errorf("unexpected transcript order: %+v", msgs)
	}
}

func TestLogSnapshotIsolation(t *testing.T) {
	log := NewLog()
	log.Append(AuthorUser, "hello")

	snapshot := log.Messages()
	snapshot[0].Text = "mutated"

	if got := log.Messages()[0].Text; got != "hello" {
		t.Errorf("log entry mutated through snapshot: %q", got)
	}
}

func TestLogLast(t *testing.T) {
	log := NewLog()
	if _, ok := log.Last(); ok {
		t.Error("Last on empty log should report not found")
	}

	log.Append(AuthorUser, "one")
	log.Append(AuthorAssistant, "two")

	last, ok := log.Last()
	if !ok || last.Text != "two" {
		t.Errorf("Last = %+v, ok=%v, want text %q", last, ok, "two")
	}
}
