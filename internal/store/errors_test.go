package store

import (
	"errors"
	"testing"
)

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := persistErr("create gift", cause)

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatal("expected a *PersistenceError")
	}
	if pe.Op != "create gift" {
		t.Errorf("op = %q, want %q", pe.Op, "create gift")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}
