package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("start attempt: %w", Conflict("You have already attempted this quiz"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict kind, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("conflict must not match not-found")
	}
	msg, ok := Message(err)
	if !ok || msg != "You have already attempted this quiz" {
		t.Fatalf("unexpected message %q (ok=%v)", msg, ok)
	}
}

func TestMessageIgnoresForeignErrors(t *testing.T) {
	if _, ok := Message(errors.New("disk full")); ok {
		t.Fatalf("plain errors must not expose a caller message")
	}
}
