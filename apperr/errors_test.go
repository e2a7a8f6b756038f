package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Wrap(KindNotFound, "load dataset", "x.csv", os.ErrNotExist, "File not found: %s", "x.csv")

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound match")
	}
	if errors.Is(err, ErrSchema) {
		t.Fatalf("did not expect ErrSchema match")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if err.Error() != "File not found: x.csv" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := New(KindValidation, "predict", "All prices must be positive values.")
	outer := fmt.Errorf("request: %w", inner)

	if got := KindOf(outer); got != KindValidation {
		t.Fatalf("expected %s, got %q", KindValidation, got)
	}
	if got := Message(outer); got != "All prices must be positive values." {
		t.Fatalf("unexpected message %q", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("expected unknown kind, got %q", got)
	}
	if Message(nil) != "" {
		t.Fatalf("expected empty message for nil")
	}
}
