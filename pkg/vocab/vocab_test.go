package vocab

import (
	"errors"
	"testing"
)

func TestTransitionFromProcessing(t *testing.T) {
	f := LibraryFile{ID: "f1", Status: StatusProcessing}
	if err := f.Transition(StatusReady, "你好"); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if f.Status != StatusReady || f.Content != "你好" {
		t.Fatalf("unexpected file after transition: %+v", f)
	}
}

func TestTransitionIsTerminal(t *testing.T) {
	f := LibraryFile{ID: "f1", Status: StatusProcessing}
	if err := f.Transition(StatusError, "ignored"); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if f.Content != "" {
		t.Fatalf("error files must not keep content, got %q", f.Content)
	}
	err := f.Transition(StatusReady, "late")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if f.Status != StatusError {
		t.Fatalf("status moved backward to %s", f.Status)
	}
}

func TestTransitionRejectsProcessingTarget(t *testing.T) {
	f := LibraryFile{ID: "f1", Status: StatusProcessing}
	if err := f.Transition(StatusProcessing, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
