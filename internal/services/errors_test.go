package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lessonvault/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "video", "assemble", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"video", "assemble", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestCancelledMatchesContextCause(t *testing.T) {
	err := services.Cancelled("procrun", "aria2c", context.Canceled)
	if !services.IsCancelled(err) {
		t.Fatalf("expected cancellation marker, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if services.IsCancelled(services.Wrap(services.ErrExternalTool, "x", "y", "z", nil)) {
		t.Fatal("tool failure must not classify as cancellation")
	}
	if services.IsCancelled(nil) {
		t.Fatal("nil must not classify as cancellation")
	}
}
