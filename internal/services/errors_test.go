package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"screendoc/internal/queue"
	"screendoc/internal/services"
)

func TestWrapCarriesMarkerAndDetail(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "extracting", "run ffmpeg", "Frame extraction failed", cause)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to survive wrapping: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to survive wrapping: %v", err)
	}
	for _, want := range []string{"extracting", "run ffmpeg", "Frame extraction failed", "exit status 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "scanning", "", "Scan interrupted", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want queue.Status
	}{
		{"validation parks for review", services.Wrap(services.ErrValidation, "s", "op", "bad input", nil), queue.StatusReview},
		{"configuration parks for review", services.Wrap(services.ErrConfiguration, "s", "op", "no key", nil), queue.StatusReview},
		{"not found parks for review", services.Wrap(services.ErrNotFound, "s", "op", "gone", nil), queue.StatusReview},
		{"external tool fails", services.Wrap(services.ErrExternalTool, "s", "op", "boom", nil), queue.StatusFailed},
		{"timeout fails", services.Wrap(services.ErrTimeout, "s", "op", "slow", nil), queue.StatusFailed},
		{"plain error fails", errors.New("unclassified"), queue.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureStatus(tc.err); got != tc.want {
				t.Fatalf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestContextAnnotations(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, 7)
	ctx = services.WithStage(ctx, "scanner")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("job id = %d, %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "scanner" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if req, ok := services.RequestIDFromContext(ctx); !ok || req != "req-123" {
		t.Fatalf("request id = %q, %v", req, ok)
	}

	empty := context.Background()
	if _, ok := services.JobIDFromContext(empty); ok {
		t.Fatal("expected no job id on empty context")
	}
	if services.WithStage(empty, "") != empty {
		t.Fatal("empty stage should not allocate a new context")
	}
}
