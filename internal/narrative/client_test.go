package narrative_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"screendoc/internal/narrative"
)

func writeFrame(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func successBody(content string) string {
	return `{"choices":[{"message":{"content":` + mustJSON(content) + `},"finish_reason":"stop"}]}`
}

func mustJSON(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func TestNarrateSendsFramesInOrder(t *testing.T) {
	dir := t.TempDir()
	frames := []string{
		writeFrame(t, dir, "frame_0001.jpg"),
		writeFrame(t, dir, "frame_0002.png"),
	}

	var captured []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		captured, _ = io.ReadAll(r.Body)
		io.WriteString(w, successBody("# Guide\n\nSteps here."))
	}))
	defer server.Close()

	client := narrative.NewClient(narrative.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})
	got, err := client.Narrate(context.Background(), frames)
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if !strings.HasPrefix(got, "# Guide") {
		t.Fatalf("unexpected narrative: %q", got)
	}

	body := string(captured)
	if !strings.Contains(body, `"Frame 1:"`) || !strings.Contains(body, `"Frame 2:"`) {
		t.Fatalf("frame labels missing from request: %s", body)
	}
	if strings.Index(body, "Frame 1:") > strings.Index(body, "Frame 2:") {
		t.Fatal("frames sent out of order")
	}
	if !strings.Contains(body, "data:image/jpeg;base64,") || !strings.Contains(body, "data:image/png;base64,") {
		t.Fatalf("expected data URLs with per-extension mime types: %s", body)
	}
	if !strings.Contains(body, `"max_tokens":4000`) {
		t.Fatalf("expected default max_tokens: %s", body)
	}
}

func TestNarrateRetriesServerErrors(t *testing.T) {
	dir := t.TempDir()
	frame := writeFrame(t, dir, "frame.jpg")

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, successBody("recovered"))
	}))
	defer server.Close()

	client := narrative.NewClient(
		narrative.Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		narrative.WithRetryMaxAttempts(2),
		narrative.WithSleeper(func(time.Duration) {}),
	)
	got, err := client.Narrate(context.Background(), []string{frame})
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("unexpected content: %q", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestNarrateDoesNotRetryClientErrors(t *testing.T) {
	dir := t.TempDir()
	frame := writeFrame(t, dir, "frame.jpg")

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key"}}`)
	}))
	defer server.Close()

	client := narrative.NewClient(
		narrative.Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		narrative.WithRetryMaxAttempts(3),
		narrative.WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.Narrate(context.Background(), []string{frame}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("401 must not retry, got %d calls", calls.Load())
	}
}

func TestNarrateValidation(t *testing.T) {
	client := narrative.NewClient(narrative.Config{})
	if client.Configured() {
		t.Fatal("empty config should not be configured")
	}
	if _, err := client.Narrate(context.Background(), []string{"x.jpg"}); err == nil {
		t.Fatal("expected error without api key")
	}

	configured := narrative.NewClient(narrative.Config{APIKey: "k", Model: "m"})
	if _, err := configured.Narrate(context.Background(), nil); err == nil {
		t.Fatal("expected error without frames")
	}
}

func TestNarrateEmptyContent(t *testing.T) {
	dir := t.TempDir()
	frame := writeFrame(t, dir, "frame.jpg")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[{"message":{"content":""},"finish_reason":"length"}]}`)
	}))
	defer server.Close()

	client := narrative.NewClient(
		narrative.Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		narrative.WithRetryMaxAttempts(1),
	)
	if _, err := client.Narrate(context.Background(), []string{frame}); err == nil {
		t.Fatal("expected error for empty content")
	}
}
