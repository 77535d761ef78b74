package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"screendoc/internal/config"
	"screendoc/internal/notifications"
	"screendoc/internal/testsupport"
)

type captured struct {
	title    string
	priority string
	tags     string
	body     string
}

func newCapturingServer(t *testing.T, requests *[]captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*requests = append(*requests, captured{
			title:    r.Header.Get("Title"),
			priority: r.Header.Get("Priority"),
			tags:     r.Header.Get("Tags"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func newNtfyConfig(t *testing.T, topic string) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeoutSeconds = 5
	return cfg
}

func TestNoopWhenUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := notifications.NewService(cfg)
	if err := svc.NotifyDocumentReady(context.Background(), "Demo", "/tmp/doc.md"); err != nil {
		t.Fatalf("noop notify: %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop test: %v", err)
	}
}

func TestNotifyAwaitingApproval(t *testing.T) {
	var requests []captured
	server := newCapturingServer(t, &requests)
	svc := notifications.NewService(newNtfyConfig(t, server.URL))

	if err := svc.NotifyAwaitingApproval(context.Background(), "Signup Flow", 3); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	got := requests[0]
	if got.title != "screendoc - Review Needed" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.priority != "high" {
		t.Fatalf("expected high priority, got %q", got.priority)
	}
	if !strings.Contains(got.body, "3 PII matches") {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNotifyDocumentReadyIncludesPath(t *testing.T) {
	var requests []captured
	server := newCapturingServer(t, &requests)
	svc := notifications.NewService(newNtfyConfig(t, server.URL))

	if err := svc.NotifyDocumentReady(context.Background(), "Signup Flow", "/out/doc.md"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if !strings.Contains(requests[0].body, "/out/doc.md") {
		t.Fatalf("expected document path in body, got %q", requests[0].body)
	}
}

func TestNotifyJobFailedAndReview(t *testing.T) {
	var requests []captured
	server := newCapturingServer(t, &requests)
	svc := notifications.NewService(newNtfyConfig(t, server.URL))

	if err := svc.NotifyJobFailed(context.Background(), "Demo", "ffmpeg exited 1"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if err := svc.NotifyReviewRequired(context.Background(), "Demo", "Recording unreadable"); err != nil {
		t.Fatalf("notify review: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	if !strings.Contains(requests[0].body, "ffmpeg exited 1") {
		t.Fatalf("unexpected failure body %q", requests[0].body)
	}
	if !strings.Contains(requests[1].body, "Recording unreadable") {
		t.Fatalf("unexpected review body %q", requests[1].body)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	svc := notifications.NewService(newNtfyConfig(t, server.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
