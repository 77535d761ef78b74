package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"screendoc/internal/config"
)

const userAgent = "screendoc/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyAwaitingApproval(ctx context.Context, title string, matches int) error
	NotifyDocumentReady(ctx context.Context, title, documentPath string) error
	NotifyReviewRequired(ctx context.Context, title, reason string) error
	NotifyJobFailed(ctx context.Context, title, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyAwaitingApproval(ctx context.Context, title string, matches int) error {
	title = strings.TrimSpace(title)
	noun := "matches"
	if matches == 1 {
		noun = "match"
	}
	data := payload{
		title:    "screendoc - Review Needed",
		message:  fmt.Sprintf("%s: %d PII %s detected, approval required before redaction", title, matches, noun),
		tags:     []string{"screendoc", "pii", "approval"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDocumentReady(ctx context.Context, title, documentPath string) error {
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Document ready: %s", title)
	if documentPath = strings.TrimSpace(documentPath); documentPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, documentPath)
	}
	data := payload{
		title:   "screendoc - Complete",
		message: message,
		tags:    []string{"screendoc", "document", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewRequired(ctx context.Context, title, reason string) error {
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Parked for review: %s", title)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "screendoc - Parked",
		message:  message,
		tags:     []string{"screendoc", "review"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, title, message string) error {
	title = strings.TrimSpace(title)
	body := fmt.Sprintf("Failed: %s", title)
	if message = strings.TrimSpace(message); message != "" {
		body = fmt.Sprintf("%s\n%s", body, message)
	}
	data := payload{
		title:    "screendoc - Failed",
		message:  body,
		tags:     []string{"screendoc", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "screendoc - Test",
		message:  "Notification system test",
		tags:     []string{"screendoc", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyAwaitingApproval(context.Context, string, int) error  { return nil }
func (noopService) NotifyDocumentReady(context.Context, string, string) error  { return nil }
func (noopService) NotifyReviewRequired(context.Context, string, string) error { return nil }
func (noopService) NotifyJobFailed(context.Context, string, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
