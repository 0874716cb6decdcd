package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"confab/internal/config"
)

const userAgent = "Confab-Go/0.1.0"

// Event identifies a workflow milestone worth telling the user about.
type Event string

const (
	EventRecordingQueued   Event = "recording_queued"
	EventConversationReady Event = "conversation_ready"
	EventDocumentReady     Event = "document_ready"
	EventItemFailed        Event = "item_failed"
	EventReviewRequired    Event = "review_required"
	EventTest              Event = "test"
)

// Payload carries event-specific fields used to render the message.
type Payload map[string]string

func (p Payload) get(key string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p[key])
}

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventRecordingQueued:   cfg.Notifications.Queued,
			EventConversationReady: cfg.Notifications.ConversationReady,
			EventDocumentReady:     cfg.Notifications.DocumentReady,
			EventItemFailed:        cfg.Notifications.Errors,
			EventReviewRequired:    cfg.Notifications.Errors,
			EventTest:              true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

// Publish renders the event into an ntfy message and posts it. Events that
// are disabled in configuration, or unknown, are dropped silently.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}

	title := payload.get("title")
	if title == "" {
		title = "recording"
	}

	var data message
	switch event {
	case EventRecordingQueued:
		data = message{
			title: "Confab - Queued",
			body:  fmt.Sprintf("🎙️ Queued: %s", title),
			tags:  []string{"confab", "queue", "queued"},
		}
	case EventConversationReady:
		body := fmt.Sprintf("💬 Conversation ready: %s", title)
		if utterances := payload.get("utterances"); utterances != "" {
			body = fmt.Sprintf("%s (%s utterances)", body, utterances)
		}
		data = message{
			title: "Confab - Conversation Ready",
			body:  body,
			tags:  []string{"confab", "conversation", "ready"},
		}
	case EventDocumentReady:
		body := fmt.Sprintf("📝 Summary ready: %s", title)
		if file := payload.get("documentPath"); file != "" {
			body = fmt.Sprintf("%s\nFile: %s", body, file)
		}
		data = message{
			title:    "Confab - Summary Ready",
			body:     body,
			tags:     []string{"confab", "document", "ready"},
			priority: "high",
		}
	case EventItemFailed:
		detail := payload.get("error")
		if detail == "" {
			detail = "unknown"
		}
		data = message{
			title:    "Confab - Error",
			body:     fmt.Sprintf("❌ Error with %s: %s", title, detail),
			tags:     []string{"confab", "error", "alert"},
			priority: "high",
		}
	case EventReviewRequired:
		body := fmt.Sprintf("⚠️ Review required: %s", title)
		if reason := payload.get("reason"); reason != "" {
			body = fmt.Sprintf("%s\n%s", body, reason)
		}
		data = message{
			title:    "Confab - Review Required",
			body:     body,
			tags:     []string{"confab", "review", "attention"},
			priority: "high",
		}
	case EventTest:
		data = message{
			title:    "Confab - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"confab", "test"},
			priority: "low",
		}
	default:
		return nil
	}

	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
