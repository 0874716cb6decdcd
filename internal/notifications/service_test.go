package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"confab/internal/config"
	"confab/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.EventDocumentReady,
		notifications.Payload{"title": "Weekly Sync"})
	if err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "recording queued",
			event: notifications.EventRecordingQueued,
			payload: notifications.Payload{
				"title": "Weekly Sync",
			},
			expectTitle:   "Confab - Queued",
			expectMessage: "🎙️ Queued: Weekly Sync",
			expectTags:    "confab,queue,queued",
		},
		{
			name:  "conversation ready",
			event: notifications.EventConversationReady,
			payload: notifications.Payload{
				"title":      "Weekly Sync",
				"utterances": "42",
			},
			expectTitle:   "Confab - Conversation Ready",
			expectMessage: "💬 Conversation ready: Weekly Sync (42 utterances)",
			expectTags:    "confab,conversation,ready",
		},
		{
			name:  "document ready",
			event: notifications.EventDocumentReady,
			payload: notifications.Payload{
				"title":        "Weekly Sync",
				"documentPath": "Weekly Sync.md",
			},
			expectTitle:    "Confab - Summary Ready",
			expectMessage:  "📝 Summary ready: Weekly Sync\nFile: Weekly Sync.md",
			expectTags:     "confab,document,ready",
			expectPriority: "high",
		},
		{
			name:  "item failed",
			event: notifications.EventItemFailed,
			payload: notifications.Payload{
				"title": "Weekly Sync",
				"error": "transcription provider unavailable",
			},
			expectTitle:    "Confab - Error",
			expectMessage:  "❌ Error with Weekly Sync: transcription provider unavailable",
			expectTags:     "confab,error,alert",
			expectPriority: "high",
		},
		{
			name:  "review required",
			event: notifications.EventReviewRequired,
			payload: notifications.Payload{
				"title":  "Weekly Sync",
				"reason": "Audio file has no audio stream",
			},
			expectTitle:    "Confab - Review Required",
			expectMessage:  "⚠️ Review required: Weekly Sync\nAudio file has no audio stream",
			expectTags:     "confab,review,attention",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			payload:        nil,
			expectTitle:    "Confab - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "confab,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceSkipsDisabledEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Queued = false
	cfg.Notifications.ConversationReady = false
	cfg.Notifications.DocumentReady = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	disabled := []notifications.Event{
		notifications.EventRecordingQueued,
		notifications.EventConversationReady,
		notifications.EventDocumentReady,
		notifications.EventItemFailed,
		notifications.EventReviewRequired,
	}

	for _, event := range disabled {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"title": "ignored"}); err != nil {
			t.Fatalf("expected no error for disabled event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error for http 429")
	}
}
