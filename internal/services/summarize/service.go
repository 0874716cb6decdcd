package summarize

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"confab/internal/logging"
	"confab/internal/prompts"
	"confab/internal/services"
	"confab/internal/textutil"
)

const (
	defaultModel   = "gpt-4o"
	defaultTimeout = 5 * time.Minute

	contentTemperature = 0.1
	contentMaxTokens   = 8000
)

// Config captures the runtime settings for the summarization model.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	TimeoutSeconds    int
	FormattingEnabled bool
}

// Service turns a speaker-labeled conversation into a Markdown document.
//
// Summarization runs as two chat completions: a content agent extracts the
// summary, decisions, and action items, and an optional formatting agent
// normalizes the Markdown. A formatting failure falls back to the content
// agent's output so a finished summary is never discarded.
type Service struct {
	cfg    Config
	client *openai.Client
	store  *prompts.Store
	logger *slog.Logger
}

// NewService constructs a summarization service from the supplied
// configuration and prompt store.
func NewService(cfg Config, store *prompts.Store, logger *slog.Logger) (*Service, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.APIKey == "" {
		return nil, services.Wrap(
			services.ErrConfiguration, "summarize", "new service",
			"Summary API key required; set summary.api_key or OPENAI_API_KEY", nil)
	}
	if store == nil {
		return nil, services.Wrap(
			services.ErrConfiguration, "summarize", "new service",
			"Prompt store required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Service{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		store:  store,
		logger: logging.NewComponentLogger(logger, "summarize"),
	}, nil
}

// Model returns the configured model identifier.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Summarize produces a Markdown meeting document from conversation text.
func (s *Service) Summarize(ctx context.Context, conversationText string) (string, error) {
	conversationText = strings.TrimSpace(conversationText)
	if conversationText == "" {
		return "", services.Wrap(
			services.ErrValidation, "summarize", "summarize",
			"Conversation text is empty; nothing to summarize", nil)
	}

	contentPrompt, ok := s.store.Get(prompts.KeySummaryContent)
	if !ok {
		return "", services.Wrap(
			services.ErrConfiguration, "summarize", "load prompt",
			"Prompt "+prompts.KeySummaryContent+" missing; restore it with confab prompts set", nil)
	}

	body, err := s.complete(ctx, contentPrompt, conversationText)
	if err != nil {
		return "", services.Wrap(
			services.ErrExternalTool, "summarize", "content agent",
			"Summary generation failed", err)
	}
	body = textutil.StripCodeFences(body)
	if strings.TrimSpace(body) == "" {
		return "", services.Wrap(
			services.ErrExternalTool, "summarize", "content agent",
			"Model returned an empty summary", nil)
	}

	if !s.cfg.FormattingEnabled {
		return textutil.BasicMarkdownCleanup(body), nil
	}
	return s.format(ctx, body), nil
}

// format runs the second-pass formatting agent. Failures degrade to a basic
// cleanup of the content agent's output.
func (s *Service) format(ctx context.Context, body string) string {
	formattingPrompt, ok := s.store.Get(prompts.KeySummaryFormatting)
	if !ok {
		s.logger.Warn("formatting prompt missing, using basic cleanup",
			"prompt", prompts.KeySummaryFormatting)
		return textutil.BasicMarkdownCleanup(body)
	}

	formatted, err := s.complete(ctx, formattingPrompt, body)
	if err != nil {
		s.logger.Warn("formatting agent failed, using basic cleanup", "error", err)
		return textutil.BasicMarkdownCleanup(body)
	}
	formatted = textutil.StripCodeFences(formatted)
	if strings.TrimSpace(formatted) == "" {
		s.logger.Warn("formatting agent returned empty output, using basic cleanup")
		return textutil.BasicMarkdownCleanup(body)
	}
	return formatted
}

func (s *Service) complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: contentTemperature,
		MaxTokens:   contentMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", services.Wrap(
			services.ErrExternalTool, "summarize", "chat completion",
			"Model response contained no choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
