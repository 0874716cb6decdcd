package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"confab/internal/conversation"
	"confab/internal/services"
)

const (
	defaultBaseURL        = "https://api.assemblyai.com"
	defaultHTTPTimeout    = 60 * time.Second
	defaultPollInterval   = 5 * time.Second
	defaultJobTimeout     = 30 * time.Minute
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the runtime settings for an AssemblyAI-style endpoint.
type Config struct {
	APIKey              string
	BaseURL             string
	PollIntervalSeconds int
	TimeoutSeconds      int
}

// Result carries both interval sets produced by one speaker-labeled job.
type Result struct {
	Transcript []conversation.TranscriptSegment
	Speakers   []conversation.SpeakerSegment
}

// Client submits audio for combined transcription and speaker labeling.
type Client struct {
	cfg        Config
	httpClient *http.Client

	pollInterval     time.Duration
	jobTimeout       time.Duration
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPollInterval overrides how often job status is checked.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how waits are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a diarization client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.APIKey == "" {
		return nil, services.Wrap(
			services.ErrConfiguration, "diarize", "new client",
			"Diarization API key required; set diarization.api_key or ASSEMBLYAI_API_KEY", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: defaultHTTPTimeout},
		pollInterval:     defaultPollInterval,
		jobTimeout:       defaultJobTimeout,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	if cfg.PollIntervalSeconds > 0 {
		client.pollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	if cfg.TimeoutSeconds > 0 {
		client.jobTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Process uploads one audio file, submits a speaker-labeled transcript job,
// and polls until it finishes.
func (c *Client) Process(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, services.Wrap(
			services.ErrNotFound, "diarize", "read audio",
			"Prepared audio file missing", err)
	}

	uploadURL, err := c.upload(ctx, data)
	if err != nil {
		return Result{}, services.Wrap(
			services.ErrExternalTool, "diarize", "upload",
			fmt.Sprintf("Upload of %s failed", filepath.Base(path)), err)
	}

	jobID, err := c.submit(ctx, uploadURL)
	if err != nil {
		return Result{}, services.Wrap(
			services.ErrExternalTool, "diarize", "submit",
			"Transcript job submission failed", err)
	}

	payload, err := c.poll(ctx, jobID)
	if err != nil {
		return Result{}, err
	}
	return resultFromUtterances(payload.Utterances), nil
}

// ProcessChunks runs each chunk in order and shifts its intervals by the
// chunk's position.
func (c *Client) ProcessChunks(ctx context.Context, paths []string, chunkMinutes int) (Result, error) {
	if chunkMinutes <= 0 {
		return Result{}, services.Wrap(
			services.ErrValidation, "diarize", "chunk length",
			fmt.Sprintf("Invalid chunk length %d", chunkMinutes), nil)
	}

	var merged Result
	for i, path := range paths {
		result, err := c.Process(ctx, path)
		if err != nil {
			return Result{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(paths), err)
		}
		offset := float64(i * chunkMinutes * 60)
		for _, segment := range result.Transcript {
			segment.Start += offset
			segment.End += offset
			merged.Transcript = append(merged.Transcript, segment)
		}
		for _, speaker := range result.Speakers {
			speaker.Start += offset
			speaker.End += offset
			merged.Speakers = append(merged.Speakers, speaker)
		}
	}
	return merged, nil
}

// HealthCheck verifies the API key is present and the endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/transcript?limit=1", nil)
	if err != nil {
		return fmt.Errorf("diarize health: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("diarize health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("diarize health: api key rejected (http %d)", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("diarize health: endpoint unavailable (http %d)", resp.StatusCode)
	}
	return nil
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type submitRequest struct {
	AudioURL      string `json:"audio_url"`
	SpeakerLabels bool   `json:"speaker_labels"`
}

type utterance struct {
	Start   int64  `json:"start"`
	End     int64  `json:"end"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type transcriptPayload struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Error      string      `json:"error"`
	Utterances []utterance `json:"utterances"`
}

func (c *Client) upload(ctx context.Context, data []byte) (string, error) {
	var parsed uploadResponse
	err := c.doJSONWithRetry(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/upload", data, "application/octet-stream", &parsed)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.UploadURL) == "" {
		return "", errors.New("upload response missing upload_url")
	}
	return parsed.UploadURL, nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(submitRequest{AudioURL: audioURL, SpeakerLabels: true})
	if err != nil {
		return "", fmt.Errorf("encode job request: %w", err)
	}
	var parsed transcriptPayload
	if err := c.doJSONWithRetry(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/transcript", body, "application/json", &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.ID) == "" {
		return "", errors.New("job response missing id")
	}
	return parsed.ID, nil
}

// poll checks job status until the provider reports a terminal state or the
// configured job timeout elapses.
func (c *Client) poll(ctx context.Context, jobID string) (transcriptPayload, error) {
	deadline := time.Now().Add(c.jobTimeout)
	for {
		var payload transcriptPayload
		err := c.doJSONWithRetry(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/transcript/"+url.PathEscape(jobID), nil, "", &payload)
		if err != nil {
			return transcriptPayload{}, services.Wrap(
				services.ErrExternalTool, "diarize", "poll",
				fmt.Sprintf("Status check for job %s failed", jobID), err)
		}

		switch strings.ToLower(strings.TrimSpace(payload.Status)) {
		case "completed":
			return payload, nil
		case "error", "failed":
			detail := strings.TrimSpace(payload.Error)
			if detail == "" {
				detail = "provider reported failure without detail"
			}
			return transcriptPayload{}, services.Wrap(
				services.ErrExternalTool, "diarize", "poll",
				fmt.Sprintf("Job %s failed: %s", jobID, detail), nil)
		}

		if time.Now().After(deadline) {
			return transcriptPayload{}, services.Wrap(
				services.ErrTimeout, "diarize", "poll",
				fmt.Sprintf("Job %s did not finish within %s", jobID, c.jobTimeout), nil)
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return transcriptPayload{}, err
		}
	}
}

func resultFromUtterances(utterances []utterance) Result {
	result := Result{
		Transcript: make([]conversation.TranscriptSegment, 0, len(utterances)),
		Speakers:   make([]conversation.SpeakerSegment, 0, len(utterances)),
	}
	for _, utt := range utterances {
		start := float64(utt.Start) / 1000.0
		end := float64(utt.End) / 1000.0
		result.Transcript = append(result.Transcript, conversation.TranscriptSegment{
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(utt.Text),
		})
		result.Speakers = append(result.Speakers, conversation.SpeakerSegment{
			Start:   start,
			End:     end,
			Speaker: strings.TrimSpace(utt.Speaker),
		})
	}
	return result
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Client) doJSONWithRetry(ctx context.Context, method, endpoint string, body []byte, contentType string, target any) error {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.doJSONOnce(ctx, method, endpoint, body, contentType, target)
		if err == nil {
			return nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) doJSONOnce(ctx context.Context, method, endpoint string, body []byte, contentType string, target any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
			RetryAfter: retryAfter,
		}
	}
	if target != nil {
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := defaultRetryBaseDelay
	maxDelay := defaultRetryMaxDelay
	if c != nil {
		if c.retryBaseDelay >= 0 {
			base = c.retryBaseDelay
		}
		if c.retryMaxDelay > 0 {
			maxDelay = c.retryMaxDelay
		}
	}
	if base <= 0 {
		return 0
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := defaultRetryMaxDelay
	if c != nil && c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("diarize wait: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c != nil && c.sleeper != nil {
		c.sleeper(delay)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
