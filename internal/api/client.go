package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnavailable indicates the daemon API could not be reached.
var ErrUnavailable = errors.New("daemon API unavailable")

// Error carries an HTTP status code plus the server-provided message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("daemon API returned status %d", e.StatusCode)
}

// IsNotFound reports whether err is an API not-found response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is an API conflict response.
func IsConflict(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsUnavailable reports whether err represents an unreachable daemon rather
// than a rejected request.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.Is(err, ErrUnavailable) || errors.As(err, &opErr)
}

// Client talks to the daemon HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// LogQuery shapes a request against the log stream endpoint.
type LogQuery struct {
	Since     uint64
	Limit     int
	Follow    bool
	Tail      bool
	Component string
	Stage     string
	Worker    string
	Level     string
	ItemID    int64
}

// NewClient builds a client for the given bind address. Returns nil when the
// bind is empty so callers can treat an unconfigured API as absent.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, nil
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, err
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Client{
		base:  base,
		token: strings.TrimSpace(token),
		// No timeout - log follow mode blocks until the caller cancels.
		http: &http.Client{},
	}, nil
}

// Status fetches daemon runtime status.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var payload DaemonStatus
	err := c.getJSON(ctx, "/api/status", nil, &payload)
	return payload, err
}

// QueueList fetches queue items, optionally filtered by status names.
func (c *Client) QueueList(ctx context.Context, statuses ...string) ([]QueueItem, error) {
	values := url.Values{}
	if len(statuses) > 0 {
		values.Set("status", strings.Join(statuses, ","))
	}
	var payload QueueListResponse
	if err := c.getJSON(ctx, "/api/queue", values, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// QueueItem fetches a single queue item.
func (c *Client) QueueItem(ctx context.Context, id int64) (QueueItem, error) {
	var payload QueueItemResponse
	err := c.getJSON(ctx, itemPath("/api/queue", id), nil, &payload)
	return payload.Item, err
}

// QueueHealth fetches queue counts grouped by pipeline phase.
func (c *Client) QueueHealth(ctx context.Context) (QueueHealthResponse, error) {
	var payload QueueHealthResponse
	err := c.getJSON(ctx, "/api/queue/health", nil, &payload)
	return payload, err
}

// DatabaseHealth fetches queue database diagnostics.
func (c *Client) DatabaseHealth(ctx context.Context) (DatabaseHealthResponse, error) {
	var payload DatabaseHealthResponse
	err := c.getJSON(ctx, "/api/queue/db-health", nil, &payload)
	return payload, err
}

// RetryItem re-queues one failed or review item.
func (c *Client) RetryItem(ctx context.Context, id int64) (RetryItemsResult, error) {
	var payload RetryItemsResult
	err := c.postJSON(ctx, itemPath("/api/queue", id)+"/retry", nil, nil, &payload)
	return payload, err
}

// RetryAllFailed re-queues every failed and review item.
func (c *Client) RetryAllFailed(ctx context.Context) (QueueRetryResponse, error) {
	var payload QueueRetryResponse
	err := c.postJSON(ctx, "/api/queue/retry", nil, nil, &payload)
	return payload, err
}

// CancelItem cancels an item waiting between stages.
func (c *Client) CancelItem(ctx context.Context, id int64) (CancelItemsResult, error) {
	var payload CancelItemsResult
	err := c.postJSON(ctx, itemPath("/api/queue", id)+"/cancel", nil, nil, &payload)
	return payload, err
}

// RemoveItem deletes a queue item.
func (c *Client) RemoveItem(ctx context.Context, id int64) (RemoveItemsResult, error) {
	var payload RemoveItemsResult
	err := c.doJSON(ctx, http.MethodDelete, itemPath("/api/queue", id), nil, nil, "", &payload)
	return payload, err
}

// ClearQueue removes items in the given scope (completed, failed, or all).
func (c *Client) ClearQueue(ctx context.Context, scope string) (QueueClearResponse, error) {
	values := url.Values{}
	if strings.TrimSpace(scope) != "" {
		values.Set("scope", scope)
	}
	var payload QueueClearResponse
	err := c.postJSON(ctx, "/api/queue/clear", values, nil, &payload)
	return payload, err
}

// Upload streams an audio file to the daemon and returns the queued item.
func (c *Client) Upload(ctx context.Context, path string) (QueueItem, error) {
	if c == nil {
		return QueueItem{}, ErrUnavailable
	}
	file, err := os.Open(path)
	if err != nil {
		return QueueItem{}, err
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	var payload QueueItemResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/jobs", nil, pr, writer.FormDataContentType(), &payload); err != nil {
		return QueueItem{}, err
	}
	return payload.Item, nil
}

// Transcript fetches the aligned conversation rows for an item.
func (c *Client) Transcript(ctx context.Context, id int64) (TranscriptResponse, error) {
	var payload TranscriptResponse
	err := c.getJSON(ctx, itemPath("/api/jobs", id)+"/transcript", nil, &payload)
	return payload, err
}

// UpdateTranscript replaces the aligned conversation rows for an item.
func (c *Client) UpdateTranscript(ctx context.Context, id int64, rows []Utterance) (TranscriptResponse, error) {
	body, err := json.Marshal(TranscriptUpdateRequest{Utterances: rows})
	if err != nil {
		return TranscriptResponse{}, err
	}
	var payload TranscriptResponse
	err = c.doJSON(ctx, http.MethodPut, itemPath("/api/jobs", id)+"/transcript", nil, bytes.NewReader(body), "application/json", &payload)
	return payload, err
}

// Document fetches the summary document for an item.
func (c *Client) Document(ctx context.Context, id int64) (DocumentResponse, error) {
	var payload DocumentResponse
	err := c.getJSON(ctx, itemPath("/api/jobs", id)+"/document", nil, &payload)
	return payload, err
}

// UpdateDocument replaces the summary document body for an item.
func (c *Client) UpdateDocument(ctx context.Context, id int64, content string) (DocumentResponse, error) {
	body, err := json.Marshal(DocumentUpdateRequest{Content: content})
	if err != nil {
		return DocumentResponse{}, err
	}
	var payload DocumentResponse
	err = c.doJSON(ctx, http.MethodPut, itemPath("/api/jobs", id)+"/document", nil, bytes.NewReader(body), "application/json", &payload)
	return payload, err
}

// Export downloads a rendered artifact in the requested format.
func (c *Client) Export(ctx context.Context, id int64, format string) ([]byte, error) {
	values := url.Values{}
	if strings.TrimSpace(format) != "" {
		values.Set("format", format)
	}
	return c.getRaw(ctx, itemPath("/api/jobs", id)+"/export", values)
}

// Realign re-queues an item for alignment from its stored artifacts.
func (c *Client) Realign(ctx context.Context, id int64) (QueueItem, error) {
	var payload QueueItemResponse
	err := c.postJSON(ctx, itemPath("/api/jobs", id)+"/realign", nil, nil, &payload)
	return payload.Item, err
}

// Summarize re-queues an item for summarization.
func (c *Client) Summarize(ctx context.Context, id int64) (QueueItem, error) {
	var payload QueueItemResponse
	err := c.postJSON(ctx, itemPath("/api/jobs", id)+"/summarize", nil, nil, &payload)
	return payload.Item, err
}

// NotifyTest pushes a test message through the daemon's notifier.
func (c *Client) NotifyTest(ctx context.Context) (NotifyTestResponse, error) {
	var payload NotifyTestResponse
	err := c.postJSON(ctx, "/api/notify/test", nil, nil, &payload)
	return payload, err
}

// Estimate fetches a processing-time prediction for a recording length.
func (c *Client) Estimate(ctx context.Context, minutes float64, chunking bool, speedup float64) (EstimateResponse, error) {
	values := url.Values{}
	values.Set("minutes", strconv.FormatFloat(minutes, 'f', -1, 64))
	if chunking {
		values.Set("chunking", "1")
	}
	if speedup > 0 {
		values.Set("speedup", strconv.FormatFloat(speedup, 'f', -1, 64))
	}
	var payload EstimateResponse
	err := c.getJSON(ctx, "/api/estimate", values, &payload)
	return payload, err
}

// Prompts lists all prompt entries.
func (c *Client) Prompts(ctx context.Context) ([]PromptEntry, error) {
	var payload PromptListResponse
	if err := c.getJSON(ctx, "/api/prompts", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Prompts, nil
}

// Prompt fetches one prompt entry.
func (c *Client) Prompt(ctx context.Context, key string) (PromptEntry, error) {
	var payload PromptEntry
	err := c.getJSON(ctx, promptPath(key), nil, &payload)
	return payload, err
}

// SetPrompt creates or updates a prompt entry.
func (c *Client) SetPrompt(ctx context.Context, key, value string) (PromptEntry, error) {
	body, err := json.Marshal(PromptUpdateRequest{Value: value})
	if err != nil {
		return PromptEntry{}, err
	}
	var payload PromptEntry
	err = c.doJSON(ctx, http.MethodPut, promptPath(key), nil, bytes.NewReader(body), "application/json", &payload)
	return payload, err
}

// DeletePrompt removes a prompt override.
func (c *Client) DeletePrompt(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, promptPath(key), nil, nil, "", nil)
}

// ReloadPrompts re-reads the prompt store from disk and returns the entries.
func (c *Client) ReloadPrompts(ctx context.Context) ([]PromptEntry, error) {
	var payload PromptListResponse
	if err := c.postJSON(ctx, "/api/prompts/reload", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Prompts, nil
}

// Logs fetches structured log records from the daemon stream.
func (c *Client) Logs(ctx context.Context, q LogQuery) (LogStreamResponse, error) {
	values := url.Values{}
	if q.Since > 0 {
		values.Set("since", strconv.FormatUint(q.Since, 10))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Follow {
		values.Set("follow", "1")
	}
	if q.Tail {
		values.Set("tail", "1")
	}
	if strings.TrimSpace(q.Component) != "" {
		values.Set("component", q.Component)
	}
	if strings.TrimSpace(q.Stage) != "" {
		values.Set("stage", q.Stage)
	}
	if strings.TrimSpace(q.Worker) != "" {
		values.Set("worker", q.Worker)
	}
	if strings.TrimSpace(q.Level) != "" {
		values.Set("level", q.Level)
	}
	if q.ItemID > 0 {
		values.Set("item", strconv.FormatInt(q.ItemID, 10))
	}
	var payload LogStreamResponse
	err := c.getJSON(ctx, "/api/logs", values, &payload)
	return payload, err
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, query url.Values, body io.Reader, out any) error {
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.doJSON(ctx, http.MethodPost, path, query, body, contentType, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	resp, err := c.send(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	if c == nil {
		return nil, ErrUnavailable
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var payload map[string]string
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
		apiErr.Message = payload["error"]
	}
	return apiErr
}

func itemPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

func promptPath(key string) string {
	return "/api/prompts/" + url.PathEscape(key)
}
