package daemon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"confab/internal/api"
	"confab/internal/conversation"
	"confab/internal/fileutil"
	"confab/internal/media/audio"
	"confab/internal/queue"
	"confab/internal/textutil"
	"confab/internal/timing"
)

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, `multipart field "file" is required`)
		return
	}
	defer file.Close()
	if !audio.IsSupportedSource(header.Filename) {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported audio extension %q", strings.ToLower(filepath.Ext(header.Filename))))
		return
	}

	destPath, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	item, err := s.daemon.AddFile(r.Context(), destPath)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.QueueItemResponse{Item: api.FromQueueItem(item)})
}

// saveUpload streams an uploaded recording into the inbox directory under a
// name that does not collide with an existing file.
func (s *apiServer) saveUpload(src io.Reader, name string) (string, error) {
	dir := s.daemon.cfg.Paths.InboxDir
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("inbox directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create inbox directory: %w", err)
	}

	base := filepath.Base(strings.TrimSpace(name))
	ext := filepath.Ext(base)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = "recording"
	}

	for attempt := 0; attempt < 1000; attempt++ {
		candidate := stem + ext
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, attempt, ext)
		}
		path := filepath.Join(dir, candidate)
		out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create inbox file: %w", err)
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			os.Remove(path)
			return "", fmt.Errorf("write inbox file: %w", err)
		}
		if err := out.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("close inbox file: %w", err)
		}
		return path, nil
	}
	return "", errors.New("could not allocate a unique inbox file name")
}

func (s *apiServer) handleJobSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	idStr, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	item, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}

	switch action {
	case "transcript":
		switch r.Method {
		case http.MethodGet:
			s.handleTranscriptGet(w, r, item)
		case http.MethodPut:
			s.handleTranscriptPut(w, r, item)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "document":
		switch r.Method {
		case http.MethodGet:
			s.handleDocumentGet(w, r, item)
		case http.MethodPut:
			s.handleDocumentPut(w, r, item)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "export":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleJobExport(w, r, item)
	case "realign":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleJobRealign(w, r, item)
	case "summarize":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleJobSummarize(w, r, item)
	default:
		s.writeError(w, http.StatusNotFound, "unknown job endpoint")
	}
}

func (s *apiServer) handleTranscriptGet(w http.ResponseWriter, r *http.Request, item *queue.Item) {
	if item.ConversationFile == "" {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("item %d has no conversation yet", item.ID))
		return
	}
	f, err := os.Open(item.ConversationFile)
	if errors.Is(err, fs.ErrNotExist) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("conversation file for item %d is missing", item.ID))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	utterances, err := conversation.ReadCSV(f)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("parse conversation: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.TranscriptResponse{
		ID:         item.ID,
		Title:      item.Title,
		Path:       item.ConversationFile,
		Utterances: api.FromUtterances(utterances),
	})
}

func (s *apiServer) handleTranscriptPut(w http.ResponseWriter, r *http.Request, item *queue.Item) {
	var req api.TranscriptUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Utterances) == 0 {
		s.writeError(w, http.StatusBadRequest, "transcript rows are required")
		return
	}
	if item.ConversationFile == "" {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("item %d has no conversation artifact to replace", item.ID))
		return
	}

	var buf bytes.Buffer
	if err := conversation.WriteCSV(&buf, api.ToUtterances(req.Utterances)); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := fileutil.WriteAtomic(item.ConversationFile, buf.Bytes(), 0o644); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("rewrite conversation: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.TranscriptResponse{
		ID:         item.ID,
		Title:      item.Title,
		Path:       item.ConversationFile,
		Utterances: req.Utterances,
	})
}

func (s *apiServer) handleDocumentGet(w http.ResponseWriter, r *http.Request, item *queue.Item) {
	if item.DocumentFile == "" {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("item %d has no summary document yet", item.ID))
		return
	}
	data, err := os.ReadFile(item.DocumentFile)
	if errors.Is(err, fs.ErrNotExist) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("document file for item %d is missing", item.ID))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.DocumentResponse{
		ID:      item.ID,
		Title:   item.Title,
		Path:    item.DocumentFile,
		Content: string(data),
	})
}

func (s *apiServer) handleDocumentPut(w http.ResponseWriter, r *http.Request, item *queue.Item) {
	var req api.DocumentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.writeError(w, http.StatusBadRequest, "document content is required")
		return
	}
	if item.DocumentFile == "" {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("item %d has no summary document to replace", item.ID))
		return
	}

	if err := fileutil.WriteAtomic(item.DocumentFile, []byte(req.Content), 0o644); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("rewrite document: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.DocumentResponse{
		ID:      item.ID,
		Title:   item.Title,
		Path:    item.DocumentFile,
		Content: req.Content,
	})
}

func (s *apiServer) handleJobExport(w http.ResponseWriter, r *http.Request, item *queue.Item) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}

	var (
		path        string
		contentType string
		ext         string
	)
	switch format {
	case "csv":
		path = item.ConversationFile
		contentType = "text/csv; charset=utf-8"
		ext = ".csv"
	case "markdown":
		path = item.DocumentFile
		contentType = "text/markdown; charset=utf-8"
		ext = ".md"
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}
	if path == "" {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("item %d has no %s artifact yet", item.ID, format))
		return
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("%s artifact for item %d is missing", format, item.ID))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := textutil.SanitizeFileName(item.Title)
	if filename == "" {
		filename = fmt.Sprintf("item-%d", item.ID)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *apiServer) handleJobRealign(w http.ResponseWriter, r *http.Request, item *queue.Item) {
	if item.TranscriptFile == "" {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("item %d has no transcript artifacts", item.ID))
		return
	}
	s.requeueJob(w, r, item.ID, queue.StatusTranscribed, "Realign requested")
}

func (s *apiServer) handleJobSummarize(w http.ResponseWriter, r *http.Request, item *queue.Item) {
	if item.ConversationFile == "" {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("item %d has no conversation artifact", item.ID))
		return
	}
	s.requeueJob(w, r, item.ID, queue.StatusAligned, "Summarize requested")
}

func (s *apiServer) requeueJob(w http.ResponseWriter, r *http.Request, id int64, target queue.Status, stage string) {
	ok, err := s.daemon.Requeue(r.Context(), id, target, stage)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		s.writeError(w, http.StatusConflict, fmt.Sprintf("item %d is mid-stage", id))
		return
	}
	refreshed, err := s.queueSvc.Describe(r.Context(), id)
	if err != nil || refreshed == nil {
		s.writeJSON(w, http.StatusAccepted, api.QueueItemResponse{})
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.QueueItemResponse{Item: *refreshed})
}

func (s *apiServer) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	minutesStr := strings.TrimSpace(query.Get("minutes"))
	if minutesStr == "" {
		s.writeError(w, http.StatusBadRequest, "minutes parameter is required")
		return
	}
	minutes, err := strconv.ParseFloat(minutesStr, 64)
	if err != nil || minutes < 0 {
		s.writeError(w, http.StatusBadRequest, "invalid minutes value")
		return
	}
	chunking := query.Get("chunking") == "1" || strings.EqualFold(query.Get("chunking"), "true")
	speedup, _ := strconv.ParseFloat(query.Get("speedup"), 64)

	cfg := s.daemon.cfg
	profile := timing.Profile{
		Provider:     cfg.Transcription.Provider,
		Chunked:      chunking,
		Speedup:      speedup,
		ChunkMinutes: cfg.Audio.ChunkMinutes,
	}
	records, err := s.daemon.store.RecentTimings(r.Context(), 50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	samples := make([]timing.Sample, 0, len(records))
	for _, rec := range records {
		samples = append(samples, timing.Sample{
			Provider:          rec.Provider,
			Chunked:           rec.Chunked,
			Speedup:           rec.Speedup,
			AudioSeconds:      rec.AudioSeconds,
			ProcessingSeconds: rec.ProcessingSeconds,
		})
	}
	estimate := timing.ForDuration(minutes, profile, samples)
	s.writeJSON(w, http.StatusOK, api.FromEstimate(minutes, estimate))
}

func (s *apiServer) handlePrompts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	store := s.daemon.Prompts()
	if store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "prompt store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, api.PromptListResponse{Prompts: api.FromPromptEntries(store.List())})
}

func (s *apiServer) handlePromptSubtree(w http.ResponseWriter, r *http.Request) {
	store := s.daemon.Prompts()
	if store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "prompt store unavailable")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/prompts/")
	if rest == "reload" {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := store.Reload(); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, api.PromptListResponse{Prompts: api.FromPromptEntries(store.List())})
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "unknown prompt endpoint")
		return
	}
	key := rest

	switch r.Method {
	case http.MethodGet:
		value, ok := store.Get(key)
		if !ok {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("prompt %q not found", key))
			return
		}
		s.writeJSON(w, http.StatusOK, api.PromptEntry{Key: key, Value: value})
	case http.MethodPut:
		var req api.PromptUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := store.Set(key, req.Value); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		value, _ := store.Get(key)
		s.writeJSON(w, http.StatusOK, api.PromptEntry{Key: key, Value: value})
	case http.MethodDelete:
		if _, ok := store.Get(key); !ok {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("prompt %q not found", key))
			return
		}
		if err := store.Delete(key); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
