package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEvent is a structured log line published to the streaming hub. Sequence
// numbers are assigned by the hub and increase monotonically for its lifetime.
type LogEvent struct {
	Sequence      uint64            `json:"seq"`
	Timestamp     time.Time         `json:"ts"`
	Level         string            `json:"level"`
	Message       string            `json:"msg"`
	Component     string            `json:"component,omitempty"`
	Stage         string            `json:"stage,omitempty"`
	ItemID        int64             `json:"item_id,omitempty"`
	Worker        string            `json:"worker,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Details       []DetailField     `json:"details,omitempty"`
}

// DetailField mirrors one curated info bullet from the console output.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LogEventSink receives every event published to a hub, for persistence or
// forwarding. Append must not block for long; it runs on the logging path.
type LogEventSink interface {
	Append(LogEvent)
}

// StreamHub keeps a bounded window of recent log events in memory and wakes
// long-poll waiters when new events land. A nil hub is safe to use.
type StreamHub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	events   []LogEvent
	lastSeq  uint64
	sinks    []LogEventSink
}

// NewStreamHub constructs a hub buffering at most capacity events.
func NewStreamHub(capacity int) *StreamHub {
	if capacity <= 0 {
		capacity = 512
	}
	hub := &StreamHub{capacity: capacity}
	hub.cond = sync.NewCond(&hub.mu)
	return hub
}

// AddSink registers a sink that will see every subsequent Publish.
func (h *StreamHub) AddSink(sink LogEventSink) {
	if h == nil || sink == nil {
		return
	}
	h.mu.Lock()
	h.sinks = append(h.sinks, sink)
	h.mu.Unlock()
}

// Publish assigns the event a sequence number, stores it, and notifies
// waiters and sinks. The oldest event is evicted once the buffer is full.
func (h *StreamHub) Publish(evt LogEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.lastSeq++
	evt.Sequence = h.lastSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.events) == h.capacity {
		copy(h.events, h.events[1:])
		h.events = h.events[:h.capacity-1]
	}
	h.events = append(h.events, evt)
	sinks := append([]LogEventSink(nil), h.sinks...)
	h.cond.Broadcast()
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Append(evt)
	}
}

// Fetch returns buffered events with sequence greater than since, oldest
// first, up to limit. With wait set, it blocks until an event arrives or ctx
// ends. The returned cursor is the hub's latest assigned sequence.
func (h *StreamHub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]LogEvent, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	// cond.Wait cannot observe ctx directly, so a helper goroutine turns
	// cancellation into a broadcast.
	stop := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.cond.Broadcast()
			case <-stop:
			}
		}()
	}
	defer close(stop)

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		events, cursor := h.eventsAfter(since, limit)
		if len(events) > 0 || !wait {
			return events, cursor, ctxErr(ctx)
		}
		if err := ctxErr(ctx); err != nil {
			return nil, cursor, err
		}
		h.cond.Wait()
		if err := ctxErr(ctx); err != nil {
			return nil, cursor, err
		}
	}
}

// Tail returns up to limit of the most recent events without blocking.
func (h *StreamHub) Tail(limit int) ([]LogEvent, uint64) {
	if h == nil {
		return nil, 0
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return nil, h.lastSeq
	}
	start := len(h.events) - limit
	if start < 0 {
		start = 0
	}
	out := make([]LogEvent, len(h.events)-start)
	copy(out, h.events[start:])
	return out, h.lastSeq
}

// FirstSequence reports the smallest sequence still buffered, letting clients
// detect gaps after eviction.
func (h *StreamHub) FirstSequence() uint64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return h.lastSeq
	}
	return h.events[0].Sequence
}

func (h *StreamHub) eventsAfter(since uint64, limit int) ([]LogEvent, uint64) {
	start := len(h.events)
	for i, evt := range h.events {
		if evt.Sequence > since {
			start = i
			break
		}
	}
	if start == len(h.events) {
		return nil, h.lastSeq
	}
	end := start + limit
	if end > len(h.events) {
		end = len(h.events)
	}
	out := make([]LogEvent, end-start)
	copy(out, h.events[start:end])
	return out, h.lastSeq
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

// streamHandler tees every record into a hub before delegating to the wrapped
// handler. Attrs bound via WithAttrs are folded into published events so
// component loggers keep their identity in the stream.
type streamHandler struct {
	next  slog.Handler
	hub   *StreamHub
	bound []slog.Attr
}

// WithStream returns a logger that publishes each record to hub in addition
// to the logger's normal output.
func WithStream(logger *slog.Logger, hub *StreamHub) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if hub == nil {
		return logger
	}
	return slog.New(&streamHandler{next: logger.Handler(), hub: hub})
}

func (h *streamHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *streamHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.hub != nil {
		h.hub.Publish(h.buildEvent(record))
	}
	return h.next.Handle(ctx, record.Clone())
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make([]slog.Attr, 0, len(h.bound)+len(attrs))
	bound = append(bound, h.bound...)
	bound = append(bound, attrs...)
	return &streamHandler{next: h.next.WithAttrs(attrs), hub: h.hub, bound: bound}
}

func (h *streamHandler) WithGroup(name string) slog.Handler {
	return &streamHandler{next: h.next.WithGroup(name), hub: h.hub, bound: h.bound}
}

func (h *streamHandler) buildEvent(record slog.Record) LogEvent {
	event := LogEvent{
		Timestamp: record.Time,
		Level:     strings.ToUpper(record.Level.String()),
		Message:   strings.TrimSpace(record.Message),
		Fields:    make(map[string]string),
	}

	for _, attr := range h.bound {
		event.absorb(attr)
	}

	var attrs []kv
	record.Attrs(func(attr slog.Attr) bool {
		event.absorb(attr)
		if key := strings.TrimSpace(attr.Key); key != "" {
			attrs = append(attrs, kv{key: key, value: attr.Value})
		}
		return true
	})

	if info, _ := selectInfoFields(attrs, infoAttrLimit, false); len(info) > 0 {
		event.Details = make([]DetailField, 0, len(info))
		for _, field := range info {
			event.Details = append(event.Details, DetailField{Label: field.label, Value: field.value})
		}
	}
	return event
}

// absorb routes one attribute into the event's typed fields, falling back to
// the generic Fields map. Call-site attrs overwrite bound ones.
func (e *LogEvent) absorb(attr slog.Attr) {
	key := strings.TrimSpace(attr.Key)
	if key == "" {
		return
	}
	switch key {
	case FieldItemID:
		e.ItemID = attr.Value.Int64()
	case FieldStage:
		e.Stage = attrString(attr.Value)
	case FieldWorker:
		e.Worker = attrString(attr.Value)
	case FieldCorrelationID:
		e.CorrelationID = attrString(attr.Value)
	case FieldComponent:
		e.Component = attrString(attr.Value)
	default:
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
		e.Fields[key] = attrString(attr.Value)
	}
}
