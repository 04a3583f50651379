// Package logging provides a slog handler that keeps recent warnings and
// errors in memory so the health view can report them.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Event categories inferred from log records.
const (
	CategoryAuth      = "auth"
	CategoryCamera    = "camera"
	CategoryEmployees = "employees"
	CategorySession   = "session"
	CategorySystem    = "system"
)

// DefaultCapacity is the number of events kept by NewRecentHandler.
const DefaultCapacity = 50

// Event is a captured log record.
type Event struct {
	Time     time.Time
	Level    string
	Category string
	Message  string
	Metadata string // attributes as a JSON object
}

// ring is the event buffer shared by a handler and its derived handlers.
type ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

func newRing(capacity int) *ring {
	return &ring{events: make([]Event, capacity)}
}

func (r *ring) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

// snapshot returns events newest first.
func (r *ring) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.events)
	}
	out := make([]Event, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.next - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out
}

// RecentHandler is a slog.Handler that wraps another handler and also keeps
// WARN and ERROR level records in a fixed-size ring buffer.
type RecentHandler struct {
	inner slog.Handler
	buf   *ring
	level slog.Level // Minimum level to keep (default: WARN)
	attrs []slog.Attr
}

// NewRecentHandler creates a RecentHandler keeping DefaultCapacity events.
func NewRecentHandler(inner slog.Handler) *RecentHandler {
	return NewRecentHandlerWithLevel(inner, slog.LevelWarn, DefaultCapacity)
}

// NewRecentHandlerWithLevel creates a RecentHandler with a custom minimum
// level and capacity.
func NewRecentHandlerWithLevel(inner slog.Handler, level slog.Level, capacity int) *RecentHandler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RecentHandler{
		inner: inner,
		buf:   newRing(capacity),
		level: level,
	}
}

// Recent returns the kept events, newest first.
func (h *RecentHandler) Recent() []Event {
	return h.buf.snapshot()
}

// Enabled implements slog.Handler.
func (h *RecentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RecentHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.buf.add(Event{
			Time:     r.Time,
			Level:    levelName(r.Level),
			Category: h.extractCategory(r),
			Message:  r.Message,
			Metadata: h.extractMetadata(r),
		})
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *RecentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RecentHandler{
		inner: h.inner.WithAttrs(attrs),
		buf:   h.buf,
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *RecentHandler) WithGroup(name string) slog.Handler {
	return &RecentHandler{
		inner: h.inner.WithGroup(name),
		buf:   h.buf,
		level: h.level,
		attrs: h.attrs,
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	default:
		return "info"
	}
}

// eachAttr visits handler-level attributes, then record attributes.
func (h *RecentHandler) eachAttr(r slog.Record, fn func(slog.Attr) bool) {
	for _, a := range h.attrs {
		if !fn(a) {
			return
		}
	}
	r.Attrs(fn)
}

// extractCategory takes the "category" attribute or infers one from the
// message.
func (h *RecentHandler) extractCategory(r slog.Record) string {
	var category string

	h.eachAttr(r, func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})

	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "auth"):
		return CategoryAuth
	case strings.Contains(msg, "camera"):
		return CategoryCamera
	case strings.Contains(msg, "employee"):
		return CategoryEmployees
	case strings.Contains(msg, "session"):
		return CategorySession
	default:
		return CategorySystem
	}
}

// extractMetadata collects all log attributes into a JSON string.
func (h *RecentHandler) extractMetadata(r slog.Record) string {
	var sb strings.Builder
	sb.WriteString("{")
	first := true

	h.eachAttr(r, func(a slog.Attr) bool {
		if a.Key == "category" {
			return true
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})

	sb.WriteString("}")
	return sb.String()
}

// escapeJSON escapes special characters in a string for JSON.
func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
