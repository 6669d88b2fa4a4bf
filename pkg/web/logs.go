package web

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// maxLogs is the default size of the log ring buffer
const maxLogs = 500

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// LogBuffer keeps the most recent log entries.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	size    int
}

// NewLogBuffer creates a buffer holding up to size entries.
func NewLogBuffer(size int) *LogBuffer {
	if size <= 0 {
		size = maxLogs
	}
	return &LogBuffer{entries: make([]LogEntry, 0, size), size: size}
}

// Add appends an entry, evicting the oldest when full.
func (b *LogBuffer) Add(level, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Level:   level,
		Message: message,
	}

	b.mu.Lock()
	b.entries = append(b.entries, entry)
	if len(b.entries) > b.size {
		b.entries = b.entries[1:]
	}
	b.mu.Unlock()
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *LogBuffer) Entries() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]LogEntry(nil), b.entries...)
}

// LogHandler tees records into a LogBuffer on their way to the wrapped
// handler.
type LogHandler struct {
	next  slog.Handler
	logs  *LogBuffer
	level slog.Level
	attrs string
}

// NewLogHandler wraps next. Records below level are not teed.
func NewLogHandler(next slog.Handler, logs *LogBuffer, level slog.Level) *LogHandler {
	return &LogHandler{next: next, logs: logs, level: level}
}

// Enabled implements slog.Handler.
func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level {
		var b strings.Builder
		b.WriteString(r.Message)
		b.WriteString(h.attrs)
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
			return true
		})
		h.logs.Add(strings.ToLower(r.Level.String()), b.String())
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	return &LogHandler{next: h.next.WithAttrs(attrs), logs: h.logs, level: h.level, attrs: b.String()}
}

// WithGroup implements slog.Handler. Groups only affect the wrapped handler.
func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{next: h.next.WithGroup(name), logs: h.logs, level: h.level, attrs: h.attrs}
}
