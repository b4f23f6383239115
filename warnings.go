package composite

import (
	"context"
	"log/slog"
	"sync"
)

// Warner receives one human readable line per runtime diagnostic. Warnings
// never interrupt rendering.
type Warner interface {
	Warn(message string)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(message string)

// Warn implements Warner.
func (f WarnerFunc) Warn(message string) {
	if f != nil {
		f(message)
	}
}

type noopWarner struct{}

func (noopWarner) Warn(string) {}

// SlogWarner writes every warning as a single WARN record.
type SlogWarner struct {
	Logger *slog.Logger
}

// Warn implements Warner.
func (w SlogWarner) Warn(message string) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, message, slog.String("channel", "composite"))
}

// CaptureWarner records warnings for assertions in tests.
type CaptureWarner struct {
	mu       sync.Mutex
	messages []string
}

// Warn implements Warner.
func (w *CaptureWarner) Warn(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, message)
}

// Messages returns a copy of the recorded warnings.
func (w *CaptureWarner) Messages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.messages...)
}

// Len returns the number of recorded warnings.
func (w *CaptureWarner) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

// Reset drops every recorded warning.
func (w *CaptureWarner) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = nil
}

// dedupeWarner suppresses a message identical to the one emitted right before it.
type dedupeWarner struct {
	next Warner
	last string
	seen bool
}

func (w *dedupeWarner) Warn(message string) {
	if w.seen && w.last == message {
		return
	}
	w.seen = true
	w.last = message
	w.next.Warn(message)
}
