package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Placeholder replaces secret values in log output.
const Placeholder = "***REDACTED***"

// secretSet is shared by every RedactFilter so that secrets registered before
// Setup is called are still scrubbed afterwards.
type secretSet struct {
	mu     sync.RWMutex
	values map[string]bool
}

var registered = &secretSet{values: make(map[string]bool)}

// AddSecret registers a value to be redacted from all log output.
func AddSecret(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	registered.mu.Lock()
	defer registered.mu.Unlock()
	registered.values[value] = true
}

// ResetSecrets forgets all registered secrets.
func ResetSecrets() {
	registered.mu.Lock()
	defer registered.mu.Unlock()
	registered.values = make(map[string]bool)
}

func (s *secretSet) snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	return out
}

// Redact replaces any registered secret values in s with Placeholder.
func Redact(s string) string {
	return redactWith(s, registered.snapshot())
}

func redactWith(s string, secrets []string) string {
	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	return s
}

// RedactFilter wraps a slog handler to scrub registered secret values from
// messages and string attributes.
type RedactFilter struct {
	inner slog.Handler
}

// NewRedactFilter creates a log handler that redacts registered secret values.
func NewRedactFilter(inner slog.Handler) *RedactFilter {
	return &RedactFilter{inner: inner}
}

// Enabled delegates to the inner handler.
func (f *RedactFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.inner.Enabled(ctx, level)
}

// Handle redacts secret values from the record before passing it on.
func (f *RedactFilter) Handle(ctx context.Context, record slog.Record) error {
	secrets := registered.snapshot()
	if len(secrets) == 0 {
		return f.inner.Handle(ctx, record)
	}

	redacted := slog.NewRecord(record.Time, record.Level, redactWith(record.Message, secrets), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redactAttr(a, secrets))
		return true
	})

	return f.inner.Handle(ctx, redacted)
}

// WithAttrs delegates to the inner handler.
func (f *RedactFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	secrets := registered.snapshot()
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = redactAttr(a, secrets)
	}
	return &RedactFilter{inner: f.inner.WithAttrs(scrubbed)}
}

// WithGroup delegates to the inner handler.
func (f *RedactFilter) WithGroup(name string) slog.Handler {
	return &RedactFilter{inner: f.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr, secrets []string) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, redactWith(a.Value.String(), secrets))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, redactWith(err.Error(), secrets))
		}
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]any, len(group))
		for i, g := range group {
			out[i] = redactAttr(g, secrets)
		}
		return slog.Group(a.Key, out...)
	}
	return a
}
