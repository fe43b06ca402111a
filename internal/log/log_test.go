package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	underlying := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(&filteringHandler{underlying: underlying})
}

func TestFilteringHandler(t *testing.T) {
	testCases := []struct {
		name    string
		log     func(l *slog.Logger)
		written bool
	}{
		{
			name:    "section in record",
			log:     func(l *slog.Logger) { l.Debug("hello", "section", "bindings") },
			written: true,
		},
		{
			name:    "section through With",
			log:     func(l *slog.Logger) { l.With("section", "bindings").Debug("hello") },
			written: true,
		},
		{
			name:    "nested section name",
			log:     func(l *slog.Logger) { l.With("section", "symbols-copy").Info("hello") },
			written: true,
		},
		{
			name:    "unknown section",
			log:     func(l *slog.Logger) { l.With("section", "backend").Debug("hello") },
			written: false,
		},
		{
			name:    "no section",
			log:     func(l *slog.Logger) { l.Debug("hello") },
			written: false,
		},
		{
			name:    "warnings always pass",
			log:     func(l *slog.Logger) { l.Warn("hello") },
			written: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tc.log(newTestLogger(buf))
			assert.Equal(t, tc.written, buf.Len() > 0, "output: %q", buf.String())
		})
	}
}
