// Package testutil holds logging helpers shared by dami's package tests.
package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through t.Log, so
// guard verdicts and adapter activity show up with -v or on failure.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	logger, _ := NewCaptureLogger(t)
	return logger
}

// LogCapture keeps every record written by a capture logger.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Lines returns the captured records in logfmt, one per entry.
func (c *LogCapture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text := strings.TrimRight(c.buf.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Find returns the first captured record containing every fragment.
func (c *LogCapture) Find(fragments ...string) (string, bool) {
	for _, line := range c.Lines() {
		matched := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				matched = false
				break
			}
		}
		if matched {
			return line, true
		}
	}
	return "", false
}

// NewCaptureLogger is NewTestLogger plus a LogCapture for asserting on
// what was logged.
func NewCaptureLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	t.Helper()
	capture := &LogCapture{}
	handler := slog.NewTextHandler(&captureWriter{t: t, capture: capture}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return slog.New(handler), capture
}

type captureWriter struct {
	t       testing.TB
	capture *LogCapture
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.capture.mu.Lock()
	w.capture.buf.Write(p)
	w.capture.mu.Unlock()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
