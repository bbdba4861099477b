package logger

import (
	"fmt"
	"sync"
)

// TestLogEntry is a single formatted message captured by the test logger.
type TestLogEntry struct {
	Severity string
	Message  string
}

type testStore struct {
	mu      sync.Mutex
	entries []TestLogEntry
}

// TestLogger captures log output in memory for assertions in tests.
// Loggers derived via With or WithPrefix record into the same store.
type TestLogger struct {
	store    *testStore
	prefixes []string
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a Logger which records every message it is given.
func NewTestLogger() *TestLogger {
	return &TestLogger{store: &testStore{}}
}

// Logs returns a copy of everything logged so far.
func (t *TestLogger) Logs() []TestLogEntry {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	out := make([]TestLogEntry, len(t.store.entries))
	copy(out, t.store.entries)
	return out
}

func (t *TestLogger) record(severity, msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	for i := len(t.prefixes) - 1; i >= 0; i-- {
		line = t.prefixes[i] + " " + line
	}
	t.store.mu.Lock()
	t.store.entries = append(t.store.entries, TestLogEntry{Severity: severity, Message: line})
	t.store.mu.Unlock()
}

func (t *TestLogger) With(metadata map[string]interface{}) Logger { return t }

func (t *TestLogger) WithPrefix(prefix string) Logger {
	return &TestLogger{
		store:    t.store,
		prefixes: append(append([]string{}, t.prefixes...), prefix),
	}
}

func (t *TestLogger) Trace(msg string, args ...interface{}) { t.record("TRACE", msg, args...) }
func (t *TestLogger) Debug(msg string, args ...interface{}) { t.record("DEBUG", msg, args...) }
func (t *TestLogger) Info(msg string, args ...interface{})  { t.record("INFO", msg, args...) }
func (t *TestLogger) Warn(msg string, args ...interface{})  { t.record("WARN", msg, args...) }
func (t *TestLogger) Error(msg string, args ...interface{}) { t.record("ERROR", msg, args...) }

func (t *TestLogger) IsLevelEnabled(LogLevel) bool { return true }
