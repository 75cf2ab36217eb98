// Package testutil holds helpers shared by the middleware tests.
package testutil

import (
	"context"
	"sync"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
)

// MockLogger is a test logger that captures log entries for assertion in tests.
// Loggers derived through With and WithContext write to the same entries.
type MockLogger struct {
	sink   *sink
	fields []any
}

type sink struct {
	mu   sync.Mutex
	logs []LogEntry
}

// LogEntry represents a single log entry captured by MockLogger.
type LogEntry struct {
	Level  string
	Msg    string
	Fields map[string]interface{}
}

func (m *MockLogger) Debug(msg string, args ...any) { m.record("debug", msg, args) }
func (m *MockLogger) Info(msg string, args ...any)  { m.record("info", msg, args) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.record("warn", msg, args) }
func (m *MockLogger) Error(msg string, args ...any) { m.record("error", msg, args) }

// With returns a child logger carrying args on every entry.
func (m *MockLogger) With(args ...any) logger.Logger {
	fields := append(append([]any{}, m.fields...), args...)
	return &MockLogger{sink: m.shared(), fields: fields}
}

// WithContext adds the request ID of ctx, like the zap logger does.
func (m *MockLogger) WithContext(ctx context.Context) logger.Logger {
	if id := logger.RequestID(ctx); id != "" {
		return m.With("request_id", id)
	}
	return m
}

// Entries returns a copy of the captured entries.
func (m *MockLogger) Entries() []LogEntry {
	s := m.shared()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.logs...)
}

// Find returns the first entry logged with msg.
func (m *MockLogger) Find(msg string) (LogEntry, bool) {
	for _, entry := range m.Entries() {
		if entry.Msg == msg {
			return entry, true
		}
	}
	return LogEntry{}, false
}

var initMu sync.Mutex

func (m *MockLogger) shared() *sink {
	initMu.Lock()
	defer initMu.Unlock()
	if m.sink == nil {
		m.sink = &sink{}
	}
	return m.sink
}

func (m *MockLogger) record(level, msg string, args []any) {
	fields := argsToMap(append(append([]any{}, m.fields...), args...))
	s := m.shared()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, LogEntry{Level: level, Msg: msg, Fields: fields})
}

func argsToMap(args []any) map[string]interface{} {
	fields := make(map[string]interface{})
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	return fields
}
