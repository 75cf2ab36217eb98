package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newBufferedLogger(t *testing.T, level LogLevel) (*ZapLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := NewZapLogger(Config{Level: level, Format: JSONFormat, Output: &buf})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return log, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestZapLogger_LogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logLevel LogLevel
		logFunc  func(Logger)
		expected bool // whether log should appear
	}{
		{name: "debug level logs debug", logLevel: DebugLevel, logFunc: func(l Logger) { l.Debug("m") }, expected: true},
		{name: "info level does not log debug", logLevel: InfoLevel, logFunc: func(l Logger) { l.Debug("m") }, expected: false},
		{name: "info level logs info", logLevel: InfoLevel, logFunc: func(l Logger) { l.Info("m") }, expected: true},
		{name: "warn level does not log info", logLevel: WarnLevel, logFunc: func(l Logger) { l.Info("m") }, expected: false},
		{name: "warn level logs warn", logLevel: WarnLevel, logFunc: func(l Logger) { l.Warn("m") }, expected: true},
		{name: "error level does not log warn", logLevel: ErrorLevel, logFunc: func(l Logger) { l.Warn("m") }, expected: false},
		{name: "error level logs error", logLevel: ErrorLevel, logFunc: func(l Logger) { l.Error("m") }, expected: true},
		{name: "unknown level falls back to info", logLevel: "invalid", logFunc: func(l Logger) { l.Info("m") }, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newBufferedLogger(t, tt.logLevel)
			tt.logFunc(log)
			_ = log.Sync()
			if got := buf.Len() > 0; got != tt.expected {
				t.Fatalf("logged = %v, want %v (%q)", got, tt.expected, buf.String())
			}
		})
	}
}

func TestZapLogger_StructuredFieldsAndWith(t *testing.T) {
	log, buf := newBufferedLogger(t, InfoLevel)

	child := log.With("service", "jira")
	child.Info("project created", "project_id", 42)
	log.Info("plain")
	_ = log.Sync()

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0]["service"] != "jira" || entries[0]["project_id"] != float64(42) {
		t.Fatalf("child entry = %v", entries[0])
	}
	if _, leaked := entries[1]["service"]; leaked {
		t.Fatalf("parent logger inherited child fields: %v", entries[1])
	}
	for _, field := range []string{"timestamp", "level", "message"} {
		if _, ok := entries[0][field]; !ok {
			t.Fatalf("missing field %s in %v", field, entries[0])
		}
	}
}

func TestZapLogger_WithContext(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		requestID string
	}{
		{name: "context with request ID", ctx: WithRequestID(context.Background(), "req-1"), requestID: "req-1"},
		{name: "context without request ID", ctx: context.Background()},
		{name: "nil context", ctx: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newBufferedLogger(t, InfoLevel)
			log.WithContext(tt.ctx).Info("handled")
			_ = log.Sync()

			entries := decodeLines(t, buf)
			got, _ := entries[0]["request_id"].(string)
			if got != tt.requestID {
				t.Fatalf("request_id = %q, want %q", got, tt.requestID)
			}
		})
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.With("k", "v").WithContext(context.Background()).Error("discarded")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    LogLevel
		wantErr bool
	}{
		{name: "debug level", input: "debug", want: DebugLevel},
		{name: "info level", input: "info", want: InfoLevel},
		{name: "warn level", input: "warn", want: WarnLevel},
		{name: "warning level (alias)", input: "warning", want: WarnLevel},
		{name: "error level", input: "error", want: ErrorLevel},
		{name: "invalid level", input: "invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    LogFormat
		wantErr bool
	}{
		{name: "json format", input: "json", want: JSONFormat},
		{name: "text format", input: "text", want: TextFormat},
		{name: "console format (alias)", input: "console", want: TextFormat},
		{name: "invalid format", input: "invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLogFormat() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLogFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Property: every JSON entry carries timestamp, level and message.
func TestProperty_StructuredLoggingFormat(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("all log entries are valid JSON with required fields", prop.ForAll(
		func(message string) bool {
			var buf bytes.Buffer
			log, err := NewZapLogger(Config{Level: DebugLevel, Format: JSONFormat, Output: &buf})
			if err != nil {
				return false
			}
			log.Warn(message, "attempt", 1)
			_ = log.Sync()

			entry := map[string]interface{}{}
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				return false
			}
			return entry["message"] == message && entry["level"] == "warn" && entry["timestamp"] != nil
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
