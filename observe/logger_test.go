package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log line as JSON: %v\nline: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

// TestLogger_IncludesCheckField verifies WithCheck tags every entry.
func TestLogger_IncludesCheckField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).WithCheck("redis")
	logger.Info(context.Background(), "probe done", Field{Key: "duration_ms", Value: 12.5})

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["check"] != "redis" {
		t.Errorf("check = %v, want redis", e["check"])
	}
	if e["msg"] != "probe done" {
		t.Errorf("msg = %v", e["msg"])
	}
	if e["level"] != "info" {
		t.Errorf("level = %v", e["level"])
	}
	if e["duration_ms"] != 12.5 {
		t.Errorf("duration_ms = %v", e["duration_ms"])
	}
	if _, ok := e["timestamp"].(string); !ok {
		t.Errorf("timestamp missing: %v", e)
	}
}

// TestLogger_LevelFiltering verifies entries below the level are dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	ctx := context.Background()
	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %s", len(entries), buf.String())
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("unexpected levels: %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

// TestLogger_RedactsSensitiveFields verifies secrets never reach the sink.
func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "connecting",
		Field{Key: "password", Value: "hunter2"},
		Field{Key: "Authorization", Value: "Bearer abc"},
		Field{Key: "DSN", Value: "postgres://u:p@h/db"},
		Field{Key: "host", Value: "db.internal"},
	)

	out := buf.String()
	for _, secret := range []string{"hunter2", "Bearer abc", "u:p@h"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output leaked %q: %s", secret, out)
		}
	}
	entries := decodeLines(t, &buf)
	if entries[0]["host"] != "db.internal" {
		t.Errorf("host = %v, want db.internal", entries[0]["host"])
	}
	if entries[0]["password"] != "[REDACTED]" {
		t.Errorf("password = %v, want [REDACTED]", entries[0]["password"])
	}
}

// TestLogger_TraceCorrelation verifies trace and span ids come from ctx.
func TestLogger_TraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(ctx, "traced")

	e := decodeLines(t, &buf)[0]
	if e["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v", e["trace_id"])
	}
	if e["span_id"] != span.SpanContext().SpanID().String() {
		t.Errorf("span_id = %v", e["span_id"])
	}
}

// TestLogger_NoTraceWithoutSpan verifies ids are omitted outside a span.
func TestLogger_NoTraceWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(context.Background(), "plain")

	e := decodeLines(t, &buf)[0]
	if _, ok := e["trace_id"]; ok {
		t.Errorf("unexpected trace_id: %v", e)
	}
}

// TestFileLogger_WritesToFile verifies the rotating sink writes entries.
func TestFileLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.log")
	logger := NewFileLogger("info", path)
	logger.Info(context.Background(), "to file")
	if s, ok := logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to file"`) {
		t.Errorf("file contents = %q", data)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
