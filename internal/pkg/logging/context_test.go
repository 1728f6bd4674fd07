package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestFromContext_Default(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Errorf("expected default logger, got %v", got)
	}
}

func TestNewRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithLogger(ctx, NewRequestLogger(ctx, base))

	FromContext(ctx).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("expected request_id %q, got %v", "req-1", entry["request_id"])
	}
	if entry["trace_id"] != "trace-1" {
		t.Errorf("expected trace_id %q, got %v", "trace-1", entry["trace_id"])
	}
}

func TestNewRequestLogger_NoIDs(t *testing.T) {
	base := slog.Default()
	if got := NewRequestLogger(context.Background(), base); got != base {
		t.Error("expected the base logger when the context carries no ids")
	}
}

func TestGenerateTraceID(t *testing.T) {
	a, b := GenerateTraceID(), GenerateTraceID()
	if len(a) != 32 {
		t.Errorf("expected 32 characters, got %d (%q)", len(a), a)
	}
	if a == b {
		t.Errorf("expected distinct trace ids, got %q twice", a)
	}
}
