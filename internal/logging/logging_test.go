package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v", input, want, got)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewFormats(t *testing.T) {
	t.Parallel()

	var jsonBuf bytes.Buffer
	New(slog.LevelInfo, "json", &jsonBuf).Info("hello", "owner_id", "u-1")
	var entry map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", jsonBuf.String(), err)
	}
	if entry["owner_id"] != "u-1" {
		t.Fatalf("expected owner_id attribute, got %v", entry)
	}

	var textBuf bytes.Buffer
	logger := New(slog.LevelWarn, "text", &textBuf)
	logger.Info("dropped")
	logger.Warn("kept")
	out := textBuf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "msg=kept") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatalf("expected nil logger on bare context")
	}
	logger := slog.Default()
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger to round trip through context")
	}
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatalf("nil logger must leave context unchanged")
	}
}
