package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNew_JSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "warn", "json")
	log.Info("dropped")
	log.Warn("placement unvalidated", "level", "plot")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "placement unvalidated" || rec["level"] != "plot" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestLoggerFromCtx(t *testing.T) {
	if logging.LoggerFromCtx(context.Background()) != slog.Default() {
		t.Error("expected default logger without a request logger")
	}

	var buf bytes.Buffer
	l := logging.New(&buf, "info", "text")
	ctx := logging.WithLogger(context.Background(), l, "req-7")
	if logging.LoggerFromCtx(ctx) != l {
		t.Error("expected the request logger")
	}
	if logging.RequestID(ctx) != "req-7" {
		t.Errorf("request id = %q", logging.RequestID(ctx))
	}
}
