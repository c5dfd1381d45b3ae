package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		logType   string
		level     string
		wantError bool
	}{
		{"json/info", JSON, "info", false},
		{"text/debug", Text, "debug", false},
		{"tint/warn", Tint, "warn", false},
		{"json/error", JSON, "error", false},
		{"invalid level", JSON, "bogus", true},
		{"unknown type", "unknown", "info", true},
	}

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Initialize(&buf, tt.logType, tt.level)
			if (err != nil) != tt.wantError {
				t.Errorf("Initialize(%q, %q) error = %v, wantError = %v", tt.logType, tt.level, err, tt.wantError)
			}
		})
	}
}

func TestNewHandler_Level(t *testing.T) {
	handler, err := NewHandler(&bytes.Buffer{}, Text, "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info must be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error must be enabled at warn level")
	}
}

func TestNewHandler_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	handler, err := NewHandler(&buf, JSON, "info")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slog.New(handler).Info("running step", "step", "decompile")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "running step" || record["step"] != "decompile" {
		t.Errorf("unexpected record %v", record)
	}
	if _, ok := record["source"]; ok {
		t.Error("source must only be added at debug level")
	}
}

func TestNewHandler_UnknownType(t *testing.T) {
	_, err := NewHandler(&bytes.Buffer{}, "xml", "info")
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}
