package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestJSONCore(t *testing.T) {
	var buf bytes.Buffer
	core, err := newCore(&buf, "json", zapcore.InfoLevel)
	if err != nil {
		t.Fatal(err)
	}
	zap.New(core).Info("test message", zap.String("key", "value"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v\noutput: %s", err, buf.String())
	}
	if m["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %q", m["msg"])
	}
	if m["key"] != "value" {
		t.Errorf("expected key 'value', got %q", m["key"])
	}
}

func TestConsoleCore(t *testing.T) {
	var buf bytes.Buffer
	core, err := newCore(&buf, "console", zapcore.InfoLevel)
	if err != nil {
		t.Fatal(err)
	}
	zap.New(core).Info("test message", zap.String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, "test message") {
		t.Errorf("expected console output containing the message, got: %s", out)
	}
	if !strings.Contains(out, `"key": "value"`) {
		t.Errorf("expected console output containing the field, got: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	core, err := newCore(&buf, "json", zapcore.WarnLevel)
	if err != nil {
		t.Fatal(err)
	}
	log := zap.New(core)
	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("unexpected output at warn level: %s", out)
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New("xml", "info"); err == nil {
		t.Error("expected error for unknown format")
	}
}
