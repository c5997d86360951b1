package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "maintenance.log")
	logger, err := New(Options{Path: path, Level: "info"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("Maintenance started.")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["message"] != "Maintenance started." || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maintenance.log")
	for i := 0; i < 2; i++ {
		logger, err := New(Options{Path: path})
		if err != nil {
			t.Fatalf("new logger: %v", err)
		}
		logger.Info("run")
		_ = logger.Close()
	}
	data, _ := os.ReadFile(path)
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Fatalf("expected 2 appended lines, got %d", got)
	}
}

func TestConsoleCore(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf, ConsoleLevel: "warn"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("unexpected console output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if level, err := ParseLevel(""); err != nil || level != zapcore.InfoLevel {
		t.Fatalf("empty level = %v, %v", level, err)
	}
	if level, err := ParseLevel(" WARN "); err != nil || level != zapcore.WarnLevel {
		t.Fatalf("WARN level = %v, %v", level, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNopWithoutOutputs(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("discarded")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
