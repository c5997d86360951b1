package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", "/var/tmp/state")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.Version)
	}
	if !cfg.UsesBuiltinTasks() {
		t.Fatalf("expected built-in tasks by default, got %q", cfg.TasksDir)
	}
	if cfg.Log.Path != "/var/tmp/state/linux-maintenance/maintenance.log" {
		t.Fatalf("unexpected log path %q", cfg.Log.Path)
	}
	if !cfg.NotificationsEnabled() {
		t.Fatalf("notifications should default to enabled")
	}
	if cfg.Detection.ProbeTimeout != 5*time.Second {
		t.Fatalf("probe timeout = %s", cfg.Detection.ProbeTimeout)
	}
	if cfg.Path != "" {
		t.Fatalf("defaults should not carry a path, got %q", cfg.Path)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
tasks_dir: tasks
log:
  path: logs/maintenance.log
  level: DEBUG
journal:
  path: /tmp/journal.log
notifications:
  enabled: false
  app_name: "  Box Maintenance "
  timeout: 2s
detection:
  probe_timeout: 750ms
`)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TasksDir != filepath.Join(dir, "tasks") {
		t.Fatalf("expected tasks_dir resolved against config dir, got %s", cfg.TasksDir)
	}
	if cfg.Log.Path != filepath.Join(dir, "logs", "maintenance.log") {
		t.Fatalf("unexpected log path %s", cfg.Log.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("level should be normalized, got %q", cfg.Log.Level)
	}
	if cfg.Journal.Path != "/tmp/journal.log" {
		t.Fatalf("absolute journal path changed: %s", cfg.Journal.Path)
	}
	if cfg.NotificationsEnabled() {
		t.Fatalf("notifications should be disabled")
	}
	if cfg.Notifications.AppName != "Box Maintenance" {
		t.Fatalf("app name = %q", cfg.Notifications.AppName)
	}
	if cfg.Notifications.Timeout != 2*time.Second || cfg.Detection.ProbeTimeout != 750*time.Millisecond {
		t.Fatalf("durations not parsed: %+v %+v", cfg.Notifications, cfg.Detection)
	}
	if cfg.Path != path {
		t.Fatalf("path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"version": "version: 2\n",
		"level":   "log:\n  level: loud\n",
		"timeout": "detection:\n  probe_timeout: -1s\n",
		"yaml":    "log: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("error should carry package prefix: %v", err)
			}
		})
	}
}

func TestLoadExplicitMissingPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing config")
	}
}

func TestLoadSearchesXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path := filepath.Join(xdg, AppDir, "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("expected config from %s, got %q", path, cfg.Path)
	}
	home, _ := os.UserHomeDir()
	if home != "" && !strings.HasPrefix(cfg.Log.Path, home) {
		t.Fatalf("expected ~ to expand, got %s", cfg.Log.Path)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatalf("expected error when config exists")
	}
}
