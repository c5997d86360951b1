// internal/config/config.go
//
// This package handles the runner's YAML configuration. A missing config
// file is not an error: every field has a default so the runner works out
// of the box with the built-in task sources.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory name used under the XDG config/state roots.
	AppDir = "linux-maintenance"

	defaultAppName      = "Linux Maintenance"
	defaultProbeTimeout = 5 * time.Second
	defaultNotifyTime   = 5 * time.Second
)

const defaultConfigYAML = `# linux-maintenance configuration
version: 1

# Directory holding base.json, <manager>.json and optional.json.
# Leave empty to use the task sources built into the binary.
tasks_dir: ""

log:
  path: ~/.local/state/linux-maintenance/maintenance.log
  level: info

# Plain-text history of runs, shown in the interactive log panel.
journal:
  path: ~/.local/state/linux-maintenance/journal.log

notifications:
  enabled: true
  app_name: Linux Maintenance
  timeout: 5s

detection:
  probe_timeout: 5s
`

// LogConfig configures the structured log file.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// JournalConfig configures the run history file.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig configures desktop notifications.
type NotificationConfig struct {
	Enabled *bool         `yaml:"enabled,omitempty"`
	AppName string        `yaml:"app_name"`
	Timeout time.Duration `yaml:"timeout"`
}

// DetectionConfig configures package manager probing.
type DetectionConfig struct {
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// Config models config.yaml.
type Config struct {
	Version       int                `yaml:"version"`
	TasksDir      string             `yaml:"tasks_dir"`
	Log           LogConfig          `yaml:"log"`
	Journal       JournalConfig      `yaml:"journal"`
	Notifications NotificationConfig `yaml:"notifications"`
	Detection     DetectionConfig    `yaml:"detection"`

	// Path is the file the config was read from; empty when defaults are used.
	Path string `yaml:"-"`
}

// NotificationsEnabled reports whether desktop notifications should be sent.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// UsesBuiltinTasks reports whether the embedded task sources are used.
func (c *Config) UsesBuiltinTasks() bool {
	return c.TasksDir == ""
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.normalize("")
	return cfg
}

// SearchPaths lists candidate config files in priority order.
func SearchPaths() []string {
	var paths []string
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		paths = append(paths, filepath.Join(xdg, AppDir, "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", AppDir, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", AppDir, "config.yaml"))
}

// Load reads the config at path. With an empty path the SearchPaths are
// tried in order; when none exists the defaults are returned. An explicit
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return loadFile(path)
	}
	for _, candidate := range SearchPaths() {
		cfg, err := loadFile(candidate)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return Default(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(filepath.Dir(path))
	if err := parsed.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	parsed.Path = filepath.Clean(path)
	return &parsed, nil
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if strings.TrimSpace(c.Log.Path) == "" {
		c.Log.Path = filepath.Join(stateDir(), "maintenance.log")
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(stateDir(), "journal.log")
	}
	if strings.TrimSpace(c.Notifications.AppName) == "" {
		c.Notifications.AppName = defaultAppName
	}
	if c.Notifications.Timeout == 0 {
		c.Notifications.Timeout = defaultNotifyTime
	}
	if c.Detection.ProbeTimeout == 0 {
		c.Detection.ProbeTimeout = defaultProbeTimeout
	}
}

func (c *Config) normalize(base string) {
	c.TasksDir = resolvePath(base, c.TasksDir)
	c.Log.Path = resolvePath(base, c.Log.Path)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Journal.Path = resolvePath(base, c.Journal.Path)
	c.Notifications.AppName = strings.TrimSpace(c.Notifications.AppName)
}

func (c *Config) validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Notifications.Timeout < 0 {
		return fmt.Errorf("notifications.timeout must be positive")
	}
	if c.Detection.ProbeTimeout < 0 {
		return fmt.Errorf("detection.probe_timeout must be positive")
	}
	return nil
}

// WriteDefault writes the commented default config to path unless a file
// already exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: ensure config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func stateDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, AppDir)
	}
	return filepath.Join("~", ".local", "state", AppDir)
}

// resolvePath expands a leading ~ and anchors relative paths at base.
func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
		}
	}
	if filepath.IsAbs(trimmed) || base == "" {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
