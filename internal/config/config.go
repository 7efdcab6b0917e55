// Package config handles configuration loading and config file resolution.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// BookConfig selects where and how the address book is persisted.
type BookConfig struct {
	Path    string `yaml:"path"`
	Backend string `yaml:"backend"` // "auto" | "json" | "sqlite"
}

// RemindersConfig controls the upcoming-birthdays listing.
type RemindersConfig struct {
	WindowDays int `yaml:"window_days"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	File   string `yaml:"file"`   // "" or "-" for stderr, os.DevNull to discard
	Format string `yaml:"format"` // "text" | "json"
}

// Config is the root configuration.
type Config struct {
	Book      BookConfig      `yaml:"book"`
	Reminders RemindersConfig `yaml:"reminders"`
	Log       LogConfig       `yaml:"log"`
}

// DefaultBookPath is the address book file used when nothing else is configured.
const DefaultBookPath = "address_book.json"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Book: BookConfig{
			Path:    DefaultBookPath,
			Backend: "auto",
		},
		Reminders: RemindersConfig{
			WindowDays: 7,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if bk, ok := raw["book"].(map[string]any); ok {
		if v, ok := bk["path"].(string); ok && v != "" {
			cfg.Book.Path = expandHome(v)
		}
		if v, ok := bk["backend"].(string); ok && v != "" {
			cfg.Book.Backend = strings.ToLower(v)
		}
	}

	if rm, ok := raw["reminders"].(map[string]any); ok {
		if v, ok := rm["window_days"].(int); ok && v > 0 {
			cfg.Reminders.WindowDays = v
		}
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v, ok := lg["level"].(string); ok {
			cfg.Log.Level = v
		}
		if v, ok := lg["file"].(string); ok {
			cfg.Log.File = expandHome(v)
		}
		if v, ok := lg["format"].(string); ok && v != "" {
			cfg.Log.Format = v
		}
	}

	return cfg, nil
}

// ---------------------------------------------------------------------------
// Config file resolution
// ---------------------------------------------------------------------------

// DefaultPath returns the per-user config file location,
// <UserConfigDir>/addressbook/config.yaml. It returns "" when the user
// config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "addressbook", "config.yaml")
}

// expandHome expands a leading ~/ to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
