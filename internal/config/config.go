package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
	Theme   Theme         `yaml:"theme"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	// Backend is "sqlite" (default) or "memory".
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	// CacheMB sizes the read cache in front of the backend; 0 disables it.
	CacheMB int `yaml:"cache_mb"`
}

// AuthConfig protects the HTTP API when APIKey is set. An empty key leaves
// the API open, which is the normal setup on localhost.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps Level to a slog level. Unknown values fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Theme is the presentation settings handed to UI clients. Durations are
// in milliseconds.
type Theme struct {
	AccentColor          string   `yaml:"accent_color" json:"accentColor"`
	BackgroundColor      string   `yaml:"background_color" json:"backgroundColor"`
	TextColor            string   `yaml:"text_color" json:"textColor"`
	MotivationalMessages []string `yaml:"motivational_messages" json:"motivationalMessages"`
	MessageDurationMS    int      `yaml:"message_duration_ms" json:"messageDurationMs"`
	FlashDurationMS      int      `yaml:"flash_duration_ms" json:"flashDurationMs"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Backend: "sqlite", Dir: defaultDataDir(), CacheMB: 32},
		Log:     LogConfig{Level: "info"},
		Theme: Theme{
			AccentColor:     "#FF9500",
			BackgroundColor: "#000000",
			TextColor:       "#FFFFFF",
			MotivationalMessages: []string{
				"One more rep!",
				"Stronger than yesterday.",
				"Consistency beats intensity.",
				"Show up. Do one more.",
			},
			MessageDurationMS: 3000,
			FlashDurationMS:   800,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "doonemore")
	}
	return "data"
}

// Load reads config from a YAML file on top of Defaults, then applies
// environment variable overrides. A missing file is not an error.
// Env vars use the prefix DOONEMORE_ and underscore-separated paths:
//
//	DOONEMORE_SERVER_HOST, DOONEMORE_SERVER_PORT,
//	DOONEMORE_STORAGE_BACKEND, DOONEMORE_STORAGE_DIR, DOONEMORE_STORAGE_CACHE_MB,
//	DOONEMORE_AUTH_API_KEY, DOONEMORE_LOG_LEVEL, DOONEMORE_THEME_ACCENT_COLOR
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOONEMORE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DOONEMORE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DOONEMORE_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("DOONEMORE_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("DOONEMORE_STORAGE_CACHE_MB"); v != "" {
		if mb, err := strconv.Atoi(v); err == nil {
			cfg.Storage.CacheMB = mb
		}
	}
	if v := os.Getenv("DOONEMORE_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("DOONEMORE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DOONEMORE_THEME_ACCENT_COLOR"); v != "" {
		cfg.Theme.AccentColor = v
	}
}

var hexColor = regexp.MustCompile(`^#([0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "sqlite":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the sqlite backend")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be sqlite or memory, got %q", c.Storage.Backend)
	}
	if c.Storage.CacheMB < 0 {
		return fmt.Errorf("storage.cache_mb must not be negative")
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	for name, color := range map[string]string{
		"accent_color":     c.Theme.AccentColor,
		"background_color": c.Theme.BackgroundColor,
		"text_color":       c.Theme.TextColor,
	} {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("theme.%s must be #RRGGBB or #RRGGBBAA, got %q", name, color)
		}
	}
	if c.Theme.MessageDurationMS < 0 || c.Theme.FlashDurationMS < 0 {
		return fmt.Errorf("theme durations must not be negative")
	}
	return nil
}
