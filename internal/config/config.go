// Package config loads the client configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the client needs at start-up.
type Config struct {
	BaseURL           string
	SessionPath       string
	LogFile           string
	LogLevel          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

const (
	defaultConfigPath  = "~/.config/lostfound/config.toml"
	defaultSessionPath = "~/.config/lostfound/session.json"
	defaultLogFile     = "~/.local/state/lostfound/lostfound.log"
	defaultBaseURL     = "https://public-api.delcom.org/api/v1/"
	defaultLogLevel    = "info"
	defaultTimeout     = 15 * time.Second
	defaultRPS         = 5

	// EnvBaseURL overrides base_url from the file.
	EnvBaseURL = "LOSTFOUND_BASE_URL"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		SessionPath:       mustExpand(defaultSessionPath),
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          defaultLogLevel,
		Timeout:           defaultTimeout,
		RequestsPerSecond: defaultRPS,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
// The LOSTFOUND_BASE_URL environment variable wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL           string  `toml:"base_url"`
		SessionPath       string  `toml:"session_path"`
		LogFile           string  `toml:"log_file"`
		LogLevel          string  `toml:"log_level"`
		TimeoutSeconds    int     `toml:"timeout_seconds"`
		RequestsPerSecond float64 `toml:"requests_per_second"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.SessionPath); v != "" {
		cfg.SessionPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = raw.RequestsPerSecond
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
