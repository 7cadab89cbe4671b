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

// Config captures the settings usbwatch needs to reach the monitor service.
type Config struct {
	ServerURL         string
	LogFile           string
	HistoryLimit      int
	StatsInterval     time.Duration
	ReconnectAttempts int
	ReconnectDelay    time.Duration
}

const (
	defaultConfigPath    = "~/.config/usbwatch/config.toml"
	defaultServerURL     = "http://127.0.0.1:3001"
	defaultLogFile       = "~/.local/state/usbwatch/usbwatch.log"
	defaultHistoryLimit  = 20
	defaultStatsInterval = 30 * time.Second
	defaultAttempts      = 5
	defaultDelay         = time.Second
)

// Load locates and parses the usbwatch config, falling back to defaults
// when the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.LogFile = mustExpand(cfg.LogFile)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL         string `toml:"server_url"`
		LogFile           string `toml:"log_file"`
		HistoryLimit      int    `toml:"history_limit"`
		StatsIntervalSecs int    `toml:"stats_interval_seconds"`
		ReconnectAttempts int    `toml:"reconnect_attempts"`
		ReconnectDelayMS  int    `toml:"reconnect_delay_ms"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = v
	}
	if raw.HistoryLimit > 0 {
		cfg.HistoryLimit = raw.HistoryLimit
	}
	if raw.StatsIntervalSecs > 0 {
		cfg.StatsInterval = time.Duration(raw.StatsIntervalSecs) * time.Second
	}
	if raw.ReconnectAttempts > 0 {
		cfg.ReconnectAttempts = raw.ReconnectAttempts
	}
	if raw.ReconnectDelayMS > 0 {
		cfg.ReconnectDelay = time.Duration(raw.ReconnectDelayMS) * time.Millisecond
	}
	cfg.LogFile = mustExpand(cfg.LogFile)

	return cfg, nil
}

func defaults() Config {
	return Config{
		ServerURL:         defaultServerURL,
		LogFile:           defaultLogFile,
		HistoryLimit:      defaultHistoryLimit,
		StatsInterval:     defaultStatsInterval,
		ReconnectAttempts: defaultAttempts,
		ReconnectDelay:    defaultDelay,
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
