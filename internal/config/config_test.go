package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != defaultServerURL {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, defaultServerURL)
	}
	if cfg.HistoryLimit != defaultHistoryLimit {
		t.Fatalf("HistoryLimit = %d, want %d", cfg.HistoryLimit, defaultHistoryLimit)
	}
	if cfg.StatsInterval != defaultStatsInterval {
		t.Fatalf("StatsInterval = %v, want %v", cfg.StatsInterval, defaultStatsInterval)
	}
	if cfg.ReconnectAttempts != defaultAttempts {
		t.Fatalf("ReconnectAttempts = %d, want %d", cfg.ReconnectAttempts, defaultAttempts)
	}
	if cfg.ReconnectDelay != defaultDelay {
		t.Fatalf("ReconnectDelay = %v, want %v", cfg.ReconnectDelay, defaultDelay)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
server_url = "  http://10.0.0.5:4000  "
log_file = "  ~/.usbwatch/usbwatch.log  "
history_limit = 50
stats_interval_seconds = 60
reconnect_attempts = 8
reconnect_delay_ms = 250
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != "http://10.0.0.5:4000" {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, "http://10.0.0.5:4000")
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.HistoryLimit != 50 {
		t.Fatalf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.StatsInterval != time.Minute {
		t.Fatalf("StatsInterval = %v, want %v", cfg.StatsInterval, time.Minute)
	}
	if cfg.ReconnectAttempts != 8 {
		t.Fatalf("ReconnectAttempts = %d, want 8", cfg.ReconnectAttempts)
	}
	if cfg.ReconnectDelay != 250*time.Millisecond {
		t.Fatalf("ReconnectDelay = %v, want %v", cfg.ReconnectDelay, 250*time.Millisecond)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
server_url = "   "
log_file = ""
history_limit = 0
stats_interval_seconds = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ServerURL != defaultServerURL {
		t.Fatalf("ServerURL = %q, want %q", cfg.ServerURL, defaultServerURL)
	}
	if cfg.HistoryLimit != defaultHistoryLimit {
		t.Fatalf("HistoryLimit = %d, want %d", cfg.HistoryLimit, defaultHistoryLimit)
	}
	if cfg.StatsInterval != defaultStatsInterval {
		t.Fatalf("StatsInterval = %v, want %v", cfg.StatsInterval, defaultStatsInterval)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`server_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
