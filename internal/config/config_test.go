package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proxy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Fatalf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
	if cfg.BackendURL != "" {
		t.Fatalf("BackendURL = %q, want empty by default", cfg.BackendURL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
backend_url: "https://api.truetime.example"
upstream_timeout: 10s
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.BackendURL != "https://api.truetime.example" {
		t.Fatalf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Fatalf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "listen_addr: [:::")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `backend_url: "https://from-file.example"`)

	t.Setenv("TRUETIME_BACKEND_URL", "https://from-env.example")
	t.Setenv("TRUETIME_LISTEN_ADDR", ":7070")
	t.Setenv("TRUETIME_UPSTREAM_TIMEOUT", "5s")
	t.Setenv("TRUETIME_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BackendURL != "https://from-env.example" {
		t.Fatalf("BackendURL = %q, want env to win", cfg.BackendURL)
	}
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.UpstreamTimeout != 5*time.Second {
		t.Fatalf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestBadDurationEnvIgnored(t *testing.T) {
	t.Setenv("TRUETIME_UPSTREAM_TIMEOUT", "not-a-duration")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed on bad duration env: %v", err)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Fatalf("UpstreamTimeout = %v, want default kept", cfg.UpstreamTimeout)
	}
}

func TestMissingBackendURLIsNotAnError(t *testing.T) {
	// The proxy must start without a backend URL and degrade per request.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BackendURL != "" {
		t.Fatalf("BackendURL = %q", cfg.BackendURL)
	}
}

func TestValidateRejectsNegativeTimeout(t *testing.T) {
	path := writeConfig(t, "upstream_timeout: -5s")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for negative timeout")
	}
}

func TestValidateRejectsEmptyListenAddr(t *testing.T) {
	path := writeConfig(t, `listen_addr: ""`)
	t.Setenv("TRUETIME_LISTEN_ADDR", "")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for empty listen_addr")
	}
}
