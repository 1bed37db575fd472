package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the proxy's full configuration. Values come from an optional
// YAML file, overridden by TRUETIME_* environment variables. The backend
// URL may legitimately be empty: the proxy still starts and answers every
// request with a configuration error rather than crashing.
type Config struct {
	// ListenAddr is the proxy's listen address, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// BackendURL is the raw Truetime API root; it is normalized to end
	// in /api before use. Env: TRUETIME_BACKEND_URL.
	BackendURL string `yaml:"backend_url"`

	// UpstreamTimeout bounds each upstream attempt (single attempt, no
	// retry). Env: TRUETIME_UPSTREAM_TIMEOUT.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`

	// DrainTimeout is the graceful-shutdown drain window.
	DrainTimeout time.Duration `yaml:"drain_timeout"`

	// HealthInterval is how often the backend is probed for
	// reachability. Env: TRUETIME_HEALTH_INTERVAL.
	HealthInterval time.Duration `yaml:"health_interval"`

	// LogLevel is debug, info, warn, or error. Env: TRUETIME_LOG_LEVEL.
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() Config {
	return Config{
		ListenAddr:      ":8080",
		UpstreamTimeout: 30 * time.Second,
		DrainTimeout:    30 * time.Second,
		HealthInterval:  15 * time.Second,
		LogLevel:        "info",
	}
}

// Load reads the optional YAML file at path (empty path skips the file),
// applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays TRUETIME_* environment variables onto cfg. A variable
// that is set but malformed is ignored in favor of the existing value;
// startup must not fail on a bad duration string.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TRUETIME_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TRUETIME_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("TRUETIME_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TRUETIME_UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.UpstreamTimeout = d
		}
	}
	if v := os.Getenv("TRUETIME_HEALTH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HealthInterval = d
		}
	}
}

// validate checks that the config is semantically usable. The backend URL
// is deliberately not required here; its absence is handled per request.
func validate(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}
	if cfg.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream_timeout cannot be negative")
	}
	if cfg.DrainTimeout < 0 {
		return fmt.Errorf("drain_timeout cannot be negative")
	}
	if cfg.HealthInterval < 0 {
		return fmt.Errorf("health_interval cannot be negative")
	}
	return nil
}
