package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/socialdesk-lab/socialdesk/internal/core/window"
)

// Config is the immutable top-level application config, constructed once at
// startup and passed by reference into the service constructors. Business
// logic never reads ambient environment state.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Webhook  WebhookConfig  `koanf:"webhook"`
	Reporter ReporterConfig `koanf:"reporter"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// WebhookConfig holds the shared HMAC secret and the ingestion-side
// signature policy.
type WebhookConfig struct {
	Secret string `koanf:"secret"`

	// RejectUnverified gates persistence on signature verification.
	// The default (false) mirrors the lenient ledger behavior: failed
	// signatures are stored with signature_verified=false instead of
	// being turned away.
	RejectUnverified bool `koanf:"reject_unverified"`
}

// ReporterConfig drives the platform-side aggregate-and-deliver pipeline.
type ReporterConfig struct {
	Enabled     bool   `koanf:"enabled"`
	PlatformID  string `koanf:"platform_id"`
	IngestURL   string `koanf:"ingest_url"`
	BearerToken string `koanf:"bearer_token"`

	// Interval is the tick cadence; WindowSize the trailing window reported
	// per tick. Both accept Go durations plus a "d" day suffix.
	Interval   string `koanf:"interval"`
	WindowSize string `koanf:"window_size"`

	TopK            int    `koanf:"top_k"`
	DeliveryTimeout string `koanf:"delivery_timeout"`
}

// EffectiveInterval parses the tick cadence. Call Validate first.
func (c ReporterConfig) EffectiveInterval() time.Duration {
	d, _ := window.ParseSize(c.Interval)
	return d
}

// EffectiveWindowSize parses the reporting window size. Call Validate first.
func (c ReporterConfig) EffectiveWindowSize() time.Duration {
	d, _ := window.ParseSize(c.WindowSize)
	return d
}

// EffectiveDeliveryTimeout parses the outbound POST deadline. Call Validate first.
func (c ReporterConfig) EffectiveDeliveryTimeout() time.Duration {
	d, _ := time.ParseDuration(c.DeliveryTimeout)
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}

	if strings.TrimSpace(c.Webhook.Secret) == "" {
		return fmt.Errorf("webhook.secret is required")
	}

	if c.Reporter.Enabled {
		if strings.TrimSpace(c.Reporter.PlatformID) == "" {
			return fmt.Errorf("reporter.platform_id is required when reporter is enabled")
		}
		if strings.TrimSpace(c.Reporter.IngestURL) == "" {
			return fmt.Errorf("reporter.ingest_url is required when reporter is enabled")
		}
		if strings.TrimSpace(c.Reporter.BearerToken) == "" {
			return fmt.Errorf("reporter.bearer_token is required when reporter is enabled")
		}
		if _, err := window.ParseSize(c.Reporter.Interval); err != nil {
			return fmt.Errorf("invalid reporter.interval: %w", err)
		}
		if _, err := window.ParseSize(c.Reporter.WindowSize); err != nil {
			return fmt.Errorf("invalid reporter.window_size: %w", err)
		}
		if c.Reporter.TopK <= 0 {
			return fmt.Errorf("reporter.top_k must be > 0")
		}
		timeout, err := time.ParseDuration(c.Reporter.DeliveryTimeout)
		if err != nil {
			return fmt.Errorf("invalid reporter.delivery_timeout: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("reporter.delivery_timeout must be > 0")
		}
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":               8080,
		"server.host":               "0.0.0.0",
		"server.max_body_size_mb":   1,
		"server.mode":               "release",
		"database.dsn":              "",
		"database.max_open_conns":   25,
		"database.max_idle_conns":   25,
		"database.auto_migrate":     true,
		"webhook.secret":            "",
		"webhook.reject_unverified": false,
		"reporter.enabled":          false,
		"reporter.platform_id":      "",
		"reporter.ingest_url":       "",
		"reporter.bearer_token":     "",
		"reporter.interval":         "1h",
		"reporter.window_size":      "1h",
		"reporter.top_k":            10,
		"reporter.delivery_timeout": "10s",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("SOCIALDESK_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SOCIALDESK_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
