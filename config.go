package authstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authstate/internal/records"
	"github.com/caarlos0/env/v11"
)

// Config defines the tunables of a Manager.
//
// Config values are copied by [Builder.WithConfig]; later mutation of the
// caller's copy has no effect on a built Manager.
type Config struct {
	Keyspace  KeyspaceConfig
	Retention RetentionConfig
	Batch     BatchConfig
	Metrics   MetricsConfig
}

/*
====================================
KEYSPACE CONFIG
====================================
*/

// KeyspaceConfig controls how backend keys are namespaced.
type KeyspaceConfig struct {
	// Prefix is the leading key segment shared by every session. Empty means
	// keys start with the session id; the backend must then hold nothing but
	// authstate records, and Manager.Sessions is unavailable.
	Prefix string `env:"AUTHSTATE_PREFIX"`
}

/*
====================================
RETENTION CONFIG
====================================
*/

// RetentionConfig controls record lifetimes.
type RetentionConfig struct {
	// CredsTTL is applied to the credential record on every save.
	CredsTTL time.Duration `env:"AUTHSTATE_CREDS_TTL"`
	// KeyTTL is applied to key records. Zero defers to the backend default.
	KeyTTL time.Duration `env:"AUTHSTATE_KEY_TTL"`
}

/*
====================================
BATCH CONFIG
====================================
*/

// BatchConfig bounds batch fan-out.
type BatchConfig struct {
	MaxConcurrency int `env:"AUTHSTATE_BATCH_CONCURRENCY"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles the in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool `env:"AUTHSTATE_METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"AUTHSTATE_METRICS_LATENCY"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Keyspace: KeyspaceConfig{
			Prefix: "authstate",
		},
		Retention: RetentionConfig{
			CredsTTL: records.DefaultCredsTTL,
			KeyTTL:   0,
		},
		Batch: BatchConfig{
			MaxConcurrency: records.DefaultMaxConcurrency,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the configuration a Builder starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

// ConfigFromEnv overlays AUTHSTATE_* environment variables onto the default
// configuration. Unset variables keep their defaults.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Retention.CredsTTL <= 0 {
		return errors.New("Retention CredsTTL must be > 0")
	}
	if c.Retention.KeyTTL < 0 {
		return errors.New("Retention KeyTTL must be >= 0")
	}

	if c.Batch.MaxConcurrency <= 0 {
		return errors.New("Batch MaxConcurrency must be > 0")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
