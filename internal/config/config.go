package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client settings for talking to the relist service.
type Config struct {
	BaseURL          string        `yaml:"base_url"`
	SessionCookie    string        `yaml:"session_cookie"`
	PhotosPerListing int           `yaml:"photos_per_listing"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	BulkConcurrency  int           `yaml:"bulk_concurrency"`
	BulkRatePerSec   float64       `yaml:"bulk_rate_per_sec"`
}

// Default returns the built-in settings used when nothing is configured.
func Default() Config {
	return Config{
		PhotosPerListing: 4,
		PollInterval:     2 * time.Second,
		BulkConcurrency:  4,
		BulkRatePerSec:   5,
	}
}

// Load reads configuration from an optional YAML file, then applies
// RELIST_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.PhotosPerListing <= 0 {
		cfg.PhotosPerListing = Default().PhotosPerListing
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = Default().PollInterval
	}
	if cfg.BulkConcurrency <= 0 {
		cfg.BulkConcurrency = Default().BulkConcurrency
	}
	if cfg.BulkRatePerSec <= 0 {
		cfg.BulkRatePerSec = Default().BulkRatePerSec
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RELIST_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("RELIST_SESSION_COOKIE"); v != "" {
		cfg.SessionCookie = v
	}
	if v := os.Getenv("RELIST_PHOTOS_PER_LISTING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PhotosPerListing = n
		}
	}
	if v := os.Getenv("RELIST_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("RELIST_BULK_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BulkConcurrency = n
		}
	}
}

// Validate checks that the settings required for network commands are present.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL not configured (set RELIST_BASE_URL or base_url in the config file)")
	}
	return nil
}
