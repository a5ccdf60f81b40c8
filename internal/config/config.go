// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Remote RemoteConfig
	Sync   SyncConfig
	Trend  TrendConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig holds durable store options.
type StoreConfig struct {
	DataDir string
}

// RemoteConfig contains credentials and options for the remote price store.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Table   string
}

// SyncConfig holds connectivity probing and drain scheduling settings.
type SyncConfig struct {
	ProbeInterval time.Duration
	DrainSpec     string
	RefreshSpec   string
}

// TrendConfig holds trend analysis settings.
type TrendConfig struct {
	WindowSize     int
	AlertThreshold float64
	MaxAlerts      int
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	probeSeconds, err := getenvInt("PROBE_INTERVAL_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	windowSize, err := getenvInt("TREND_WINDOW", 10)
	if err != nil {
		return nil, err
	}
	maxAlerts, err := getenvInt("TREND_MAX_ALERTS", 3)
	if err != nil {
		return nil, err
	}
	threshold, err := getenvFloat("TREND_ALERT_THRESHOLD", 0.8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			DataDir: getenvWithDefault("DATA_DIR", "data"),
		},
		Remote: RemoteConfig{
			BaseURL: os.Getenv("REMOTE_BASE_URL"),
			APIKey:  os.Getenv("REMOTE_API_KEY"),
			Table:   getenvWithDefault("REMOTE_TABLE", "prices"),
		},
		Sync: SyncConfig{
			ProbeInterval: time.Duration(probeSeconds) * time.Second,
			DrainSpec:     getenvWithDefault("DRAIN_SCHEDULE", "@every 1m"),
			RefreshSpec:   getenvWithDefault("REFRESH_SCHEDULE", "@every 15m"),
		},
		Trend: TrendConfig{
			WindowSize:     windowSize,
			AlertThreshold: threshold,
			MaxAlerts:      maxAlerts,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Store.DataDir == "" {
		return errors.New("DATA_DIR must be provided")
	}

	switch {
	case c.Remote.BaseURL == "":
		return errors.New("REMOTE_BASE_URL must be provided")
	case c.Remote.APIKey == "":
		return errors.New("REMOTE_API_KEY must be provided")
	case c.Remote.Table == "":
		return errors.New("REMOTE_TABLE must not be empty")
	}

	if c.Sync.ProbeInterval <= 0 {
		return errors.New("PROBE_INTERVAL_SECONDS must be positive")
	}
	if c.Sync.DrainSpec == "" {
		return errors.New("DRAIN_SCHEDULE must be provided")
	}
	if c.Sync.RefreshSpec == "" {
		return errors.New("REFRESH_SCHEDULE must be provided")
	}

	if c.Trend.WindowSize < 2 {
		return errors.New("TREND_WINDOW must be at least 2")
	}
	if c.Trend.AlertThreshold <= 0 || c.Trend.AlertThreshold >= 1 {
		return errors.New("TREND_ALERT_THRESHOLD must be between 0 and 1")
	}
	if c.Trend.MaxAlerts < 1 {
		return errors.New("TREND_MAX_ALERTS must be at least 1")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return parsed, nil
}
