package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for a primechain node.
type Config struct {
	// HTTP server
	HTTPPort int `mapstructure:"http-port"`

	// Mining
	Workers    int           `mapstructure:"workers"`
	TargetTime time.Duration `mapstructure:"target-time"`

	// MaxIterations bounds each worker's search per round; 0 = unbounded.
	MaxIterations uint64 `mapstructure:"max-iterations"`

	// Initial difficulty
	NLimit    uint64  `mapstructure:"n-limit"`
	MinDigits uint32  `mapstructure:"min-digits"`
	MinProb   float64 `mapstructure:"min-prob"`

	// Storage. Empty DataDir keeps the chain in memory only.
	DataDir string `mapstructure:"data-dir"`

	// APIKey gates /mine and /chain behind the X-API-Key header when set.
	APIKey string `mapstructure:"api-key"`

	// Logging
	LogLevel string `mapstructure:"log-level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort: 8080,

		Workers:    4,
		TargetTime: 10 * time.Second,

		NLimit:    1000,
		MinDigits: 7,
		MinProb:   0.01,

		DataDir: ".primechain",

		LogLevel: "info",
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http-port must be 1-65535")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.TargetTime < time.Second {
		return fmt.Errorf("target-time must be at least 1s")
	}
	if c.NLimit < 1 {
		return fmt.Errorf("n-limit must be at least 1")
	}
	if c.MinDigits < 1 || c.MinDigits > 9 {
		return fmt.Errorf("min-digits must be 1-9")
	}
	if c.MinProb <= 0 || c.MinProb > 1 {
		return fmt.Errorf("min-prob must be in (0, 1]")
	}
	return nil
}
