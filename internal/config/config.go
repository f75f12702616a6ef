package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"strings"
	"time"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"development"`

	ListenAddress string `default:":8080" split_words:"true"`
	AllowedOrigin string `default:"*" split_words:"true"`
	MaxListLimit  int64  `default:"1000" split_words:"true"`
	MaxKeyLength  int    `default:"256" split_words:"true"`
	MaxBodySize   int64  `default:"1048576" split_words:"true"`

	InitialBuckets  int           `default:"8" split_words:"true"`
	EntryLifetime   time.Duration `default:"0" split_words:"true"`
	CleanupInterval time.Duration `default:"10s" split_words:"true"`
	StatsInterval   time.Duration `default:"1m" split_words:"true"`
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return strings.ToLower(config.Environment) == "production"
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("cc", config); err != nil {
		return nil, err
	}
	if config.CleanupInterval <= 0 {
		return nil, fmt.Errorf("cleanup interval must be positive, got %s", config.CleanupInterval)
	}
	if config.StatsInterval <= 0 {
		return nil, fmt.Errorf("stats interval must be positive, got %s", config.StatsInterval)
	}
	return config, nil
}
