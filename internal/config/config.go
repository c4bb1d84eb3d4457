// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port                   int
	LogLevel               string
	DevMode                bool
	DefaultAccountBalance  float64 // Fallback balance for position sizing when a signal omits it
	ValidationSweepMinutes int     // Interval for the behavioral validation sweep; 0 disables it
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnvAsInt("QUIRK_PORT", 8004),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DevMode:                getEnvAsBool("DEV_MODE", false),
		DefaultAccountBalance:  getEnvAsFloat("DEFAULT_ACCOUNT_BALANCE", 10000),
		ValidationSweepMinutes: getEnvAsInt("VALIDATION_SWEEP_MINUTES", 60),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.DefaultAccountBalance <= 0 {
		return fmt.Errorf("default account balance must be positive, got %v", c.DefaultAccountBalance)
	}
	if c.ValidationSweepMinutes < 0 {
		return fmt.Errorf("validation sweep interval cannot be negative, got %d", c.ValidationSweepMinutes)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
