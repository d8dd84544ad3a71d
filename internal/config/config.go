// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// AppConfig is the server-level configuration.
type AppConfig struct {
	Port         string
	DatabaseURL  string
	GeminiAPIKey string
	MaxQuestions int
}

// NewAppConfig reads PORT (default 8080), DATABASE_URL (required),
// GEMINI_API_KEY (required) and MAX_QUESTIONS (default 5).
func NewAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:         os.Getenv("PORT"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		MaxQuestions: 5,
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if raw := os.Getenv("MAX_QUESTIONS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_QUESTIONS: %v", err)
		}
		cfg.MaxQuestions = n
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required but not set")
	}
	if c.MaxQuestions < 1 || c.MaxQuestions > 20 {
		return fmt.Errorf("MAX_QUESTIONS out of range: %d (must be 1-20)", c.MaxQuestions)
	}
	return nil
}
