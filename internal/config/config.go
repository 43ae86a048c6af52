package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Decor8 image generation API
	Decor8APIKey     string
	Decor8APIBaseURL string

	// OpenAI plan text API
	OpenAIAPIKey     string
	OpenAIAPIBaseURL string
	OpenAIModel      string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Monthly quotas per tier
	QuotaFree   int
	QuotaCasual int
	QuotaPro    int

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	cfg := &Config{
		Decor8APIKey:     getEnv("DECOR8_API_KEY", ""),
		Decor8APIBaseURL: getEnv("DECOR8_API_BASE_URL", "https://api.decor8.ai/v1/"),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIBaseURL: getEnv("OPENAI_API_BASE_URL", "https://api.openai.com/v1/"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "project-images"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		QuotaFree:   getEnvInt("QUOTA_FREE", 2),
		QuotaCasual: getEnvInt("QUOTA_CASUAL", 5),
		QuotaPro:    getEnvInt("QUOTA_PRO", 25),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.QuotaFree < 0 || c.QuotaCasual < 0 || c.QuotaPro < 0 {
		return fmt.Errorf("quota values must be non-negative")
	}
	return nil
}

// Decor8Live reports whether real provider credentials are configured.
// The stub/live decision is made once at startup, never per call.
func (c *Config) Decor8Live() bool {
	return c.Decor8APIKey != ""
}

func (c *Config) OpenAILive() bool {
	return c.OpenAIAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
