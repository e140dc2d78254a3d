package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const minJWTSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for its environment.
// All problems are reported together.
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}
	if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBName == "") {
		add("DATABASE_URL", "DATABASE_URL or DB_HOST and DB_NAME are required")
	}

	// Secrets are optional in test runs; fixtures provide their own.
	if !cfg.Environment.IsTest() {
		if len(cfg.JWTSecret) < minJWTSecretLength {
			add("JWT_SECRET", fmt.Sprintf("must be at least %d characters", minJWTSecretLength))
		}
		if cfg.OpenRouterAPIKey == "" {
			add("OPENROUTER_API_KEY", "is required")
		}
	}

	if u, err := url.Parse(cfg.OpenRouterBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		add("OPENROUTER_BASE_URL", "must be an absolute URL")
	}
	if len(cfg.CORSOrigins) == 0 {
		add("CORS_ORIGINS", "at least one origin is required")
	}
	for _, origin := range cfg.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			add("CORS_ORIGINS", fmt.Sprintf("%q must start with http:// or https://", origin))
		}
	}
	if cfg.RecipeRateLimit < 0 {
		add("RECIPE_RATE_LIMIT", "must not be negative")
	}
	if cfg.RecipeRateWindow <= 0 {
		add("RECIPE_RATE_WINDOW", "must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
