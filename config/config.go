package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openai/gpt-4o-mini"
	DefaultSiteURL           = "http://localhost:4321"
	DefaultSiteName          = "10xDevs Meal Planner"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis is optional; an empty URL disables revocation and rate limiting
	RedisURL string

	// JWT configuration
	JWTSecret string

	// OpenRouter configuration
	OpenRouterAPIKey       string
	OpenRouterBaseURL      string
	OpenRouterModel        string
	OpenRouterNativeSchema bool
	SiteURL                string
	SiteName               string

	// Recipe creation rate limit, per user
	RecipeRateLimit  int
	RecipeRateWindow time.Duration
}

// LoadConfig creates a new Config from environment variables, falling back to
// files in SECRETS_DIR for secrets. In development a .env file is loaded first.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg, err := load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(env Environment) (*Config, error) {
	cfg := &Config{
		Environment: env,
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		ServerHost:  getEnv("SERVER_HOST", "0.0.0.0"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", DefaultSiteURL)),

		DatabaseURL: secretOrEnv("DATABASE_URL", "database_url"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      secretOrEnv("DB_USER", "db_user"),
		DBPassword:  secretOrEnv("DB_PASSWORD", "db_password"),
		DBName:      getEnv("DB_NAME", "mealplanner"),
		DBSSLMode:   getEnv("DB_SSL_MODE", "disable"),

		RedisURL:  secretOrEnv("REDIS_URL", "redis_url"),
		JWTSecret: secretOrEnv("JWT_SECRET", "jwt_secret"),

		OpenRouterAPIKey:  secretOrEnv("OPENROUTER_API_KEY", "openrouter_api_key"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", DefaultOpenRouterBaseURL),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", DefaultOpenRouterModel),
		SiteURL:           getEnv("SITE_URL", DefaultSiteURL),
		SiteName:          getEnv("SITE_NAME", DefaultSiteName),
	}

	var err error
	if cfg.OpenRouterNativeSchema, err = getBool("OPENROUTER_NATIVE_SCHEMA", false); err != nil {
		return nil, err
	}
	if cfg.RecipeRateLimit, err = getInt("RECIPE_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RecipeRateWindow, err = getDuration("RECIPE_RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, ValidationError{Field: key, Message: "must be a boolean"}
	}
	return v, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{Field: key, Message: "must be an integer"}
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, ValidationError{Field: key, Message: "must be a duration"}
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// secretOrEnv returns the environment variable when set, otherwise the
// Docker secret of the given name.
func secretOrEnv(key, secret string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return readSecret(secret)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
