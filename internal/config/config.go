package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	LogLevel string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	// SessionTTL bounds how long the session record survives in the store.
	// SessionRefreshThreshold is the lookahead window for proactive token
	// refresh; these are two independent clocks.
	SessionTTL              time.Duration
	SessionRefreshThreshold time.Duration
	CookieDomain            string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	KeycloakIssuer        string
	KeycloakClientID      string
	KeycloakRedirectURL   string
	KeycloakPublicBaseURL string

	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	HashMaxConcurrent int
}

// Load reads configuration from environment variables. A .env file is loaded
// first when present so local runs need no exported shell state.
func Load() (Config, error) {
	_ = godotenv.Load()

	sessionTTL, err := getDuration("SESSION_TTL", 720*time.Hour)
	if err != nil {
		return Config{}, err
	}

	refreshThreshold, err := getDuration("SESSION_REFRESH_THRESHOLD", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	accessTTL, err := getDuration("JWT_ACCESS_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}

	refreshTTL, err := getDuration("JWT_REFRESH_TTL", 720*time.Hour)
	if err != nil {
		return Config{}, err
	}

	hashConcurrent, err := strconv.Atoi(getEnv("HASH_MAX_CONCURRENT", "8"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid HASH_MAX_CONCURRENT: %w", err)
	}

	cfg := Config{
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		SessionTTL:              sessionTTL,
		SessionRefreshThreshold: refreshThreshold,
		CookieDomain:            os.Getenv("COOKIE_DOMAIN"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		KeycloakIssuer:        os.Getenv("KEYCLOAK_ISSUER"),
		KeycloakClientID:      os.Getenv("KEYCLOAK_CLIENT_ID"),
		KeycloakRedirectURL:   os.Getenv("KEYCLOAK_REDIRECT_URL"),
		KeycloakPublicBaseURL: os.Getenv("KEYCLOAK_PUBLIC_BASE_URL"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenTTL:    accessTTL,
		RefreshTokenTTL:   refreshTTL,
		HashMaxConcurrent: hashConcurrent,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

// HasGoogle reports whether the Google OAuth provider is configured.
func (c Config) HasGoogle() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// HasKeycloak reports whether the Keycloak OAuth provider is configured.
func (c Config) HasKeycloak() bool {
	return c.KeycloakIssuer != "" && c.KeycloakClientID != "" && c.KeycloakRedirectURL != ""
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
