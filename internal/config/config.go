package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	RedisURL string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@lifehub.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	accessMinutes, err := parseInt(getEnv("JWT_ACCESS_TTL_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TTL_MINUTES: %w", err)
	}
	cfg.AccessTTL = time.Duration(accessMinutes) * time.Minute

	refreshHours, err := parseInt(getEnv("JWT_REFRESH_TTL_HOURS", "168"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_TTL_HOURS: %w", err)
	}
	cfg.RefreshTTL = time.Duration(refreshHours) * time.Hour

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}
