// Load envs from .env
// Override with real environment variables
// Validate required keys, report missing ones for /health

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	BaseDomain string
	AppOrigin  string
	LogLevel   string

	DatabaseURL string
	RedisAddr   string

	StripeSecretKey     string
	StripeWebhookSecret string

	EmailHost     string
	EmailPort     int
	EmailUser     string
	EmailPassword string
	EmailFrom     string

	StorageURL string
}

// requiredKeys are the env vars the server cannot run without. The health
// endpoint reports which of them are absent.
var requiredKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDR",
	"STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET",
	"EMAIL_HOST",
	"EMAIL_PORT",
	"EMAIL_USER",
	"EMAIL_PASSWORD",
	"STORAGE_URL",
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                os.Getenv("PORT"),
		BaseDomain:          os.Getenv("BASE_DOMAIN"),
		AppOrigin:           os.Getenv("APP_ORIGIN"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		EmailHost:           os.Getenv("EMAIL_HOST"),
		EmailUser:           os.Getenv("EMAIL_USER"),
		EmailPassword:       os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:           os.Getenv("EMAIL_FROM"),
		StorageURL:          os.Getenv("STORAGE_URL"),
	}

	if port := os.Getenv("EMAIL_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err == nil {
			cfg.EmailPort = p
		}
	}

	// Set default values if not set
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.BaseDomain == "" {
		cfg.BaseDomain = "miniats.com"
	}
	if cfg.AppOrigin == "" {
		cfg.AppOrigin = "https://app." + cfg.BaseDomain
	}
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = "noreply@" + cfg.BaseDomain
	}
	if cfg.EmailPort == 0 {
		cfg.EmailPort = 587
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg
}

// Missing returns the required env vars that are not set in the current
// environment. Empty means the deployment is fully configured.
func Missing() []string {
	var missing []string
	for _, key := range requiredKeys {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
