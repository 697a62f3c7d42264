package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	GinMode           string
	LogLevel          string
	ModelPath         string
	ClassifierURL     string
	ClassifierTimeout time.Duration
	DatasetPath       string
	FormPath          string
	FormVariant       string
	StaticDir         string
	DatabaseURL       string
	EnableDB          bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("CLASSIFIER_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("CLASSIFIER_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "release"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ModelPath:         getEnv("MODEL_PATH", "models/heart-logreg.yaml"),
		ClassifierURL:     os.Getenv("CLASSIFIER_URL"),
		ClassifierTimeout: timeout,
		DatasetPath:       getEnv("DATASET_PATH", "data/heart-disease.csv"),
		FormPath:          os.Getenv("FORM_PATH"),
		FormVariant:       getEnv("FORM_VARIANT", "standard"),
		StaticDir:         os.Getenv("STATIC_DIR"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		EnableDB:          strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
