package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// defaultMaxRecurringOccurrences caps how many dated copies a recurring
// request may generate.
const defaultMaxRecurringOccurrences = 30

// Config keeps runtime settings for the planner service.
type Config struct {
	Addr                    string
	DatabaseURL             string
	JWTSecret               string
	GeminiAPIKey            string
	GeminiModel             string
	TelegramToken           string
	AgendaTime              string
	MaxRecurringOccurrences int
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:                    strings.TrimSpace(os.Getenv("ADDR")),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		GeminiAPIKey:            strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:             strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		TelegramToken:           strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		AgendaTime:              strings.TrimSpace(os.Getenv("AGENDA_TIME")),
		MaxRecurringOccurrences: parseCount(strings.TrimSpace(os.Getenv("MAX_RECURRING_OCCURRENCES"))),
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "lilo_planner.db"
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-2.0-flash-exp"
	}
	if cfg.AgendaTime == "" {
		cfg.AgendaTime = "08:00"
	}
	if cfg.MaxRecurringOccurrences == 0 {
		cfg.MaxRecurringOccurrences = defaultMaxRecurringOccurrences
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseCount(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
