// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// UploadDir receives raw spreadsheet uploads; OutputDir receives decks
	// and zip archives.
	UploadDir string
	OutputDir string

	// TemplatePath is the presentation skeleton each deck starts from.
	TemplatePath string
	// IconDir holds the weather icon images referenced by the icon rules.
	IconDir string

	// ContinueOnError keeps a batch going past a failing location.
	ContinueOnError bool

	LogLevel     string
	ReadTimeout  time.Duration
	BodyLimitMiB int
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:            getenvDefault("PORT", "8080"),
		UploadDir:       getenvDefault("UPLOAD_DIR", "data/input"),
		OutputDir:       getenvDefault("OUTPUT_DIR", "data/output"),
		TemplatePath:    getenvDefault("TEMPLATE_PATH", "data/input/template.pptx"),
		IconDir:         getenvDefault("ICON_DIR", "data/input/images"),
		ContinueOnError: os.Getenv("CONTINUE_ON_ERROR") == "true",
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		BodyLimitMiB:    10,
	}

	timeoutStr := getenvDefault("READ_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}
	cfg.ReadTimeout = timeout

	if cfg.TemplatePath == "" {
		return nil, fmt.Errorf("TEMPLATE_PATH is required")
	}
	if cfg.IconDir == "" {
		return nil, fmt.Errorf("ICON_DIR is required")
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
