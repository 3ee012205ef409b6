// Package config loads runtime configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultStagingName is the staging playlist every new track lands in.
	DefaultStagingName = "New"

	// DefaultDBPath is the default location of the library cache.
	DefaultDBPath = "data/library.db"

	// DefaultClassifyStrategy selects how candidate tracks are classified.
	DefaultClassifyStrategy = "artist-first"
)

// Config holds every runtime setting of the curator.
type Config struct {
	// Web API credentials
	ClientID     string
	ClientSecret string
	RefreshToken string

	// Curation behavior
	StagingName      string
	KeepInStaging    bool
	FlowSkipCycles   bool
	ClassifyStrategy string

	// Cache
	DBPath string

	// Notifications (optional)
	TelegramToken  string
	TelegramChatID string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg := Config{
		ClientID:         os.Getenv("SPOTIFY_CLIENT_ID"),
		ClientSecret:     os.Getenv("SPOTIFY_CLIENT_SECRET"),
		RefreshToken:     os.Getenv("SPOTIFY_REFRESH_TOKEN"),
		StagingName:      envOr("STAGING_PLAYLIST_NAME", DefaultStagingName),
		KeepInStaging:    envBool("KEEP_IN_STAGING", false),
		FlowSkipCycles:   envBool("FLOW_SKIP_CYCLES", true),
		ClassifyStrategy: envOr("CLASSIFY_STRATEGY", DefaultClassifyStrategy),
		DBPath:           envOr("CACHE_DB_PATH", DefaultDBPath),
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	return cfg, cfg.validate()
}

// validate checks that the settings every action needs are present.
func (c Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required")
	}
	if c.RefreshToken == "" {
		return fmt.Errorf("SPOTIFY_REFRESH_TOKEN is required")
	}
	return nil
}

// TelegramEnabled reports whether notification settings are complete.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// envOr returns the value of key, or fallback when unset or empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool parses a boolean environment variable, returning fallback when
// unset or malformed.
func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid boolean setting, using default")
		return fallback
	}
	return parsed
}
