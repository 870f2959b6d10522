// Package config collects the environment-backed settings shared by the
// tracker binaries. Values come from the process environment; cmd binaries
// load a .env file first via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings for the tracker.
type Config struct {
	// Port the API server listens on.
	Port string

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// RankingBaseURL is the MapleStory ranking API endpoint.
	RankingBaseURL string

	// WorldIndex selects the ranking world (reboot_index query param).
	WorldIndex int

	// UpdateHourUTC is the wall-clock hour (UTC) of the daily progression run.
	UpdateHourUTC int

	// JWTSecret signs access tokens, JWTRefreshSecret signs refresh tokens.
	JWTSecret        string
	JWTRefreshSecret string

	// DiscordWebhookURL receives pass summaries. Empty disables notifications.
	DiscordWebhookURL string

	// FetchTimeout bounds a single ranking API request.
	FetchTimeout time.Duration
}

const (
	defaultPort           = "5000"
	defaultRankingBaseURL = "https://www.nexon.com/api/maplestory/no-auth/ranking/v2/eu"
	defaultWorldIndex     = 2 // Luna
	defaultUpdateHourUTC  = 17
	defaultFetchTimeout   = 10 * time.Second
)

// Load reads configuration from the environment. DATABASE_URL is required;
// everything else has a default.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg := &Config{
		Port:              getenv("PORT", defaultPort),
		DatabaseURL:       dbURL,
		RankingBaseURL:    getenv("RANKING_API_URL", defaultRankingBaseURL),
		WorldIndex:        defaultWorldIndex,
		UpdateHourUTC:     defaultUpdateHourUTC,
		JWTSecret:         getenv("JWT_SECRET", ""),
		JWTRefreshSecret:  getenv("JWT_REFRESH_SECRET", ""),
		DiscordWebhookURL: getenv("DISCORD_WEBHOOK_URL", ""),
		FetchTimeout:      defaultFetchTimeout,
	}

	if v := os.Getenv("RANKING_WORLD_INDEX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RANKING_WORLD_INDEX %q: %w", v, err)
		}
		cfg.WorldIndex = n
	}

	if v := os.Getenv("UPDATE_HOUR_UTC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 23 {
			return nil, fmt.Errorf("invalid UPDATE_HOUR_UTC %q: must be 0-23", v)
		}
		cfg.UpdateHourUTC = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
