// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// API holds the server process configuration.
type API struct {
	Addr         string
	TickEvery    time.Duration
	GameDuration time.Duration
	CatalogPath  string
	RandSeed     int64
}

// CLI holds the client configuration.
type CLI struct {
	APIBaseURL string
}

func LoadAPI() API {
	cfg := API{
		Addr:         envDefault("DATACORP_ADDR", ":8080"),
		TickEvery:    envDurationDefault("DATACORP_TICK_EVERY", time.Second),
		GameDuration: envDurationDefault("DATACORP_GAME_DURATION", 30*time.Minute),
		CatalogPath:  envDefault("DATACORP_CATALOG_PATH", ""),
		RandSeed:     envInt64Default("DATACORP_RAND_SEED", 0),
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	return cfg
}

func LoadCLI() CLI {
	return CLI{
		APIBaseURL: envDefault("DCORP_API_BASE_URL", "http://localhost:8080"),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt64Default(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
