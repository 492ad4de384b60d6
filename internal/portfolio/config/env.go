package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration from environment variables. Env values sit
// between the JSON file and command-line flags in precedence.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("SERVER_URL"); ok {
		config.ServerURL = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		config.ListenAddr = v
	}
	if v, ok := os.LookupEnv("CACHE_MAX_AGE_MINUTES"); ok {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.CacheMaxAge = time.Duration(minutes) * time.Minute
		}
	}
	if v, ok := os.LookupEnv("SITE_PROFILE"); ok {
		config.SiteProfile = v
	}
	if v, ok := os.LookupEnv("API_TOKEN"); ok {
		config.APIToken = v
	}
}
