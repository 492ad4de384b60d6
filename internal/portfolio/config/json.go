package config

import (
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/flagx"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/timex"
)

// JsonConfig is the JSON-file DTO for Config. Durations accept both "30m"
// strings and integer nanoseconds.
type JsonConfig struct {
	ServerURL   string         `json:"server_url"`
	DatabaseDSN string         `json:"database_dsn"`
	ListenAddr  string         `json:"listen_addr"`
	CacheMaxAge timex.Duration `json:"cache_max_age"`
	SiteProfile string         `json:"site_profile"`
	APIToken    string         `json:"api_token"`
}

// parseJson loads configuration values from the JSON file given via the
// -c/-config flags. No flag means nothing is loaded. A missing or malformed
// file panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.ServerURL = c.ServerURL
	config.DatabaseDSN = c.DatabaseDSN
	config.ListenAddr = c.ListenAddr
	config.CacheMaxAge = time.Duration(c.CacheMaxAge.Duration)
	config.SiteProfile = c.SiteProfile
	config.APIToken = c.APIToken
}
