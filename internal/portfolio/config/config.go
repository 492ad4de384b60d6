// Package config handles configuration for the portfolio site binary,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the portfolio CLI and website.
//
// Fields:
//   - ServerURL: base URL of the docstore server.
//   - DatabaseDSN: SQLite DSN of the local cache mirror.
//   - ListenAddr: bind address for the public website.
//   - CacheMaxAge: staleness threshold for the local mirror.
//   - SiteProfile: path to the YAML site profile (name, tagline, links).
//   - APIToken: admin bearer token used by write operations; empty runs
//     read-only.
type Config struct {
	ServerURL   string
	DatabaseDSN string
	ListenAddr  string
	CacheMaxAge time.Duration
	SiteProfile string
	APIToken    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8090"
	c.DatabaseDSN = "portfolio.db"
	c.ListenAddr = ":8080"
	c.CacheMaxAge = 30 * time.Minute
	c.SiteProfile = "site.yaml"
	c.APIToken = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
