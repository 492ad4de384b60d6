// Package config handles configuration for the document-store server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the docstore server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API and websocket feed.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means in-memory storage.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AdminUser / AdminPasswordHash: the single admin credential (bcrypt hash).
//   - TokenValidityDuration: access token lifetime.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings for image uploads.
type Config struct {
	EndpointAddr          string
	DatabaseDSN           string
	SecretKey             string
	AdminUser             string
	AdminPasswordHash     string
	TokenValidityDuration time.Duration
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8090"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AdminUser = "admin"
	// development-only credential, override via config file or -w
	c.AdminPasswordHash = ""
	c.TokenValidityDuration = 12 * time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "portfolio-uploads"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
