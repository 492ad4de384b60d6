package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration from environment variables. Env values sit
// between the JSON file and command-line flags in precedence.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("ADMIN_USER"); ok {
		config.AdminUser = v
	}
	if v, ok := os.LookupEnv("ADMIN_PASSWORD_HASH"); ok {
		config.AdminPasswordHash = v
	}
	if v, ok := os.LookupEnv("TOKEN_VALIDITY_MINUTES"); ok {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.TokenValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
	if v, ok := os.LookupEnv("S3_ROOT_USER"); ok {
		config.S3RootUser = v
	}
	if v, ok := os.LookupEnv("S3_ROOT_PASSWORD"); ok {
		config.S3RootPassword = v
	}
	if v, ok := os.LookupEnv("S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := os.LookupEnv("S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := os.LookupEnv("S3_BASE_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
}
