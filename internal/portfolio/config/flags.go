package config

import (
	"flag"
	"os"
	"time"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-r string   docstore server base URL
//	-d string   SQLite DSN of the local cache
//	-l string   website bind address
//	-m int      cache max age, minutes
//	-y string   site profile YAML path
//	-k string   admin API token
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-r", "-d", "-l", "-m", "-y", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerURL, "r", config.ServerURL, "docstore server base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "local cache DSN")
	fs.StringVar(&config.ListenAddr, "l", config.ListenAddr, "website listen address")

	cacheMaxAge := fs.Int("m", int(config.CacheMaxAge.Minutes()), "cache max age (in minutes)")

	fs.StringVar(&config.SiteProfile, "y", config.SiteProfile, "site profile YAML path")
	fs.StringVar(&config.APIToken, "k", config.APIToken, "admin API token")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CacheMaxAge = time.Duration(*cacheMaxAge) * time.Minute
}
