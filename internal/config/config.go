// Package config assembles runtime settings for the lenden CLI from
// defaults, an optional JSON file, environment variables, and command-line
// flags, in that order. Later sources take precedence.
package config

import "time"

// Config holds runtime settings for the lenden CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the ledger API, e.g. "http://localhost:8080/api".
//   - RequestTimeout: per-request deadline for every network call.
//   - KeystorePath: path to the SQLite file holding the persisted session.
//   - LogLevel: "debug", "info", "warn" or "error".
//   - DisplayLocale: BCP 47 tag used for digit grouping, e.g. "en-IN".
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	KeystorePath   string
	LogLevel       string
	DisplayLocale  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080/api"
	c.RequestTimeout = 15 * time.Second
	c.KeystorePath = "lenden.db"
	c.LogLevel = "info"
	c.DisplayLocale = "en-IN"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a -c/-config file is given), environment variables, and
// finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
