package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config with values from LENDEN_* environment variables.
// Unset or malformed variables leave the current value in place.
func parseEnv(cfg *Config) {
	if v := os.Getenv("LENDEN_SERVER_URL"); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv("LENDEN_REQUEST_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.RequestTimeout = time.Duration(sec) * time.Second
		}
	}
	if v := os.Getenv("LENDEN_KEYSTORE"); v != "" {
		cfg.KeystorePath = v
	}
	if v := os.Getenv("LENDEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LENDEN_LOCALE"); v != "" {
		cfg.DisplayLocale = v
	}
}
