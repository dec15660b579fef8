package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rvasani/lenden/internal/flagx"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Timeout is in
// seconds. Zero values leave the current Config untouched.
type jsonConfig struct {
	ServerBaseURL  string `json:"server_base_url"`
	RequestTimeout int    `json:"request_timeout"`
	KeystorePath   string `json:"keystore_path"`
	LogLevel       string `json:"log_level"`
	DisplayLocale  string `json:"display_locale"`
}

// parseJSON overlays Config with values from the JSON file named by the
// -c/-config flag. When no file is given the function is a no-op. Read or
// unmarshal errors panic; startup cannot proceed on a broken config file.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout) * time.Second
	}
	if jc.KeystorePath != "" {
		cfg.KeystorePath = jc.KeystorePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.DisplayLocale != "" {
		cfg.DisplayLocale = jc.DisplayLocale
	}
}
