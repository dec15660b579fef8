package config

import (
	"flag"
	"os"
	"time"

	"github.com/rvasani/lenden/internal/flagx"
)

// parseFlags overlays Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   base URL of the ledger API
//	-t int      request timeout in seconds
//	-k string   path to the keystore file
//	-l string   log level
//
// Arguments are pre-filtered with flagx.FilterArgs so flags owned by other
// components (e.g. -c/-config) do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-t", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "s", cfg.ServerBaseURL, "base URL of the ledger API")
	timeoutSec := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.KeystorePath, "k", cfg.KeystorePath, "path to the keystore file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeoutSec) * time.Second
}
