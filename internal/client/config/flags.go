package config

import (
	"flag"
	"os"
	"time"

	"github.com/fincatch/fincatch/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   base URL of the sync server
//	-app string tenant/application identifier
//	-k string   tenant API key
//	-d string   SQLite database path
//	-t int      HTTP timeout in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-app", "-k", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the sync server")
	fs.StringVar(&cfg.AppID, "app", cfg.AppID, "application (tenant) identifier")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "tenant API key")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	timeoutSec := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HTTPTimeout = time.Duration(*timeoutSec) * time.Second
}
