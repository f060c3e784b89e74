// Package config loads runtime configuration for the fin-catch client.
//
// Sources & precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
package config

import "time"

// Config holds runtime settings for the client.
//
// ServerURL empty means "offline only": the local store works normally and
// sync is simply not configured.
type Config struct {
	// ServerURL is the base URL of the sync server, e.g. "https://sync.example.com".
	ServerURL string

	// AppID identifies this installation (tenant) to the server.
	AppID string

	// APIKey is the tenant API key sent with every request.
	APIKey string

	// DatabasePath is the SQLite file location.
	DatabasePath string

	// HTTPTimeout bounds every network exchange. A sync cycle that hits
	// it behaves like any other transport failure.
	HTTPTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "fincatch.db"
	c.HTTPTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
