package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fincatch/fincatch/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. The timeout is
// given in seconds. Zero values mean "keep the previous layer's value".
type JsonConfig struct {
	ServerURL      string `json:"server_url"`
	AppID          string `json:"app_id"`
	APIKey         string `json:"api_key"`
	DatabasePath   string `json:"database_path"`
	HTTPTimeoutSec int    `json:"http_timeout_sec"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when absent nothing is loaded.
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.AppID != "" {
		cfg.AppID = jc.AppID
	}
	if jc.APIKey != "" {
		cfg.APIKey = jc.APIKey
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.HTTPTimeoutSec > 0 {
		cfg.HTTPTimeout = time.Duration(jc.HTTPTimeoutSec) * time.Second
	}
}
