// Package config handles configuration for the authkeeper CLI: defaults,
// then a JSON file (-c/-config), then short command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the authkeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC endpoint.
//   - SessionFile: where the current session (client id and tokens) is kept.
//   - RequestTimeout: deadline applied to each remote call.
type Config struct {
	ServerEndpointAddr string
	SessionFile        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults. The session file lives
// in the user's config directory when one can be determined.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionFile = defaultSessionFile()
	c.RequestTimeout = 10 * time.Second
}

// userConfigDir is a seam for os.UserConfigDir.
var userConfigDir = os.UserConfigDir

func defaultSessionFile() string {
	dir, err := userConfigDir()
	if err != nil || dir == "" {
		return ".authkeeper-session.json"
	}
	return filepath.Join(dir, "authkeeper", "session.json")
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
