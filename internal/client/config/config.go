package config

import "time"

// Config holds runtime settings for the docme CLI.
//
// Units: all intervals are time.Duration; on the command line they are
// given in seconds.
type Config struct {
	// ServerURL is the base URL of the docme REST API.
	ServerURL string
	// DatabaseDSN is the path of the local SQLite file.
	DatabaseDSN string
	// AssetsDir holds the local copies of document images.
	AssetsDir string
	// LogFile receives the client log; the terminal stays free for the REPL.
	LogFile string

	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration

	// PruneMissing purges clean local records the server no longer lists.
	PruneMissing bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "docme.db"
	c.AssetsDir = "assets"
	c.LogFile = "docme.log"
	c.SyncInterval = time.Minute
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.PruneMissing = false
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
