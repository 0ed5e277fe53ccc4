package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/cryptox"
)

// Config holds runtime settings for the terminal client.
type Config struct {
	ServerEndpointAddr string
	DataDir            string
	KDFIterations      int
	ClipboardClear     time.Duration
	LogLevel           string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = ""
	c.DataDir = common.DefaultDataDir()
	c.KDFIterations = cryptox.DefaultIterations
	c.ClipboardClear = 30 * time.Second
	c.LogLevel = "warn"
}

// Embedded reports whether the client runs the vault in-process instead of
// talking to a daemon.
func (c *Config) Embedded() bool {
	return c.ServerEndpointAddr == ""
}

// LoadConfig constructs a Config from defaults, JSON and os.Args flags.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	if cfg.KDFIterations < 1 {
		panic("config: kdf iterations must be positive")
	}
	if cfg.ClipboardClear < 0 {
		panic("config: clipboard clear delay must not be negative")
	}
	return cfg
}
