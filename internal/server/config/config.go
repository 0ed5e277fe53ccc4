// Package config loads settings for the nestkeyd daemon: built-in defaults,
// then an optional JSON file (-c / -config), then command-line flags.
package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/cryptox"
)

// Config holds runtime settings for the daemon.
//
// ListenAddr is host:port for TCP or unix:///path/to/socket. TokenValidity is
// the lifetime of session tokens issued on unlock.
type Config struct {
	ListenAddr    string
	DataDir       string
	KDFIterations int
	TokenValidity time.Duration
	LogLevel      string
}

func (c *Config) LoadDefaults() {
	c.ListenAddr = "127.0.0.1:50052"
	c.DataDir = common.DefaultDataDir()
	c.KDFIterations = cryptox.DefaultIterations
	c.TokenValidity = 15 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig builds the daemon Config from os.Args. It panics on unreadable
// or invalid input.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	cfg.validate()
	return cfg
}

func (c *Config) validate() {
	if c.KDFIterations < 1 {
		panic("config: kdf iterations must be positive")
	}
	if c.TokenValidity <= 0 {
		panic("config: token validity must be positive")
	}
	if c.ListenAddr == "" {
		panic("config: listen address is empty")
	}
}
