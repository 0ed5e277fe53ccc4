package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/nestkey/internal/flagx"
	"github.com/dmitrijs2005/nestkey/internal/timex"
)

// JsonConfig is the on-disk shape of the daemon config file. Durations are
// timex.Duration so "15m" and integer nanoseconds both work.
type JsonConfig struct {
	ListenAddr    string         `json:"listen_addr"`
	DataDir       string         `json:"data_dir"`
	KDFIterations int            `json:"kdf_iterations"`
	TokenValidity timex.Duration `json:"token_validity"`
	LogLevel      string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. Fields absent
// from the file keep their current values.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
	if c.KDFIterations != 0 {
		config.KDFIterations = c.KDFIterations
	}
	if c.TokenValidity.Duration != 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
