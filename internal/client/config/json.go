package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/nestkey/internal/flagx"
	"github.com/dmitrijs2005/nestkey/internal/timex"
)

type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	DataDir            string          `json:"data_dir"`
	KDFIterations      int             `json:"kdf_iterations"`
	ClipboardClear     *timex.Duration `json:"clipboard_clear"`
	LogLevel           string          `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. A present
// "clipboard_clear" of 0 disables clearing.
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

	if c.ServerEndpointAddr != "" {
		config.ServerEndpointAddr = c.ServerEndpointAddr
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
	if c.KDFIterations != 0 {
		config.KDFIterations = c.KDFIterations
	}
	if c.ClipboardClear != nil {
		config.ClipboardClear = c.ClipboardClear.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
