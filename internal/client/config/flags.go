package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/flagx"
)

func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-k", "-x", "-l"})

	fs := flag.NewFlagSet("nestkey", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "nestkeyd address")
	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.IntVar(&config.KDFIterations, "k", config.KDFIterations, "PBKDF2 iterations")
	clearSeconds := fs.Int("x", int(config.ClipboardClear.Seconds()), "clipboard clear delay (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ClipboardClear = time.Duration(*clearSeconds) * time.Second
}
