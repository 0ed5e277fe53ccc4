package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/nestkey/internal/flagx"
)

// parseFlags applies command-line overrides:
//
//	-a string   listen address (host:port or unix:///path)
//	-d string   data directory
//	-k int      PBKDF2 iterations
//	-t int      session token validity, minutes
//	-l string   log level (debug, info, warn, error)
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-k", "-t", "-l"})

	fs := flag.NewFlagSet("nestkeyd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "listen address")
	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.IntVar(&config.KDFIterations, "k", config.KDFIterations, "PBKDF2 iterations")
	tokenMinutes := fs.Int("t", int(config.TokenValidity.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenMinutes) * time.Minute
}
