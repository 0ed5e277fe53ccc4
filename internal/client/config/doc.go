// Package config loads settings for the nestkey terminal client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags:
//
//	-a string   nestkeyd address; empty runs the vault in-process
//	-d string   data directory (in-process mode only)
//	-k int      PBKDF2 iterations (in-process mode only)
//	-x int      seconds before a copied password is cleared from the clipboard
//	-l string   log level
//
// JSON example:
//
//	{
//	  "server_endpoint_addr": "unix:///run/user/1000/nestkey.sock",
//	  "clipboard_clear": "45s",
//	  "log_level": "debug"
//	}
package config
