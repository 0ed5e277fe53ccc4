// Package buildinfo carries version data injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/nestkey/internal/buildinfo.Version=v1.0.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// Print writes the build banner for the named binary to w.
func Print(w io.Writer, name string) {
	fmt.Fprintf(w, "%s\nBuild version: %s\nBuild date: %s\nBuild commit: %s\n", name, Version, Date, Commit)
}
