// Package main is the entry point for the bookstore API server.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time.
//
//nolint:gochecknoglobals
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
