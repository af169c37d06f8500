// Package main provides the passkeep CLI commands.
package main

import (
	"os"

	"github.com/awnumar/memguard"
)

func main() {
	// Purge locked buffers on interrupt so key material never outlives
	// the process.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	if err := rootCmd.Execute(); err != nil {
		memguard.Purge()
		os.Exit(1)
	}
}
