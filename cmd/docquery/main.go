// Package main is the entry point for the docquery CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docquery/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
