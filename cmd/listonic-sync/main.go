// Package main is the entry point for the listonic-sync server and CLI.
package main

import (
	"os"

	"github.com/stacklok/listonic-sync/cmd/listonic-sync/app"
	"github.com/stacklok/listonic-sync/internal/config"
	"github.com/stacklok/listonic-sync/internal/logging"
)

func main() {
	// Logs go to stderr to keep stdout clean for commands that print data
	logger := logging.Setup(logging.WithLevel(logging.LevelFromEnv(config.EnvPrefix)))
	defer func() { _ = logger.Sync() }()

	if err := app.NewRootCmd().Execute(); err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}
