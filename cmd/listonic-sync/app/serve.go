package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/listonic-sync/internal/app"
	"github.com/stacklok/listonic-sync/internal/config"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sync server",
		Long: `Start the sync server. Every configured account is polled on its own interval and
its lists are served over the HTTP API.

The server requires a configuration file (--config) that specifies:
- The Listonic client credentials and endpoints
- The accounts to sync and where their passwords come from
- Sync policy and telemetry settings

The configuration file is watched; account changes are applied without a restart.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().String("data-dir", "", "Directory for status files (overrides dataDir in the config)")

	for _, name := range []string{"address", "config", "data-dir"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			slog.Error("Failed to bind flag", "flag", name, "error", err)
		}
	}

	if err := cmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
	}

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := viper.GetString("config")
	manager, err := config.NewManager(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", configPath, "accounts", len(manager.GetConfig().Accounts))

	opts := []app.SyncAppOptions{
		app.WithConfigManager(manager),
		app.WithAddress(viper.GetString("address")),
	}
	if dir := viper.GetString("data-dir"); dir != "" {
		opts = append(opts, app.WithDataDirectory(dir))
	}

	syncApp, err := app.NewSyncApp(context.WithoutCancel(ctx), opts...)
	if err != nil {
		_ = manager.Close()
		return fmt.Errorf("failed to build application: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- syncApp.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-errChan:
		if err != nil {
			_ = syncApp.Stop(defaultGracefulTimeout)
			return err
		}
	}

	return syncApp.Stop(defaultGracefulTimeout)
}
