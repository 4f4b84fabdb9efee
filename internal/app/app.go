// Package app provides application lifecycle management for listonic-sync.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/listonic-sync/internal/config"
	"github.com/stacklok/listonic-sync/internal/registry"
	"github.com/stacklok/listonic-sync/internal/service"
	"github.com/stacklok/listonic-sync/internal/telemetry"
)

// SyncApp encapsulates all components needed to run the sync server.
// It provides lifecycle management and graceful shutdown capabilities.
type SyncApp struct {
	config        *config.Config
	configManager config.Manager
	registry      *registry.Registry
	accounts      *Accounts
	service       service.ListService
	telemetry     *telemetry.Telemetry
	httpServer    *http.Server
	lock          *flock.Flock
	boundAddr     atomic.Pointer[string]

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start sets up every configured account in the background, watches the
// configuration file when one is managed, and serves HTTP.
// This method blocks until the HTTP server stops or encounters an error.
func (app *SyncApp) Start() error {
	for _, acc := range app.config.Accounts {
		app.accounts.StartAccount(app.ctx, app.config, acc)
	}

	g, ctx := errgroup.WithContext(app.ctx)

	if app.configManager != nil {
		app.configManager.OnChange(func(previous, current *config.Config) {
			app.accounts.HandleOptionsUpdate(app.ctx, previous, current)
		})
		g.Go(func() error {
			if err := app.configManager.WatchConfig(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Config watcher stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		listener, err := net.Listen("tcp", app.httpServer.Addr)
		if err != nil {
			app.cancelFunc()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		addr := listener.Addr().String()
		app.boundAddr.Store(&addr)
		slog.Info("Server listening", "address", addr)
		if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.cancelFunc()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Stop gracefully stops the application with the given timeout. It stops every
// account, shuts down the HTTP server, flushes telemetry and releases the data
// directory lock.
func (app *SyncApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	app.accounts.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}
	if app.configManager != nil {
		if err := app.configManager.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.telemetry != nil {
		if err := app.telemetry.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if app.lock != nil {
		if err := app.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("failed to release data directory lock: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the configuration the application started with
func (app *SyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *SyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Addr returns the address the HTTP server is bound to, or "" before Start listens
func (app *SyncApp) Addr() string {
	if addr := app.boundAddr.Load(); addr != nil {
		return *addr
	}
	return ""
}

// Registry returns the live account registry
func (app *SyncApp) Registry() *registry.Registry {
	return app.registry
}

// Service returns the list service backing the HTTP API
func (app *SyncApp) Service() service.ListService {
	return app.service
}
