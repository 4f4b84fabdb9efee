package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is invoked after a new configuration has been applied
type ChangeFunc func(previous, current *Config)

// Manager provides thread-safe, read-only configuration management.
// The configuration file is never written; updates come from external edits.
// An invalid update keeps the last known good configuration active.
type Manager interface {
	// GetConfig safely retrieves the current configuration
	GetConfig() *Config

	// ReloadConfig reads the latest configuration from disk and applies it if valid
	ReloadConfig() error

	// WatchConfig reloads the configuration whenever the file changes.
	// Blocks until the context is cancelled.
	WatchConfig(ctx context.Context) error

	// OnChange registers a callback run after every successful reload
	OnChange(fn ChangeFunc)

	// AccountEntry returns the diagnostics projection of an account
	AccountEntry(name string) (map[string]any, bool)

	// Close releases the file watcher resources
	Close() error
}

type configManager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	callbacks  []ChangeFunc

	watcher   *fsnotify.Watcher
	watcherMu sync.Mutex
}

// NewManager creates a Manager and loads the initial configuration.
// Returns error if initial load or validation fails.
func NewManager(configPath string) (Manager, error) {
	cm := &configManager{configPath: configPath}

	if err := cm.ReloadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load initial configuration: %w", err)
	}

	return cm, nil
}

// GetConfig returns a shallow copy of the active configuration
func (cm *configManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	configCopy := *cm.config
	return &configCopy
}

// AccountEntry implements Manager
func (cm *configManager) AccountEntry(name string) (map[string]any, bool) {
	return cm.GetConfig().AccountEntry(name)
}

// OnChange implements Manager
func (cm *configManager) OnChange(fn ChangeFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// ReloadConfig reads the configuration file and applies it if valid.
// If the new configuration is invalid, the previous configuration remains active.
func (cm *configManager) ReloadConfig() error {
	newConfig, err := LoadConfig(WithConfigPath(cm.configPath))
	if err != nil {
		return err
	}

	cm.mu.Lock()
	previous := cm.config
	cm.config = newConfig
	callbacks := append([]ChangeFunc(nil), cm.callbacks...)
	cm.mu.Unlock()

	slog.Info("Configuration loaded", "path", cm.configPath, "accounts", len(newConfig.Accounts))

	if previous != nil {
		for _, fn := range callbacks {
			fn(previous, newConfig)
		}
	}
	return nil
}

// WatchConfig observes the configuration file for external changes.
// This method blocks until the context is cancelled.
func (cm *configManager) WatchConfig(ctx context.Context) error {
	cm.watcherMu.Lock()
	if cm.watcher != nil {
		cm.watcherMu.Unlock()
		return fmt.Errorf("config watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cm.watcherMu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cm.watcher = watcher
	cm.watcherMu.Unlock()

	if err := watcher.Add(cm.configPath); err != nil {
		return fmt.Errorf("failed to watch config file %s: %w", cm.configPath, err)
	}

	slog.Info("Started watching configuration file", "path", cm.configPath)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping config file watcher")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				slog.Info("External config update detected, reloading")

				if err := cm.ReloadConfig(); err != nil {
					slog.Error("Failed to reload config, keeping previous configuration", "error", err)
				}
			}

			// Editors and atomic writers replace the file; watch the new inode
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Debug("Config file replaced, re-watching")
				_ = watcher.Add(cm.configPath)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

// Close releases resources held by the config manager
func (cm *configManager) Close() error {
	cm.watcherMu.Lock()
	defer cm.watcherMu.Unlock()

	if cm.watcher != nil {
		if err := cm.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close file watcher: %w", err)
		}
		cm.watcher = nil
		slog.Info("Config watcher closed")
	}

	return nil
}
