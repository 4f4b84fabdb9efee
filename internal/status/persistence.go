// Package status provides poll status tracking and persistence per account.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stacklok/listonic-sync/internal/versions"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// StatusPersistence defines the interface for sync status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the sync status of an account
	SaveStatus(ctx context.Context, account string, status *SyncStatus) error

	// LoadStatus loads the sync status of an account.
	// Returns an empty SyncStatus if the file doesn't exist (first run)
	LoadStatus(ctx context.Context, account string) (*SyncStatus, error)

	// LoadAllStatus loads sync status for all accounts
	LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error)
}

// fileStatusPersistence implements StatusPersistence using local filesystem
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a new file-based status persistence.
// Each account gets its own directory under basePath.
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

// SaveStatus writes the status to <basePath>/<account>/status.json atomically
func (f *fileStatusPersistence) SaveStatus(_ context.Context, account string, status *SyncStatus) error {
	accountDir := filepath.Join(f.basePath, account)
	if err := os.MkdirAll(accountDir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory for account '%s': %w", account, err)
	}

	filePath := filepath.Join(accountDir, StatusFileName)

	stamped := *status
	stamped.WriterVersion = versions.GetVersionInfo().Version

	data, err := json.MarshalIndent(&stamped, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status data for account '%s': %w", account, err)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for account '%s': %w", account, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for account '%s': %w", account, err)
	}

	return nil
}

// LoadStatus loads the status of an account, returning an empty status if none was saved yet
func (f *fileStatusPersistence) LoadStatus(_ context.Context, account string) (*SyncStatus, error) {
	filePath := filepath.Join(f.basePath, account, StatusFileName)

	// #nosec G304 -- filePath is built from the data directory and a validated account name
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &SyncStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file for account '%s': %w", account, err)
	}

	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status data for account '%s': %w", account, err)
	}

	if current := versions.GetVersionInfo().Version; versions.IsNewerVersion(status.WriterVersion, current) {
		slog.Warn("Status file was written by a newer version",
			"account", account,
			"writer_version", status.WriterVersion,
			"current_version", current)
	}

	return &status, nil
}

// LoadAllStatus loads the status of every account directory under basePath
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error) {
	result := make(map[string]*SyncStatus)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		account := entry.Name()
		status, err := f.LoadStatus(ctx, account)
		if err != nil {
			slog.Warn("Skipping unreadable status file", "account", account, "error", err)
			continue
		}

		result[account] = status
	}

	return result, nil
}
