package sync

import (
	"github.com/stacklok/listonic-sync/internal/status"
)

// DataChangeDetector detects changes between polls
type DataChangeDetector interface {
	// IsDataChanged reports whether the polled graph differs from the last successful one
	IsDataChanged(result *Result, syncStatus *status.SyncStatus) bool
}

// DefaultDataChangeDetector implements DataChangeDetector by hash comparison
type DefaultDataChangeDetector struct{}

// IsDataChanged implements DataChangeDetector
func (DefaultDataChangeDetector) IsDataChanged(result *Result, syncStatus *status.SyncStatus) bool {
	if result == nil {
		return false
	}

	// Check for hash in syncStatus first
	var lastSyncHash string
	if syncStatus != nil {
		lastSyncHash = syncStatus.LastSyncHash
	}

	// Without a previous hash everything is new
	if lastSyncHash == "" {
		return true
	}

	return result.Hash != lastSyncHash
}
