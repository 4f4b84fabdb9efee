package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/status"
	pkgsync "github.com/stacklok/listonic-sync/internal/sync"
)

// FirstRefresh performs the mandatory initial poll. Rejected credentials yield an
// error matching ErrAuthFailed; any other failure yields ErrNotReady.
func (c *Coordinator) FirstRefresh(ctx context.Context) error {
	changed, err := c.refresh(ctx)
	if changed {
		c.notify()
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuthFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNotReady, err)
}

// Refresh performs one poll cycle. Transient and request failures are recorded and
// swallowed so that the next tick retries; rejected credentials are returned as an
// error matching ErrAuthFailed after scheduling has stopped.
func (c *Coordinator) Refresh(ctx context.Context) error {
	changed, err := c.refresh(ctx)
	if changed {
		c.notify()
	}
	if err != nil && errors.Is(err, ErrAuthFailed) {
		return err
	}
	return nil
}

// refresh runs a poll under the operation lock and reports whether data was replaced
func (c *Coordinator) refresh(ctx context.Context) (bool, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	startTime := c.now()
	attempt := c.beginCycle(ctx)

	slog.Debug("Starting poll", "account", c.name, "attempt", attempt)

	result, err := c.manager.PerformSync(ctx)

	syncDuration := c.now().Sub(startTime)
	c.syncMetrics.RecordSyncDuration(ctx, c.name, syncDuration, err == nil)

	if err != nil {
		return false, c.failCycle(ctx, err)
	}

	c.completeCycle(ctx, result)
	c.syncMetrics.RecordCounts(ctx, c.name, result.ListCount, result.ItemCount)
	return true, nil
}

// beginCycle marks the status as syncing and returns the attempt number
func (c *Coordinator) beginCycle(ctx context.Context) int {
	c.mu.Lock()
	now := c.now()
	c.syncStatus.Phase = status.SyncPhaseSyncing
	c.syncStatus.Message = "Poll in progress"
	c.syncStatus.LastAttempt = &now
	c.syncStatus.AttemptCount++
	snapshot := c.syncStatus
	c.mu.Unlock()

	c.persist(ctx, &snapshot)
	return snapshot.AttemptCount
}

func (c *Coordinator) completeCycle(ctx context.Context, result *pkgsync.Result) {
	c.mu.Lock()
	now := c.now()
	changed := c.detector.IsDataChanged(result, &c.syncStatus)
	c.data = result.Lists
	c.lastUpdateSuccess = true
	c.lastUpdateSuccessTime = &now
	c.lastErr = nil
	c.syncStatus.Phase = status.SyncPhaseComplete
	c.syncStatus.Message = "Poll completed successfully"
	c.syncStatus.LastSyncTime = &now
	c.syncStatus.LastSyncHash = result.Hash
	c.syncStatus.ListCount = result.ListCount
	c.syncStatus.ItemCount = result.ItemCount
	c.syncStatus.AttemptCount = 0
	snapshot := c.syncStatus
	c.mu.Unlock()

	c.persist(ctx, &snapshot)

	hashPreview := result.Hash
	if len(hashPreview) > 8 {
		hashPreview = hashPreview[:8]
	}
	slog.Info("Poll completed successfully",
		"account", c.name,
		"list_count", result.ListCount,
		"item_count", result.ItemCount,
		"changed", changed,
		"hash", hashPreview)
}

// failCycle records a failed poll and returns the error to surface from refresh
func (c *Coordinator) failCycle(ctx context.Context, err error) error {
	authFailed := apierrors.IsAuth(err)

	c.mu.Lock()
	c.lastUpdateSuccess = false
	c.lastErr = err
	if authFailed {
		c.syncStatus.Phase = status.SyncPhaseAuthFailed
		c.syncStatus.Message = "Credentials rejected, re-authentication required"
	} else {
		c.syncStatus.Phase = status.SyncPhaseFailed
		c.syncStatus.Message = err.Error()
	}
	snapshot := c.syncStatus
	c.mu.Unlock()

	c.persist(ctx, &snapshot)

	if authFailed {
		slog.Error("Poll failed, credentials rejected", "account", c.name, "error", err)
		c.escalate(err)
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	slog.Warn("Poll failed, will retry on next tick",
		"account", c.name,
		"attempt", snapshot.AttemptCount,
		"error", err)
	return err
}

// escalate stops scheduling and hands the failure to the auth-failure handler
func (c *Coordinator) escalate(err error) {
	c.mu.Lock()
	already := c.needsReauth
	c.needsReauth = true
	c.mu.Unlock()

	c.halt()

	if already || c.onAuthFailure == nil {
		return
	}
	go c.onAuthFailure(c.name, err)
}

func (c *Coordinator) persist(ctx context.Context, syncStatus *status.SyncStatus) {
	if c.persistence == nil {
		return
	}
	if err := c.persistence.SaveStatus(ctx, c.name, syncStatus); err != nil {
		slog.Warn("Failed to persist sync status", "account", c.name, "error", err)
	}
}
