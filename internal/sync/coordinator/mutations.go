package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/status"
)

// UpdateListOptions holds the list attributes to change. Nil fields are left as is.
type UpdateListOptions struct {
	Name *string
}

// UpdateList changes attributes of a cached list on the remote service and then
// re-fetches it. Unknown ids yield apierrors.ErrNotFound without any remote call.
func (c *Coordinator) UpdateList(ctx context.Context, listID int64, opts UpdateListOptions) error {
	return c.mutate(ctx, "update_list", listID, 0, func(ctx context.Context) error {
		if opts.Name == nil {
			return nil
		}
		return c.client.RenameList(ctx, listID, *opts.Name)
	})
}

// AddItem appends an item to a cached list
func (c *Coordinator) AddItem(ctx context.Context, listID int64, name string) error {
	return c.mutate(ctx, "add_item", listID, 0, func(ctx context.Context) error {
		_, err := c.client.AddItem(ctx, listID, name)
		return err
	})
}

// RemoveItem deletes an item of a cached list
func (c *Coordinator) RemoveItem(ctx context.Context, listID, itemID int64) error {
	return c.mutate(ctx, "remove_item", listID, itemID, func(ctx context.Context) error {
		return c.client.RemoveItem(ctx, listID, itemID)
	})
}

// SetItemChecked checks or unchecks an item of a cached list
func (c *Coordinator) SetItemChecked(ctx context.Context, listID, itemID int64, checked bool) error {
	return c.mutate(ctx, "set_item_checked", listID, itemID, func(ctx context.Context) error {
		return c.client.SetItemChecked(ctx, listID, itemID, checked)
	})
}

// mutate runs a remote mutation and the re-fetch of the affected list under the
// operation lock. itemID 0 skips the item lookup. Poll state is never touched.
// Once the remote accepted the mutation it is reported as applied, even if the
// re-fetch fails; the cached list then stays stale until the next poll.
func (c *Coordinator) mutate(
	ctx context.Context,
	op string,
	listID, itemID int64,
	action func(ctx context.Context) error,
) error {
	changed, refetchErr, err := c.mutateLocked(ctx, listID, itemID, action)
	if changed {
		c.notify()
	}
	if err != nil {
		c.escalateMutationError(ctx, op, listID, err)
		return err
	}

	if refetchErr != nil {
		slog.Warn("Mutation applied, re-fetch failed; cached list refreshes on next poll",
			"account", c.name, "operation", op, "list_id", listID, "error", refetchErr)
		c.escalateMutationError(ctx, op, listID, refetchErr)
		return nil
	}

	slog.Info("Mutation applied", "account", c.name, "operation", op, "list_id", listID)
	return nil
}

func (c *Coordinator) escalateMutationError(ctx context.Context, op string, listID int64, err error) {
	if !apierrors.IsAuth(err) {
		return
	}
	slog.Error("Mutation failed, credentials rejected",
		"account", c.name, "operation", op, "list_id", listID, "error", err)
	c.markAuthFailed(ctx)
	c.escalate(err)
}

// mutateLocked returns the action error in err and a failed re-fetch in refetchErr
func (c *Coordinator) mutateLocked(
	ctx context.Context,
	listID, itemID int64,
	action func(ctx context.Context) error,
) (changed bool, refetchErr, err error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.lookup(listID, itemID); err != nil {
		return false, nil, err
	}

	if err := action(ctx); err != nil {
		return false, nil, err
	}

	list, found, err := c.manager.SyncList(ctx, listID)
	if err != nil {
		return false, err, nil
	}

	c.mu.Lock()
	next := maps.Clone(c.data)
	if found {
		next[listID] = list
	} else {
		delete(next, listID)
	}
	c.data = next
	c.mu.Unlock()

	return true, nil, nil
}

func (c *Coordinator) lookup(listID, itemID int64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list, ok := c.data[listID]
	if !ok {
		return fmt.Errorf("list %d: %w", listID, apierrors.ErrNotFound)
	}
	if itemID == 0 {
		return nil
	}
	if _, ok := list.FindItem(itemID); !ok {
		return fmt.Errorf("item %d in list %d: %w", itemID, listID, apierrors.ErrNotFound)
	}
	return nil
}

func (c *Coordinator) markAuthFailed(ctx context.Context) {
	c.mu.Lock()
	c.syncStatus.Phase = status.SyncPhaseAuthFailed
	c.syncStatus.Message = "Credentials rejected, re-authentication required"
	snapshot := c.syncStatus
	c.mu.Unlock()

	c.persist(ctx, &snapshot)
}
