package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/listonic"
	"github.com/stacklok/listonic-sync/internal/lists"
)

// Result contains the result of a successful poll
type Result struct {
	Lists     map[int64]lists.List
	Hash      string
	ListCount int
	ItemCount int
}

// Manager performs the remote half of a poll cycle
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/stacklok/listonic-sync/internal/sync Manager
type Manager interface {
	// PerformSync fetches and maps every list visible to the account
	PerformSync(ctx context.Context) (*Result, error)

	// SyncList fetches and maps a single list. found is false when the remote
	// payload no longer describes a list with a valid id.
	SyncList(ctx context.Context, listID int64) (list lists.List, found bool, err error)
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	client listonic.API
}

// NewDefaultSyncManager creates a Manager backed by the given remote client
func NewDefaultSyncManager(client listonic.API) Manager {
	return &defaultSyncManager{client: client}
}

// PerformSync implements Manager
func (s *defaultSyncManager) PerformSync(ctx context.Context) (*Result, error) {
	raw, err := s.client.FetchLists(ctx)
	if err != nil {
		return nil, err
	}

	graph, err := lists.MapLists(raw)
	if err != nil {
		return nil, apierrors.NewTransientError("unable to map lists payload", err)
	}

	hash, err := HashLists(graph)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Lists:     graph,
		Hash:      hash,
		ListCount: len(graph),
		ItemCount: lists.ItemCount(graph),
	}

	slog.Debug("Fetched lists",
		"list_count", result.ListCount,
		"item_count", result.ItemCount)

	return result, nil
}

// SyncList implements Manager
func (s *defaultSyncManager) SyncList(ctx context.Context, listID int64) (lists.List, bool, error) {
	raw, err := s.client.FetchList(ctx, listID)
	if err != nil {
		return lists.List{}, false, err
	}

	list, found, err := lists.MapList(raw)
	if err != nil {
		return lists.List{}, false, apierrors.NewTransientError(fmt.Sprintf("unable to map list %d", listID), err)
	}
	if found && list.ID != listID {
		return lists.List{}, false, apierrors.NewTransientError(
			fmt.Sprintf("requested list %d but received list %d", listID, list.ID), nil)
	}

	return list, found, nil
}

// HashLists returns the hex sha256 of the canonical serialization of a list graph
func HashLists(graph map[int64]lists.List) (string, error) {
	data, err := lists.Marshal(graph)
	if err != nil {
		return "", fmt.Errorf("failed to serialize lists: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
