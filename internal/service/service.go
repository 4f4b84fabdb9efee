// Package service provides the business logic behind the listonic-sync API
package service

import (
	"context"
	"errors"
	"time"

	"github.com/stacklok/listonic-sync/internal/diagnostics"
	"github.com/stacklok/listonic-sync/internal/lists"
	"github.com/stacklok/listonic-sync/internal/status"
)

var (
	// ErrInvalidInput is returned when a command argument fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotReady is returned when no account has completed its first refresh
	ErrNotReady = errors.New("no account is ready")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go ListService

// ListService defines the operations exposed over the API and the CLI
type ListService interface {
	// CheckReadiness checks if at least one account is serving data
	CheckReadiness(ctx context.Context) error

	// ListAccounts returns a summary of every live account
	ListAccounts(ctx context.Context) ([]AccountSummary, error)

	// GetLists returns the cached lists of an account ordered by id
	GetLists(ctx context.Context, account string, opts ...Option) ([]lists.List, error)

	// Refresh polls an account immediately
	Refresh(ctx context.Context, account string) error

	// GetDiagnostics returns the redacted diagnostics report of an account
	GetDiagnostics(ctx context.Context, account string) (*diagnostics.Report, error)

	// RenameList renames the list wherever it is cached
	RenameList(ctx context.Context, listID int64, name string) (*lists.List, error)

	// AddItem appends an item to a list
	AddItem(ctx context.Context, listID int64, name string) (*lists.List, error)

	// RemoveItem deletes an item from a list
	RemoveItem(ctx context.Context, listID, itemID int64) (*lists.List, error)

	// SetItemChecked checks or unchecks an item
	SetItemChecked(ctx context.Context, listID, itemID int64, checked bool) (*lists.List, error)
}

// AccountSummary describes one live account
type AccountSummary struct {
	Name                  string             `json:"name"`
	ListCount             int                `json:"list_count"`
	ItemCount             int                `json:"item_count"`
	LastUpdateSuccess     bool               `json:"last_update_success"`
	LastUpdateSuccessTime *time.Time         `json:"last_update_success_time"`
	NeedsReauth           bool               `json:"needs_reauth"`
	Status                *status.SyncStatus `json:"status"`
}

// AccountDirectory resolves the configuration entry of an account for diagnostics
type AccountDirectory interface {
	AccountEntry(name string) (map[string]any, bool)
}

// Option is a function that sets an option for the GetLists operation
type Option func(*GetListsOptions) error

// GetListsOptions is the options for the GetLists operation
type GetListsOptions struct {
	IncludeArchived bool
	Search          string
}

// WithIncludeArchived controls whether archived lists are returned
func WithIncludeArchived(include bool) Option {
	return func(o *GetListsOptions) error {
		o.IncludeArchived = include
		return nil
	}
}

// WithSearch keeps only lists whose name contains the search term, case-insensitively
func WithSearch(search string) Option {
	return func(o *GetListsOptions) error {
		if search == "" {
			return errors.Join(ErrInvalidInput, errors.New("empty search"))
		}
		o.Search = search
		return nil
	}
}
