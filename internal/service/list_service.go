package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/diagnostics"
	"github.com/stacklok/listonic-sync/internal/lists"
	"github.com/stacklok/listonic-sync/internal/registry"
	"github.com/stacklok/listonic-sync/internal/sync/coordinator"
)

type listService struct {
	registry *registry.Registry
	accounts AccountDirectory
}

var _ ListService = (*listService)(nil)

// ServiceOption configures the list service
type ServiceOption func(*listService)

// WithAccountDirectory sets the source of config entries for diagnostics
func WithAccountDirectory(dir AccountDirectory) ServiceOption {
	return func(s *listService) {
		s.accounts = dir
	}
}

// NewListService creates a ListService backed by the coordinator registry
func NewListService(reg *registry.Registry, opts ...ServiceOption) ListService {
	s := &listService{registry: reg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness implements ListService
func (s *listService) CheckReadiness(_ context.Context) error {
	if s.registry.Len() == 0 {
		return ErrNotReady
	}
	return nil
}

// ListAccounts implements ListService
func (s *listService) ListAccounts(_ context.Context) ([]AccountSummary, error) {
	all := s.registry.All()
	out := make([]AccountSummary, 0, len(all))
	for _, c := range all {
		data := c.Data()
		out = append(out, AccountSummary{
			Name:                  c.Name(),
			ListCount:             len(data),
			ItemCount:             lists.ItemCount(data),
			LastUpdateSuccess:     c.LastUpdateSuccess(),
			LastUpdateSuccessTime: c.LastUpdateSuccessTime(),
			NeedsReauth:           c.NeedsReauth(),
			Status:                c.Status(),
		})
	}
	return out, nil
}

// GetLists implements ListService
func (s *listService) GetLists(
	_ context.Context, account string, opts ...Option,
) ([]lists.List, error) {
	options := GetListsOptions{IncludeArchived: true}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}

	c, err := s.coordinator(account)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(options.Search)
	out := make([]lists.List, 0)
	for _, l := range c.Data() {
		if l.IsArchived && !options.IncludeArchived {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(l.Name), search) {
			continue
		}
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b lists.List) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Refresh implements ListService. A failed poll is reported to the caller even
// though the coordinator itself only records it.
func (s *listService) Refresh(ctx context.Context, account string) error {
	c, err := s.coordinator(account)
	if err != nil {
		return err
	}
	if c.NeedsReauth() {
		return apierrors.NewAuthError(fmt.Sprintf("account %s requires re-authentication", account), nil)
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}
	if !c.LastUpdateSuccess() {
		return c.LastError()
	}
	return nil
}

// GetDiagnostics implements ListService
func (s *listService) GetDiagnostics(_ context.Context, account string) (*diagnostics.Report, error) {
	c, err := s.coordinator(account)
	if err != nil {
		return nil, err
	}

	var entry map[string]any
	if s.accounts != nil {
		entry, _ = s.accounts.AccountEntry(account)
	}

	report := diagnostics.Build(entry, c.Snapshot())
	return &report, nil
}

// RenameList implements ListService
func (s *listService) RenameList(ctx context.Context, listID int64, name string) (*lists.List, error) {
	if err := validateListID(listID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}

	return s.mutate(listID, func(c *coordinator.Coordinator) error {
		return c.UpdateList(ctx, listID, coordinator.UpdateListOptions{Name: &name})
	})
}

// AddItem implements ListService
func (s *listService) AddItem(ctx context.Context, listID int64, name string) (*lists.List, error) {
	if err := validateListID(listID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name must not be empty", ErrInvalidInput)
	}

	return s.mutate(listID, func(c *coordinator.Coordinator) error {
		return c.AddItem(ctx, listID, name)
	})
}

// RemoveItem implements ListService
func (s *listService) RemoveItem(ctx context.Context, listID, itemID int64) (*lists.List, error) {
	if err := validateIDs(listID, itemID); err != nil {
		return nil, err
	}

	return s.mutate(listID, func(c *coordinator.Coordinator) error {
		return c.RemoveItem(ctx, listID, itemID)
	})
}

// SetItemChecked implements ListService
func (s *listService) SetItemChecked(ctx context.Context, listID, itemID int64, checked bool) (*lists.List, error) {
	if err := validateIDs(listID, itemID); err != nil {
		return nil, err
	}

	return s.mutate(listID, func(c *coordinator.Coordinator) error {
		return c.SetItemChecked(ctx, listID, itemID, checked)
	})
}

// mutate routes a command to the coordinator caching the list and returns the
// list as cached afterwards, or nil when the list no longer exists remotely
func (s *listService) mutate(listID int64, apply func(c *coordinator.Coordinator) error) (*lists.List, error) {
	c, err := s.registry.FindByList(listID)
	if err != nil {
		return nil, err
	}

	if err := apply(c); err != nil {
		slog.Debug("Command failed", "account", c.Name(), "list_id", listID, "error", err)
		return nil, err
	}

	l, ok := c.List(listID)
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *listService) coordinator(account string) (*coordinator.Coordinator, error) {
	c, ok := s.registry.Get(account)
	if !ok {
		return nil, fmt.Errorf("account %q: %w", account, apierrors.ErrNotFound)
	}
	return c, nil
}

func validateListID(listID int64) error {
	if listID <= 0 {
		return fmt.Errorf("%w: list id must be a positive integer, got %d", ErrInvalidInput, listID)
	}
	return nil
}

func validateIDs(listID, itemID int64) error {
	if err := validateListID(listID); err != nil {
		return err
	}
	if itemID <= 0 {
		return fmt.Errorf("%w: item id must be a positive integer, got %d", ErrInvalidInput, itemID)
	}
	return nil
}
