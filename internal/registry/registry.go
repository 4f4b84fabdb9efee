package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/sync/coordinator"
)

// ErrAlreadyRegistered is returned when an account already has a live coordinator
var ErrAlreadyRegistered = errors.New("account already registered")

type entry struct {
	id          string
	coordinator *coordinator.Coordinator
}

// Registry tracks the live coordinators of the process
type Registry struct {
	mu     sync.RWMutex
	byName map[string]entry
}

// New creates an empty registry
func New() *Registry {
	return &Registry{byName: make(map[string]entry)}
}

// Register adds a coordinator and returns its instance id
func (r *Registry) Register(c *coordinator.Coordinator) (string, error) {
	if c == nil {
		return "", errors.New("coordinator is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[c.Name()]; exists {
		return "", fmt.Errorf("%w: %s", ErrAlreadyRegistered, c.Name())
	}

	id := uuid.NewString()
	r.byName[c.Name()] = entry{id: id, coordinator: c}

	slog.Debug("Coordinator registered", "account", c.Name(), "instance_id", id)
	return id, nil
}

// Deregister removes the coordinator of an account. It reports whether one was removed.
func (r *Registry) Deregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.byName[name]
	if !exists {
		return false
	}
	delete(r.byName, name)

	slog.Debug("Coordinator deregistered", "account", name, "instance_id", e.id)
	return true
}

// Get returns the coordinator of an account
func (r *Registry) Get(name string) (*coordinator.Coordinator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byName[name]
	return e.coordinator, ok
}

// InstanceID returns the id assigned to an account's coordinator at registration
func (r *Registry) InstanceID(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byName[name]
	return e.id, ok
}

// All returns the live coordinators ordered by account name
func (r *Registry) All() []*coordinator.Coordinator {
	r.mu.RLock()
	all := make([]*coordinator.Coordinator, 0, len(r.byName))
	for _, e := range r.byName {
		all = append(all, e.coordinator)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *coordinator.Coordinator) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return all
}

// Len returns the number of live coordinators
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// FindByList returns the coordinator whose cached data contains the list.
// When several accounts see the same shared list, the first by account name wins.
func (r *Registry) FindByList(listID int64) (*coordinator.Coordinator, error) {
	for _, c := range r.All() {
		if c.Contains(listID) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("list %d is not cached by any account: %w", listID, apierrors.ErrNotFound)
}
