package coordinator

import (
	"log/slog"
	"slices"
	"time"

	"github.com/stacklok/listonic-sync/internal/lists"
	"github.com/stacklok/listonic-sync/internal/status"
)

// ClientState reports token presence, never token values
type ClientState struct {
	HasToken        bool `json:"has_token"`
	HasRefreshToken bool `json:"has_refresh_token"`
}

// Snapshot is a point-in-time copy of the coordinator state for diagnostics
type Snapshot struct {
	Client                ClientState          `json:"client"`
	Data                  map[int64]lists.List `json:"data"`
	LastUpdateSuccess     bool                 `json:"last_update_success"`
	LastUpdateSuccessTime *time.Time           `json:"last_update_success_time"`
	UpdateIntervalSeconds int64                `json:"update_interval_seconds"`
}

// AddListener registers a callback run after every replacement of the cached data.
// Callbacks run synchronously after the operation lock is released. The returned
// function removes the listener.
func (c *Coordinator) AddListener(listener func()) (remove func()) {
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Coordinator) notify() {
	c.listenersMu.Lock()
	ids := make([]uint64, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	callbacks := make([]func(), 0, len(ids))
	for _, id := range ids {
		callbacks = append(callbacks, c.listeners[id])
	}
	c.listenersMu.Unlock()

	for _, callback := range callbacks {
		c.safeCall(callback)
	}
}

func (c *Coordinator) safeCall(callback func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Listener panicked", "account", c.name, "panic", r)
		}
	}()
	callback()
}

// Data returns a deep copy of the cached list graph
func (c *Coordinator) Data() map[int64]lists.List {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lists.CloneAll(c.data)
}

// List returns a copy of one cached list
func (c *Coordinator) List(listID int64) (lists.List, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.data[listID]
	if !ok {
		return lists.List{}, false
	}
	return l.Clone(), true
}

// Contains reports whether the list id is in the cached data
func (c *Coordinator) Contains(listID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[listID]
	return ok
}

// LastUpdateSuccess reports whether the last poll succeeded
func (c *Coordinator) LastUpdateSuccess() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdateSuccess
}

// LastUpdateSuccessTime returns the time of the last successful poll, nil before the first
func (c *Coordinator) LastUpdateSuccessTime() *time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastUpdateSuccessTime == nil {
		return nil
	}
	t := *c.lastUpdateSuccessTime
	return &t
}

// LastError returns the error of the last failed poll, nil after a success
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// NeedsReauth reports whether credentials were rejected
func (c *Coordinator) NeedsReauth() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.needsReauth
}

// Status returns a copy of the current sync status
func (c *Coordinator) Status() *status.SyncStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.syncStatus
	return &s
}

// Snapshot returns the diagnostics view of the coordinator. It never carries credentials.
func (c *Coordinator) Snapshot() Snapshot {
	var client ClientState
	if c.credentials != nil {
		client = ClientState{
			HasToken:        c.credentials.HasToken(),
			HasRefreshToken: c.credentials.HasRefreshToken(),
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var successTime *time.Time
	if c.lastUpdateSuccessTime != nil {
		t := *c.lastUpdateSuccessTime
		successTime = &t
	}

	return Snapshot{
		Client:                client,
		Data:                  lists.CloneAll(c.data),
		LastUpdateSuccess:     c.lastUpdateSuccess,
		LastUpdateSuccessTime: successTime,
		UpdateIntervalSeconds: int64(c.interval / time.Second),
	}
}
