package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/stacklok/listonic-sync/internal/listonic"
	"github.com/stacklok/listonic-sync/internal/lists"
	"github.com/stacklok/listonic-sync/internal/status"
	pkgsync "github.com/stacklok/listonic-sync/internal/sync"
	"github.com/stacklok/listonic-sync/internal/telemetry"
)

var (
	// ErrNotReady is returned when the first refresh fails for a reason other than
	// rejected credentials. Setup may be retried later.
	ErrNotReady = errors.New("coordinator not ready")

	// ErrAuthFailed is returned when credentials are rejected. The account must be
	// re-authenticated before polling can resume.
	ErrAuthFailed = errors.New("authentication failed, re-authentication required")
)

// CredentialState reports what the auth session currently holds
type CredentialState interface {
	HasToken() bool
	HasRefreshToken() bool
}

// AuthFailureHandler is invoked once credentials have been rejected
type AuthFailureHandler func(account string, err error)

// Coordinator owns the cached list graph of one account
type Coordinator struct {
	name        string
	client      listonic.API
	manager     pkgsync.Manager
	credentials CredentialState
	detector    pkgsync.DataChangeDetector

	persistence   status.StatusPersistence
	syncMetrics   *telemetry.SyncMetrics
	onAuthFailure AuthFailureHandler
	now           func() time.Time

	// opMu serializes every data-modifying remote round trip
	opMu sync.Mutex

	// mu guards the fields below
	mu                    sync.RWMutex
	data                  map[int64]lists.List
	lastUpdateSuccess     bool
	lastUpdateSuccessTime *time.Time
	lastErr               error
	interval              time.Duration
	needsReauth           bool
	syncStatus            status.SyncStatus

	listenersMu  sync.Mutex
	listeners    map[uint64]func()
	nextListener uint64

	// Lifecycle management
	loopMu     sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
	reset      chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*Coordinator)

// WithInterval sets the initial poll interval
func WithInterval(interval time.Duration) Option {
	return func(c *Coordinator) {
		c.interval = normalizeInterval(interval)
	}
}

// WithCredentialState exposes token presence in snapshots
func WithCredentialState(credentials CredentialState) Option {
	return func(c *Coordinator) {
		c.credentials = credentials
	}
}

// WithStatusPersistence persists the sync status after every cycle
func WithStatusPersistence(persistence status.StatusPersistence) Option {
	return func(c *Coordinator) {
		c.persistence = persistence
	}
}

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *Coordinator) {
		c.syncMetrics = metrics
	}
}

// WithAuthFailureHandler sets the callback run when credentials are rejected.
// It runs on its own goroutine so it may call Stop.
func WithAuthFailureHandler(handler AuthFailureHandler) Option {
	return func(c *Coordinator) {
		c.onAuthFailure = handler
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a coordinator for the named account. The cache starts empty; call
// FirstRefresh before exposing the coordinator.
func New(name string, client listonic.API, manager pkgsync.Manager, opts ...Option) *Coordinator {
	c := &Coordinator{
		name:      name,
		client:    client,
		manager:   manager,
		detector:  pkgsync.DefaultDataChangeDetector{},
		now:       time.Now,
		data:      make(map[int64]lists.List),
		interval:  DefaultUpdateInterval,
		listeners: make(map[uint64]func()),
		reset:     make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.syncStatus.SyncSchedule = c.interval.String()

	return c
}

// Name returns the account name
func (c *Coordinator) Name() string {
	return c.name
}

// Start begins background polling. It returns immediately; calling it on a running
// coordinator, or on one that needs re-authentication, does nothing.
func (c *Coordinator) Start(ctx context.Context) {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if c.cancelFunc != nil {
		return
	}
	if c.NeedsReauth() {
		slog.Warn("Not starting polling, re-authentication required", "account", c.name)
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel
	c.done = make(chan struct{})

	slog.Info("Starting background polling", "account", c.name, "interval", c.Interval())
	go c.run(loopCtx, c.done)
}

// Stop cancels the polling loop and waits for it to exit. A poll in flight ends at
// its own request timeout. Stop before Start is a no-op.
func (c *Coordinator) Stop() {
	c.loopMu.Lock()
	cancel, done := c.cancelFunc, c.done
	c.cancelFunc, c.done = nil, nil
	c.loopMu.Unlock()

	if cancel == nil {
		return
	}

	slog.Info("Stopping background polling", "account", c.name)
	cancel()
	<-done
}

// Running reports whether the polling loop is active
func (c *Coordinator) Running() bool {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if c.done == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Interval returns the poll interval in effect
func (c *Coordinator) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

// SetInterval changes the poll interval. A running loop picks it up without
// resetting the cached data.
func (c *Coordinator) SetInterval(interval time.Duration) {
	interval = normalizeInterval(interval)

	c.mu.Lock()
	changed := c.interval != interval
	c.interval = interval
	c.syncStatus.SyncSchedule = interval.String()
	c.mu.Unlock()

	if !changed {
		return
	}

	slog.Info("Update interval changed", "account", c.name, "interval", interval)
	select {
	case c.reset <- struct{}{}:
	default:
	}
}

func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && errors.Is(err, ErrAuthFailed) {
				return
			}
		case <-c.reset:
			ticker.Reset(c.Interval())
		case <-ctx.Done():
			return
		}
	}
}

// halt cancels the loop without waiting; used from inside a poll
func (c *Coordinator) halt() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
}
