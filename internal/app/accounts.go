package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/listonic-sync/internal/auth"
	"github.com/stacklok/listonic-sync/internal/config"
	"github.com/stacklok/listonic-sync/internal/listonic"
	"github.com/stacklok/listonic-sync/internal/registry"
	"github.com/stacklok/listonic-sync/internal/status"
	pkgsync "github.com/stacklok/listonic-sync/internal/sync"
	"github.com/stacklok/listonic-sync/internal/sync/coordinator"
	"github.com/stacklok/listonic-sync/internal/telemetry"
)

const (
	defaultSetupInitialInterval = 5 * time.Second
	defaultSetupMaxInterval     = 5 * time.Minute
	defaultSetupMaxElapsed      = 0 // retry until cancelled
)

// ClientFactory builds the remote client of an account together with the
// credential state diagnostics report on
type ClientFactory func(remote config.RemoteConfig, acc config.AccountConfig) (listonic.API, coordinator.CredentialState, error)

// NewClientFactory returns the production factory: an auth session per account
// feeding an HTTP client
func NewClientFactory(tp trace.TracerProvider, metrics *telemetry.RemoteMetrics) ClientFactory {
	return func(remote config.RemoteConfig, acc config.AccountConfig) (listonic.API, coordinator.CredentialState, error) {
		password, err := acc.GetPassword()
		if err != nil {
			return nil, nil, err
		}
		secret, err := remote.GetClientSecret()
		if err != nil {
			return nil, nil, err
		}

		session := auth.NewSession(auth.Config{
			TokenURL:     remote.GetTokenURL(),
			ClientID:     remote.ClientID,
			ClientSecret: secret,
			RedirectURL:  remote.GetRedirectURL(),
			Email:        acc.Email,
			Password:     password,
		}, auth.WithHTTPClient(&http.Client{Timeout: remote.GetTimeout()}))

		opts := []listonic.Option{
			listonic.WithTimeout(remote.GetTimeout()),
			listonic.WithMetrics(metrics),
		}
		if tp != nil {
			opts = append(opts, listonic.WithTracerProvider(tp))
		}

		return listonic.NewClient(remote.GetAPIURL(), session, opts...), session, nil
	}
}

// SetupRetry controls how a failed first refresh is retried
type SetupRetry struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// MaxElapsed of zero retries until the context is cancelled
	MaxElapsed time.Duration
}

// DefaultSetupRetry is used when no retry policy is configured
var DefaultSetupRetry = SetupRetry{
	InitialInterval: defaultSetupInitialInterval,
	MaxInterval:     defaultSetupMaxInterval,
	MaxElapsed:      defaultSetupMaxElapsed,
}

// Accounts manages the lifecycle of every configured account: setup with a
// mandatory first refresh, registration, option updates and teardown
type Accounts struct {
	registry    *registry.Registry
	factory     ClientFactory
	persistence status.StatusPersistence
	syncMetrics *telemetry.SyncMetrics
	retry       SetupRetry

	mu      sync.Mutex
	pending map[string]context.CancelFunc
	wg      sync.WaitGroup

	// lifecycleMu orders registration and start against teardown
	lifecycleMu sync.Mutex
}

// NewAccounts creates an account manager
func NewAccounts(
	reg *registry.Registry,
	factory ClientFactory,
	persistence status.StatusPersistence,
	syncMetrics *telemetry.SyncMetrics,
	retry SetupRetry,
) *Accounts {
	return &Accounts{
		registry:    reg,
		factory:     factory,
		persistence: persistence,
		syncMetrics: syncMetrics,
		retry:       retry,
		pending:     make(map[string]context.CancelFunc),
	}
}

// SetupAccount builds the coordinator of an account, performs its first refresh
// and, on success, registers it and starts polling. A first refresh that fails
// for any reason other than rejected credentials is retried with exponential
// backoff. Rejected credentials abort setup immediately. Polling outlives ctx
// and runs until TeardownAccount.
func (a *Accounts) SetupAccount(ctx context.Context, cfg *config.Config, acc config.AccountConfig) error {
	if _, exists := a.registry.Get(acc.Name); exists {
		return fmt.Errorf("%w: %s", registry.ErrAlreadyRegistered, acc.Name)
	}

	client, credentials, err := a.factory(cfg.Remote, acc)
	if err != nil {
		return fmt.Errorf("failed to create client for account %s: %w", acc.Name, err)
	}

	opts := []coordinator.Option{
		coordinator.WithInterval(cfg.Interval(acc)),
		coordinator.WithAuthFailureHandler(onAuthFailure),
		coordinator.WithSyncMetrics(a.syncMetrics),
	}
	if credentials != nil {
		opts = append(opts, coordinator.WithCredentialState(credentials))
	}
	if a.persistence != nil {
		opts = append(opts, coordinator.WithStatusPersistence(a.persistence))
	}

	c := coordinator.New(acc.Name, client, pkgsync.NewDefaultSyncManager(client), opts...)

	if err := a.firstRefresh(ctx, c); err != nil {
		return err
	}

	a.lifecycleMu.Lock()
	instanceID, err := a.registry.Register(c)
	if err != nil {
		a.lifecycleMu.Unlock()
		return err
	}
	if err := ctx.Err(); err != nil {
		a.registry.Deregister(acc.Name)
		a.lifecycleMu.Unlock()
		return err
	}
	c.Start(context.WithoutCancel(ctx))
	a.lifecycleMu.Unlock()

	slog.Info("Account set up",
		"account", acc.Name,
		"instance_id", instanceID,
		"lists", len(c.Data()),
		"interval", c.Interval(),
	)
	return nil
}

func (a *Accounts) firstRefresh(ctx context.Context, c *coordinator.Coordinator) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.retry.InitialInterval
	b.MaxInterval = a.retry.MaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.FirstRefresh(ctx)
		if errors.Is(err, coordinator.ErrAuthFailed) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(a.retry.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Account not ready, retrying setup",
				"account", c.Name(),
				"retry_in", next,
				"error", err,
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("setup of account %s failed: %w", c.Name(), err)
	}
	return nil
}

// StartAccount runs SetupAccount in the background. A pending setup is
// cancelled by TeardownAccount or Shutdown.
func (a *Accounts) StartAccount(ctx context.Context, cfg *config.Config, acc config.AccountConfig) {
	setupCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	if _, busy := a.pending[acc.Name]; busy {
		a.mu.Unlock()
		cancel()
		slog.Debug("Account setup already in progress", "account", acc.Name)
		return
	}
	a.pending[acc.Name] = cancel
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.clearPending(acc.Name)

		if err := a.SetupAccount(setupCtx, cfg, acc); err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Debug("Account setup cancelled", "account", acc.Name)
				return
			}
			slog.Error("Account setup failed", "account", acc.Name, "error", err)
		}
	}()
}

func (a *Accounts) clearPending(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cancel, ok := a.pending[name]; ok {
		cancel()
		delete(a.pending, name)
	}
}

// Pending reports whether a setup of the account is in progress
func (a *Accounts) Pending(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[name]
	return ok
}

// TeardownAccount cancels a pending setup, deregisters the account and stops
// its polling. Reports whether anything was torn down.
func (a *Accounts) TeardownAccount(name string) bool {
	a.mu.Lock()
	cancel, pending := a.pending[name]
	a.mu.Unlock()
	if pending {
		cancel()
	}

	a.lifecycleMu.Lock()
	c, ok := a.registry.Get(name)
	if ok {
		a.registry.Deregister(name)
	}
	a.lifecycleMu.Unlock()

	if !ok {
		return pending
	}
	c.Stop()

	slog.Info("Account torn down", "account", name)
	return true
}

// HandleOptionsUpdate applies a configuration change. Removed accounts are torn
// down and new accounts are set up. An account is set up again with the new
// configuration when its credentials or the remote settings changed, when it
// needs re-authentication or has no live setup, or when its interval changed
// while its setup is still retrying. Otherwise an interval change reprograms
// the running timer.
func (a *Accounts) HandleOptionsUpdate(ctx context.Context, previous, current *config.Config) {
	remoteChanged := previous.Remote != current.Remote

	for _, old := range previous.Accounts {
		if _, still := current.Account(old.Name); !still {
			a.TeardownAccount(old.Name)
		}
	}

	for _, acc := range current.Accounts {
		old, existed := previous.Account(acc.Name)
		if !existed {
			a.StartAccount(ctx, current, acc)
			continue
		}

		// pending is read first: a setup registers before it clears its pending slot
		interval := current.Interval(acc)
		pending := a.Pending(acc.Name)
		c, registered := a.registry.Get(acc.Name)

		switch {
		case remoteChanged || credentialsChanged(old, acc):
			a.restartAccount(ctx, current, acc)
		case registered && c.NeedsReauth():
			slog.Info("Retrying authentication after configuration change", "account", acc.Name)
			a.restartAccount(ctx, current, acc)
		case !registered && !pending:
			slog.Info("Setting up account again after configuration change", "account", acc.Name)
			a.StartAccount(ctx, current, acc)
		case pending && interval != previous.Interval(old):
			a.restartAccount(ctx, current, acc)
		case registered && interval != c.Interval():
			c.SetInterval(interval)
		}
	}
}

// restartAccount tears an account down and sets it up again with cfg
func (a *Accounts) restartAccount(ctx context.Context, cfg *config.Config, acc config.AccountConfig) {
	a.TeardownAccount(acc.Name)
	a.waitIdle(acc.Name)
	a.StartAccount(ctx, cfg, acc)
}

// waitIdle waits for a cancelled setup to release its pending slot
func (a *Accounts) waitIdle(name string) {
	for a.Pending(name) {
		time.Sleep(10 * time.Millisecond)
	}
}

// Shutdown cancels pending setups, waits for them and tears down every account
func (a *Accounts) Shutdown() {
	a.mu.Lock()
	for _, cancel := range a.pending {
		cancel()
	}
	a.mu.Unlock()

	a.wg.Wait()

	for _, c := range a.registry.All() {
		a.TeardownAccount(c.Name())
	}
}

func credentialsChanged(previous, current config.AccountConfig) bool {
	return previous.Email != current.Email ||
		previous.PasswordFile != current.PasswordFile ||
		previous.Keyring != current.Keyring
}

func onAuthFailure(account string, err error) {
	slog.Error("Credentials rejected, re-authentication required",
		"account", account,
		"error", err,
	)
}
