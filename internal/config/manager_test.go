package config

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchedYAML = `remote:
  clientID: listonicv2
accounts:
  - name: home
    email: user@example.com
    syncPolicy:
      interval: 45s
`

func TestNewManager(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		manager, err := NewManager(writeConfig(t, minimalYAML))
		require.NoError(t, err)
		t.Cleanup(func() { assert.NoError(t, manager.Close()) })

		cfg := manager.GetConfig()
		require.Len(t, cfg.Accounts, 1)
		assert.Equal(t, "home", cfg.Accounts[0].Name)

		entry, ok := manager.AccountEntry("home")
		require.True(t, ok)
		assert.Equal(t, "user@example.com", entry["email"])
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		_, err := NewManager(writeConfig(t, "accounts: []\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load initial configuration")
	})
}

func TestReloadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, minimalYAML)
	manager, err := NewManager(path)
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		previous *Config
		current  *Config
	)
	manager.OnChange(func(p, c *Config) {
		mu.Lock()
		defer mu.Unlock()
		previous, current = p, c
	})

	require.NoError(t, os.WriteFile(path, []byte(watchedYAML), 0600))
	require.NoError(t, manager.ReloadConfig())

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, previous)
	require.NotNil(t, current)
	assert.Equal(t, DefaultInterval, previous.Interval(previous.Accounts[0]))
	assert.Equal(t, 45*time.Second, current.Interval(current.Accounts[0]))
	assert.Equal(t, 45*time.Second, manager.GetConfig().Interval(manager.GetConfig().Accounts[0]))
}

func TestReloadConfigFailureKeepsPrevious(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, minimalYAML)
	manager, err := NewManager(path)
	require.NoError(t, err)

	called := false
	manager.OnChange(func(_, _ *Config) { called = true })

	require.NoError(t, os.WriteFile(path, []byte("invalid: [yaml"), 0600))
	require.Error(t, manager.ReloadConfig())

	assert.False(t, called)
	assert.Equal(t, "home", manager.GetConfig().Accounts[0].Name)
}

func TestGetConfigConcurrent(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, minimalYAML)
	manager, err := NewManager(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				cfg := manager.GetConfig()
				assert.NotEmpty(t, cfg.Accounts)
			}
		}()
	}
	for range 5 {
		assert.NoError(t, manager.ReloadConfig())
	}
	wg.Wait()
}

func TestWatchConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, minimalYAML)
	manager, err := NewManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, manager.Close()) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- manager.WatchConfig(ctx)
	}()

	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(watchedYAML), 0600))

	require.Eventually(t, func() bool {
		cfg := manager.GetConfig()
		return cfg.Interval(cfg.Accounts[0]) == 45*time.Second
	}, 3*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-watchErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchConfig did not stop after context cancellation")
	}
}

func TestWatchConfigAlreadyWatching(t *testing.T) {
	t.Parallel()

	manager, err := NewManager(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, manager.Close()) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = manager.WatchConfig(ctx) }()

	require.Eventually(t, func() bool {
		err := manager.WatchConfig(ctx)
		return err != nil && err.Error() == "config watcher is already running"
	}, 2*time.Second, 20*time.Millisecond)
}
