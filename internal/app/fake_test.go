package app

import (
	"context"
	"sync"
	"time"

	"github.com/stacklok/listonic-sync/internal/config"
	"github.com/stacklok/listonic-sync/internal/listonic"
	"github.com/stacklok/listonic-sync/internal/sync/coordinator"
)

const groceriesPayload = `{"lists": [
	{"id": 123, "name": "Groceries", "items": [{"id": 1, "name": "Milk"}, {"id": 2, "name": "Eggs", "is_checked": true}]},
	{"id": 456, "name": "Hardware", "archived": 1}
]}`

// fakeAPI serves a fixed list graph; fail decides the outcome of the n-th fetch
type fakeAPI struct {
	mu      sync.Mutex
	fetches int
	fail    func(n int) error
}

func (f *fakeAPI) FetchLists(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fail != nil {
		if err := f.fail(f.fetches); err != nil {
			return nil, err
		}
	}
	return []byte(groceriesPayload), nil
}

func (*fakeAPI) FetchList(_ context.Context, _ int64) ([]byte, error) {
	return []byte(`{"id": 123, "name": "Groceries", "items": []}`), nil
}

func (*fakeAPI) RenameList(_ context.Context, _ int64, _ string) error { return nil }

func (*fakeAPI) AddItem(_ context.Context, _ int64, _ string) ([]byte, error) {
	return []byte(`{"id": 3, "name": "Bread"}`), nil
}

func (*fakeAPI) RemoveItem(_ context.Context, _, _ int64) error { return nil }

func (*fakeAPI) SetItemChecked(_ context.Context, _, _ int64, _ bool) error { return nil }

func (f *fakeAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeCredentials struct{}

func (fakeCredentials) HasToken() bool        { return true }
func (fakeCredentials) HasRefreshToken() bool { return true }

// fakeFactory hands out one fakeAPI per account name
type fakeFactory struct {
	mu   sync.Mutex
	apis map[string]*fakeAPI
	fail func(account string, n int) error
}

func newFakeFactory(fail func(account string, n int) error) *fakeFactory {
	return &fakeFactory{apis: make(map[string]*fakeAPI), fail: fail}
}

func (f *fakeFactory) build(_ config.RemoteConfig, acc config.AccountConfig) (listonic.API, coordinator.CredentialState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	api := &fakeAPI{}
	if f.fail != nil {
		name := acc.Name
		api.fail = func(n int) error { return f.fail(name, n) }
	}
	f.apis[acc.Name] = api
	return api, fakeCredentials{}, nil
}

func (f *fakeFactory) api(name string) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apis[name]
}

var fastRetry = SetupRetry{
	InitialInterval: 5 * time.Millisecond,
	MaxInterval:     20 * time.Millisecond,
}

func testConfig(accounts ...string) *config.Config {
	cfg := &config.Config{
		Remote:     config.RemoteConfig{ClientID: "listonicv2"},
		SyncPolicy: &config.SyncPolicyConfig{Interval: "10s"},
	}
	for _, name := range accounts {
		cfg.Accounts = append(cfg.Accounts, config.AccountConfig{Name: name, Email: name + "@example.com"})
	}
	return cfg
}
