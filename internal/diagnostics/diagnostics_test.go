package diagnostics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/listonic-sync/internal/lists"
	"github.com/stacklok/listonic-sync/internal/sync/coordinator"
)

func TestRedact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entry    map[string]any
		expected map[string]any
	}{
		{
			name:  "nil entry still reports redacted credentials",
			entry: nil,
			expected: map[string]any{
				"email":    Redacted,
				"password": Redacted,
			},
		},
		{
			name: "allow-listed fields are kept",
			entry: map[string]any{
				"name":         "home",
				"email":        "user@example.com",
				"password":     "hunter2",
				"interval":     "30s",
				"keyring":      true,
				"passwordFile": "/run/secrets/listonic",
			},
			expected: map[string]any{
				"name":         "home",
				"email":        Redacted,
				"password":     Redacted,
				"interval":     "30s",
				"keyring":      true,
				"passwordFile": Redacted,
			},
		},
		{
			name:  "unknown fields are redacted",
			entry: map[string]any{"client_secret": "abc", "token": "xyz"},
			expected: map[string]any{
				"client_secret": Redacted,
				"token":         Redacted,
				"email":         Redacted,
				"password":      Redacted,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Redact(tt.entry))
		})
	}
}

func TestRedact_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	entry := map[string]any{"email": "user@example.com"}
	_ = Redact(entry)
	assert.Equal(t, "user@example.com", entry["email"])
}

func TestBuild(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snapshot := coordinator.Snapshot{
		Client: coordinator.ClientState{HasToken: true, HasRefreshToken: true},
		Data: map[int64]lists.List{
			456: {ID: 456, Name: "Hardware", Items: []lists.Item{}, IsArchived: true},
			123: {ID: 123, Name: "Groceries", Items: []lists.Item{
				{ID: 1, Name: "Milk"},
				{ID: 2, Name: "Eggs", IsChecked: true},
			}},
		},
		LastUpdateSuccess:     true,
		LastUpdateSuccessTime: &updated,
		UpdateIntervalSeconds: 30,
	}

	report := Build(map[string]any{"name": "home", "email": "user@example.com"}, snapshot)

	assert.Equal(t, Redacted, report.ConfigEntry["email"])
	assert.Equal(t, Redacted, report.ConfigEntry["password"])
	assert.Equal(t, "home", report.ConfigEntry["name"])

	assert.Equal(t, 2, report.Lists.Count)
	assert.Equal(t, []ListDetail{
		{ID: 123, Name: "Groceries", ItemCount: 2, CheckedCount: 1, UncheckedCount: 1},
		{ID: 456, Name: "Hardware", IsArchived: true},
	}, report.Lists.Details)

	assert.Equal(t, CoordSection{
		LastUpdateSuccess:     true,
		LastUpdateTime:        &updated,
		UpdateIntervalSeconds: 30,
	}, report.Coordinator)
	assert.Equal(t, AuthSection{HasToken: true, HasRefreshToken: true}, report.Authentication)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"list_id":123`)
	assert.Contains(t, string(data), `"update_interval_seconds":30}`)
}

func TestBuild_EmptyData(t *testing.T) {
	t.Parallel()

	report := Build(nil, coordinator.Snapshot{})

	assert.Equal(t, 0, report.Lists.Count)
	assert.NotNil(t, report.Lists.Details)
	assert.Empty(t, report.Lists.Details)
	assert.Nil(t, report.Coordinator.LastUpdateTime)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"details":[]`)
	assert.Contains(t, string(data), `"last_update_time":null`)
	assert.NotContains(t, string(data), "user@")
}
