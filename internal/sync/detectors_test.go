package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/listonic-sync/internal/status"
)

func TestDefaultDataChangeDetector_IsDataChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		result     *Result
		syncStatus *status.SyncStatus
		expected   bool
	}{
		{
			name:     "nil result is never a change",
			result:   nil,
			expected: false,
		},
		{
			name:     "nil status means changed",
			result:   &Result{Hash: "abc"},
			expected: true,
		},
		{
			name:       "empty last hash means changed",
			result:     &Result{Hash: "abc"},
			syncStatus: &status.SyncStatus{},
			expected:   true,
		},
		{
			name:       "same hash",
			result:     &Result{Hash: "abc"},
			syncStatus: &status.SyncStatus{LastSyncHash: "abc"},
			expected:   false,
		},
		{
			name:       "different hash",
			result:     &Result{Hash: "def"},
			syncStatus: &status.SyncStatus{LastSyncHash: "abc"},
			expected:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, DefaultDataChangeDetector{}.IsDataChanged(tt.result, tt.syncStatus))
		})
	}
}
