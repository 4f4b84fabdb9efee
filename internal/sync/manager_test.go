package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/listonic/mocks"
	"github.com/stacklok/listonic-sync/internal/lists"
)

const groceriesPayload = `[
	{"Id": 123, "Name": "Groceries", "Items": [
		{"Id": 1, "Name": "Milk", "Checked": 0},
		{"Id": 2, "Name": "Eggs", "Checked": 1}
	]},
	{"Id": 456, "Name": "Hardware", "IsArchived": true}
]`

func TestNewDefaultSyncManager(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	manager := NewDefaultSyncManager(mocks.NewMockAPI(ctrl))

	assert.NotNil(t, manager)
	assert.IsType(t, &defaultSyncManager{}, manager)
}

func TestDefaultSyncManager_PerformSync(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().FetchLists(gomock.Any()).Return([]byte(groceriesPayload), nil)

	result, err := NewDefaultSyncManager(api).PerformSync(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.ListCount)
	assert.Equal(t, 2, result.ItemCount)
	assert.Len(t, result.Hash, 64)

	groceries := result.Lists[123]
	assert.Equal(t, "Groceries", groceries.Name)
	assert.Equal(t, []lists.Item{
		{ID: 1, Name: "Milk", IsChecked: false},
		{ID: 2, Name: "Eggs", IsChecked: true},
	}, groceries.Items)
	assert.True(t, result.Lists[456].IsArchived)
	assert.NotNil(t, result.Lists[456].Items)
}

func TestDefaultSyncManager_PerformSync_HashIsStable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().FetchLists(gomock.Any()).Return([]byte(groceriesPayload), nil)
	// Same graph, different field order and casing
	api.EXPECT().FetchLists(gomock.Any()).Return([]byte(`{"lists": [
		{"name": "Hardware", "id": 456, "archived": 1},
		{"items": [{"id": 1, "name": "Milk"}, {"is_checked": true, "name": "Eggs", "id": 2}], "id": 123, "name": "Groceries"}
	]}`), nil)

	manager := NewDefaultSyncManager(api)
	first, err := manager.PerformSync(context.Background())
	require.NoError(t, err)
	second, err := manager.PerformSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
}

func TestDefaultSyncManager_PerformSync_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		payload   string
		remoteErr error
		check     func(t *testing.T, err error)
	}{
		{
			name:      "auth error passes through",
			remoteErr: apierrors.NewAuthError("rejected", nil),
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, apierrors.IsAuth(err))
			},
		},
		{
			name:      "transient error passes through",
			remoteErr: apierrors.NewTransientError("timeout", nil),
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, apierrors.IsTransient(err))
			},
		},
		{
			name:    "malformed payload is transient",
			payload: `{"lists": [`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, apierrors.IsTransient(err))
				assert.True(t, errors.Is(err, lists.ErrMalformedPayload))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			api := mocks.NewMockAPI(ctrl)
			api.EXPECT().FetchLists(gomock.Any()).Return([]byte(tt.payload), tt.remoteErr)

			result, err := NewDefaultSyncManager(api).PerformSync(context.Background())

			require.Error(t, err)
			assert.Nil(t, result)
			tt.check(t, err)
		})
	}
}

func TestDefaultSyncManager_SyncList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		payload   string
		wantFound bool
		wantErr   bool
		wantName  string
	}{
		{
			name:      "bare list",
			payload:   `{"Id": 123, "Name": "Weekly", "Items": []}`,
			wantFound: true,
			wantName:  "Weekly",
		},
		{
			name:      "wrapped list",
			payload:   `{"list": {"id": 123, "name": "Weekly"}}`,
			wantFound: true,
			wantName:  "Weekly",
		},
		{
			name:      "no valid id",
			payload:   `{"Name": "Weekly"}`,
			wantFound: false,
		},
		{
			name:    "different list returned",
			payload: `{"Id": 999, "Name": "Other"}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			payload: `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			api := mocks.NewMockAPI(ctrl)
			api.EXPECT().FetchList(gomock.Any(), int64(123)).Return([]byte(tt.payload), nil)

			list, found, err := NewDefaultSyncManager(api).SyncList(context.Background(), 123)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierrors.IsTransient(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, int64(123), list.ID)
				assert.Equal(t, tt.wantName, list.Name)
			}
		})
	}
}

func TestDefaultSyncManager_SyncList_RemoteError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().FetchList(gomock.Any(), int64(7)).Return(nil, apierrors.FromStatus(404, "http://x/lists/7", "gone"))

	_, found, err := NewDefaultSyncManager(api).SyncList(context.Background(), 7)

	require.Error(t, err)
	assert.False(t, found)
	assert.True(t, apierrors.IsRequest(err))
}

func TestHashLists(t *testing.T) {
	t.Parallel()

	empty, err := HashLists(nil)
	require.NoError(t, err)
	assert.Len(t, empty, 64)

	one, err := HashLists(map[int64]lists.List{1: {ID: 1, Name: "A"}})
	require.NoError(t, err)
	assert.NotEqual(t, empty, one)

	renamed, err := HashLists(map[int64]lists.List{1: {ID: 1, Name: "B"}})
	require.NoError(t, err)
	assert.NotEqual(t, one, renamed)
}
