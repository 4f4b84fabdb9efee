package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	listonicmocks "github.com/stacklok/listonic-sync/internal/listonic/mocks"
	"github.com/stacklok/listonic-sync/internal/lists"
	pkgsync "github.com/stacklok/listonic-sync/internal/sync"
	"github.com/stacklok/listonic-sync/internal/sync/coordinator"
	syncmocks "github.com/stacklok/listonic-sync/internal/sync/mocks"
)

// newCoordinator returns a coordinator whose cache holds the given list ids
func newCoordinator(t *testing.T, name string, listIDs ...int64) *coordinator.Coordinator {
	t.Helper()

	ctrl := gomock.NewController(t)
	manager := syncmocks.NewMockManager(ctrl)

	graph := make(map[int64]lists.List, len(listIDs))
	for _, id := range listIDs {
		graph[id] = lists.List{ID: id, Name: name, Items: []lists.Item{}}
	}
	manager.EXPECT().PerformSync(gomock.Any()).Return(&pkgsync.Result{Lists: graph, ListCount: len(graph)}, nil)

	c := coordinator.New(name, listonicmocks.NewMockAPI(ctrl), manager)
	require.NoError(t, c.FirstRefresh(context.Background()))
	return c
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := New()
	home := newCoordinator(t, "home", 1)

	id, err := reg.Register(home)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	got, ok := reg.Get("home")
	require.True(t, ok)
	assert.Same(t, home, got)

	gotID, ok := reg.InstanceID("home")
	require.True(t, ok)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 1, reg.Len())

	_, ok = reg.Get("work")
	assert.False(t, ok)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	t.Parallel()

	reg := New()
	_, err := reg.Register(nil)
	assert.Error(t, err)

	_, err = reg.Register(newCoordinator(t, "home"))
	require.NoError(t, err)

	_, err = reg.Register(newCoordinator(t, "home"))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Deregister(t *testing.T) {
	t.Parallel()

	reg := New()
	_, err := reg.Register(newCoordinator(t, "home", 1))
	require.NoError(t, err)

	assert.True(t, reg.Deregister("home"))
	assert.False(t, reg.Deregister("home"))
	assert.Equal(t, 0, reg.Len())

	_, err = reg.FindByList(1)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestRegistry_All_SortedByName(t *testing.T) {
	t.Parallel()

	reg := New()
	for _, name := range []string{"work", "cabin", "home"} {
		_, err := reg.Register(newCoordinator(t, name))
		require.NoError(t, err)
	}

	var names []string
	for _, c := range reg.All() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"cabin", "home", "work"}, names)
}

func TestRegistry_FindByList(t *testing.T) {
	t.Parallel()

	reg := New()
	home := newCoordinator(t, "home", 123, 456)
	work := newCoordinator(t, "work", 789)
	shared := newCoordinator(t, "aaa-shared", 456)
	for _, c := range []*coordinator.Coordinator{home, work, shared} {
		_, err := reg.Register(c)
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		listID  int64
		want    *coordinator.Coordinator
		wantErr bool
	}{
		{name: "owned by home", listID: 123, want: home},
		{name: "owned by work", listID: 789, want: work},
		{name: "shared list resolves to first account by name", listID: 456, want: shared},
		{name: "unknown list", listID: 999, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reg.FindByList(tt.listID)
			if tt.wantErr {
				assert.ErrorIs(t, err, apierrors.ErrNotFound)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := New()
	coordinators := make([]*coordinator.Coordinator, 0, 8)
	for i := range 8 {
		coordinators = append(coordinators, newCoordinator(t, string(rune('a'+i)), int64(i+1)))
	}

	var wg sync.WaitGroup
	for _, c := range coordinators {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := reg.Register(c)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.FindByList(1)
			_ = reg.All()
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, reg.Len())
}
