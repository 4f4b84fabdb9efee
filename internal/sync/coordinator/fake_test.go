package coordinator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stacklok/listonic-sync/internal/lists"
	pkgsync "github.com/stacklok/listonic-sync/internal/sync"
)

// fakeRemote is an in-memory Listonic account acting as both the remote API and
// the sync manager. PerformSync reads the remote state and then waits on hold, which
// lets tests interleave a mutation with an in-flight poll.
type fakeRemote struct {
	mu    sync.Mutex
	lists map[int64]lists.List

	polls   atomic.Int32
	entered chan struct{}
	hold    chan struct{}
	err     error
}

func newFakeRemote(initial ...lists.List) *fakeRemote {
	f := &fakeRemote{lists: make(map[int64]lists.List)}
	for _, l := range initial {
		f.lists[l.ID] = l
	}
	return f
}

func (f *fakeRemote) snapshot() map[int64]lists.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lists.CloneAll(f.lists)
}

func (f *fakeRemote) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRemote) PerformSync(ctx context.Context) (*pkgsync.Result, error) {
	f.polls.Add(1)

	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	graph := f.snapshot()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	hash, err := pkgsync.HashLists(graph)
	if err != nil {
		return nil, err
	}
	return &pkgsync.Result{
		Lists:     graph,
		Hash:      hash,
		ListCount: len(graph),
		ItemCount: lists.ItemCount(graph),
	}, nil
}

func (f *fakeRemote) SyncList(_ context.Context, listID int64) (lists.List, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[listID]
	return l.Clone(), ok, nil
}

func (*fakeRemote) FetchLists(context.Context) ([]byte, error) {
	return nil, nil
}

func (*fakeRemote) FetchList(context.Context, int64) ([]byte, error) {
	return nil, nil
}

func (f *fakeRemote) RenameList(_ context.Context, listID int64, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[listID]
	l.Name = name
	f.lists[listID] = l
	return nil
}

func (f *fakeRemote) AddItem(_ context.Context, listID int64, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[listID].Clone()
	var next int64 = 1
	for _, item := range l.Items {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	l.Items = append(l.Items, lists.Item{ID: next, Name: name})
	f.lists[listID] = l
	return nil, nil
}

func (f *fakeRemote) RemoveItem(_ context.Context, listID, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[listID]
	items := make([]lists.Item, 0, len(l.Items))
	for _, item := range l.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	l.Items = items
	f.lists[listID] = l
	return nil
}

func (f *fakeRemote) SetItemChecked(_ context.Context, listID, itemID int64, checked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[listID].Clone()
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			l.Items[i].IsChecked = checked
		}
	}
	f.lists[listID] = l
	return nil
}
