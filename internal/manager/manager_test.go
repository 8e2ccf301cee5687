package manager

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/supermarkets"
)

// --- mocks ---

// mockService behaves like the API backed by an in-memory table.
type mockService struct {
	mu      sync.Mutex
	records map[int64]supermarkets.Supermarket
	nextID  int64
	calls   []string
	bodies  []supermarkets.Fields
	fail    map[string]error
	reverse bool
}

func newMockService(seed ...supermarkets.Supermarket) *mockService {
	m := &mockService{
		records: map[int64]supermarkets.Supermarket{},
		nextID:  1,
		fail:    map[string]error{},
	}
	for _, r := range seed {
		m.records[r.ID] = r
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return m
}

func (m *mockService) List(ctx context.Context) ([]supermarkets.Supermarket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "list")
	if err := m.fail["list"]; err != nil {
		return nil, err
	}
	out := make([]supermarkets.Supermarket, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if m.reverse {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockService) Create(ctx context.Context, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "create")
	m.bodies = append(m.bodies, fields)
	if err := m.fail["create"]; err != nil {
		return supermarkets.Supermarket{}, err
	}
	r := supermarkets.Supermarket{ID: m.nextID, Identifier: fields.Identifier, Name: fields.Name, URL: fields.URL}
	m.records[r.ID] = r
	m.nextID++
	return r, nil
}

func (m *mockService) Update(ctx context.Context, id int64, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "update")
	m.bodies = append(m.bodies, fields)
	if err := m.fail["update"]; err != nil {
		return supermarkets.Supermarket{}, err
	}
	now := time.Now()
	r := supermarkets.Supermarket{ID: id, Identifier: fields.Identifier, Name: fields.Name, URL: fields.URL, UpdatedAt: supermarkets.NewTimestamp(now)}
	m.records[id] = r
	return r, nil
}

func (m *mockService) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete")
	if err := m.fail["delete"]; err != nil {
		return err
	}
	delete(m.records, id)
	return nil
}

func (m *mockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type mockNavigator struct {
	path   string
	backs  int
	visits []string
}

func (n *mockNavigator) GoTo(path string) {
	n.path = path
	n.visits = append(n.visits, path)
}

func (n *mockNavigator) GoBack() {
	n.backs++
}

func answer(ok bool, asked *[]string) Confirmer {
	return ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		*asked = append(*asked, prompt)
		return ok, nil
	})
}

func ts(s string) supermarkets.Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return supermarkets.NewTimestamp(t)
}

func newTestStore(svc RecordService) *Store {
	return NewStore(svc, NewErrorChannel())
}

var errBoom = supermarkets.RequestFailed("list", errors.New("boom"))

// --- sorting ---

func TestSortPutsUpdatedFirst(t *testing.T) {
	records := []supermarkets.Supermarket{
		{ID: 1, Name: "B"},
		{ID: 2, Name: "A", UpdatedAt: ts("2024-01-01T00:00:00Z")},
	}

	sorted := Sort(records)
	require.Len(t, sorted, 2)
	assert.Equal(t, int64(2), sorted[0].ID)
	assert.Equal(t, int64(1), sorted[1].ID)
}

func TestSortOrdering(t *testing.T) {
	records := []supermarkets.Supermarket{
		{ID: 1, Name: "Zeta"},
		{ID: 2, Name: "Alpha"},
		{ID: 3, Name: "Old", UpdatedAt: ts("2023-05-01T00:00:00Z")},
		{ID: 4, Name: "Beta", UpdatedAt: ts("2024-02-01T00:00:00Z")},
		{ID: 5, Name: "Able", UpdatedAt: ts("2024-02-01T00:00:00Z")},
	}

	var ids []int64
	for _, r := range Sort(records) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, ids)

	// the input is left untouched
	assert.Equal(t, int64(1), records[0].ID)
}

// --- store ---

func TestEmptyStateOnlyAfterLoad(t *testing.T) {
	store := newTestStore(newMockService())
	view := NewListView(store, &mockNavigator{})

	assert.Equal(t, StateLoading, store.State())
	assert.False(t, view.ShowEmpty())

	require.NoError(t, view.Mount(context.Background()))
	assert.Equal(t, StateReady, store.State())
	assert.True(t, view.ShowEmpty())
}

func TestMountFailureIsReadyAndEmpty(t *testing.T) {
	svc := newMockService()
	svc.fail["list"] = errBoom
	store := newTestStore(svc)

	err := store.Mount(context.Background())
	assert.True(t, errors.Is(err, supermarkets.ErrRequestFailed))
	assert.Equal(t, StateReady, store.State())
	assert.Empty(t, store.Snapshot())
	assert.Equal(t, errBoom.Error(), store.Errors().Message())
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	svc := newMockService(supermarkets.Supermarket{ID: 1, Name: "Shop"})
	store := newTestStore(svc)
	require.NoError(t, store.Mount(context.Background()))
	before := store.Fingerprint()

	svc.fail["list"] = errBoom
	require.Error(t, store.Refresh(context.Background()))

	assert.Equal(t, before, store.Fingerprint())
	assert.Len(t, store.Snapshot(), 1)
	assert.Error(t, store.Errors().Err())

	// acknowledging clears the error without touching data
	store.Errors().Acknowledge()
	assert.NoError(t, store.Errors().Err())
	assert.Len(t, store.Snapshot(), 1)
}

func TestListIsIdempotent(t *testing.T) {
	svc := newMockService(
		supermarkets.Supermarket{ID: 1, Name: "A"},
		supermarkets.Supermarket{ID: 2, Name: "B"},
	)
	store := newTestStore(svc)
	require.NoError(t, store.Refresh(context.Background()))
	first := store.Fingerprint()

	svc.reverse = true
	require.NoError(t, store.Refresh(context.Background()))
	assert.Equal(t, first, store.Fingerprint())
	assert.ElementsMatch(t, []string{"A", "B"}, names(store.Snapshot()))
}

func TestCreateRoundTrip(t *testing.T) {
	svc := newMockService(supermarkets.Supermarket{ID: 1, Name: "Existing"})
	store := newTestStore(svc)
	require.NoError(t, store.Mount(context.Background()))
	before := store.Snapshot()

	fields := supermarkets.Fields{Identifier: "S1", Name: "Shop", URL: "http://x"}
	require.NoError(t, store.Create(context.Background(), fields))

	after := store.Snapshot()
	require.Len(t, after, len(before)+1)

	var added []supermarkets.Supermarket
	for _, r := range after {
		if r.ID != 1 {
			added = append(added, r)
		}
	}
	require.Len(t, added, 1)
	assert.NotZero(t, added[0].ID)
	assert.Equal(t, fields, added[0].Fields())
	assert.Equal(t, []string{"list", "create", "list"}, svc.Calls())
}

func TestMutationFailureStillRefreshes(t *testing.T) {
	svc := newMockService(supermarkets.Supermarket{ID: 1, Name: "Shop"})
	store := newTestStore(svc)
	require.NoError(t, store.Mount(context.Background()))

	svc.fail["update"] = supermarkets.RequestFailed("update", errors.New("conflict"))
	err := store.Update(context.Background(), 1, supermarkets.Fields{Name: "New"})
	require.Error(t, err)

	assert.Equal(t, []string{"list", "update", "list"}, svc.Calls())
	assert.Contains(t, store.Errors().Message(), "conflict")
	rec, ok := store.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Shop", rec.Name)
}

// blockingService lets a test decide when each List call returns.
type blockingService struct {
	*mockService
	mu      sync.Mutex
	pending []chan []supermarkets.Supermarket
	started chan struct{}
}

func (b *blockingService) List(ctx context.Context) ([]supermarkets.Supermarket, error) {
	ch := make(chan []supermarkets.Supermarket)
	b.mu.Lock()
	b.pending = append(b.pending, ch)
	b.mu.Unlock()
	b.started <- struct{}{}
	return <-ch, nil
}

func (b *blockingService) answer(i int, records []supermarkets.Supermarket) {
	b.mu.Lock()
	ch := b.pending[i]
	b.mu.Unlock()
	ch <- records
}

func TestStaleRefreshIsDropped(t *testing.T) {
	svc := &blockingService{
		mockService: newMockService(),
		started:     make(chan struct{}),
	}
	store := newTestStore(svc)

	first := make(chan struct{})
	go func() {
		store.Refresh(context.Background())
		close(first)
	}()
	<-svc.started

	second := make(chan struct{})
	go func() {
		store.Refresh(context.Background())
		close(second)
	}()
	<-svc.started

	// the newer fetch lands first, the older one afterwards
	svc.answer(1, []supermarkets.Supermarket{{ID: 2, Name: "new"}})
	<-second
	svc.answer(0, []supermarkets.Supermarket{{ID: 1, Name: "old"}})
	<-first

	assert.Equal(t, StateReady, store.State())
	assert.Equal(t, []string{"new"}, names(store.Snapshot()))
}

// --- list view ---

func TestListViewItems(t *testing.T) {
	svc := newMockService(
		supermarkets.Supermarket{ID: 1, Name: "B"},
		supermarkets.Supermarket{ID: 2, Name: "A", UpdatedAt: ts("2024-01-01T00:00:00Z")},
	)
	store := newTestStore(svc)
	view := NewListView(store, &mockNavigator{})
	require.NoError(t, view.Mount(context.Background()))

	items := view.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, "/supermarkets/2", items[0].Href)
	assert.Contains(t, items[0].Secondary, "Updated ")
	assert.Equal(t, int64(1), items[1].ID)
	assert.Empty(t, items[1].Secondary)
	assert.False(t, view.ShowEmpty())
}

func TestDeleteConfirmed(t *testing.T) {
	svc := newMockService(
		supermarkets.Supermarket{ID: 1, Name: "Keep"},
		supermarkets.Supermarket{ID: 2, Name: "Gone"},
	)
	store := newTestStore(svc)
	view := NewListView(store, &mockNavigator{})
	require.NoError(t, view.Mount(context.Background()))

	var asked []string
	target, _ := store.Find(2)
	require.NoError(t, view.Delete(context.Background(), target, answer(true, &asked)))

	assert.Equal(t, []string{`Are you sure you want to delete "Gone"`}, asked)
	assert.Equal(t, []string{"list", "delete", "list"}, svc.Calls())
	_, found := store.Find(2)
	assert.False(t, found)
	assert.Len(t, store.Snapshot(), 1)
}

func TestDeleteDeclined(t *testing.T) {
	svc := newMockService(supermarkets.Supermarket{ID: 1, Name: "Keep"})
	store := newTestStore(svc)
	view := NewListView(store, &mockNavigator{})
	require.NoError(t, view.Mount(context.Background()))

	before := store.Fingerprint()
	callsBefore := len(svc.Calls())

	var asked []string
	target, _ := store.Find(1)
	require.NoError(t, view.Delete(context.Background(), target, answer(false, &asked)))

	assert.Len(t, asked, 1)
	assert.Equal(t, callsBefore, len(svc.Calls()))
	assert.Equal(t, before, store.Fingerprint())
	assert.NoError(t, store.Errors().Err())
}

func TestListViewNavigation(t *testing.T) {
	nav := &mockNavigator{}
	view := NewListView(newTestStore(newMockService()), nav)

	view.New()
	assert.Equal(t, "/supermarkets/new", nav.path)
	view.Open(9)
	assert.Equal(t, "/supermarkets/9", nav.path)
}

// --- editor ---

func TestEditorCreatesNewRecord(t *testing.T) {
	svc := newMockService()
	store := newTestStore(svc)
	nav := &mockNavigator{}
	require.NoError(t, store.Mount(context.Background()))

	editor, ok := OpenEditor(store, nav, "new")
	require.True(t, ok)
	assert.True(t, editor.IsNew())
	assert.Equal(t, supermarkets.Fields{}, editor.Values())

	fields := supermarkets.Fields{Identifier: "S1", Name: "Shop", URL: "http://x"}
	require.NoError(t, editor.Submit(context.Background(), fields))

	assert.Equal(t, []string{"list", "create", "list"}, svc.Calls())
	assert.Equal(t, []supermarkets.Fields{fields}, svc.bodies)
	assert.Equal(t, 1, nav.backs)
	assert.Len(t, store.Snapshot(), 1)
}

func TestEditorUpdatesExistingRecord(t *testing.T) {
	svc := newMockService(supermarkets.Supermarket{ID: 4, Identifier: "X", Name: "Old", URL: "http://old"})
	store := newTestStore(svc)
	nav := &mockNavigator{}
	require.NoError(t, store.Mount(context.Background()))

	editor, ok := OpenEditor(store, nav, "4")
	require.True(t, ok)
	assert.False(t, editor.IsNew())
	assert.Equal(t, "Old", editor.Values().Name)

	require.NoError(t, editor.Submit(context.Background(), supermarkets.Fields{Identifier: "X", Name: "New", URL: "http://old"}))

	assert.Equal(t, []string{"list", "update", "list"}, svc.Calls())
	rec, ok := store.Find(4)
	require.True(t, ok)
	assert.Equal(t, "New", rec.Name)
	assert.True(t, rec.UpdatedAt.IsSet())
}

// A failed save still returns to the list and still refreshes.
func TestEditorNavigatesBackAfterFailedSave(t *testing.T) {
	svc := newMockService()
	svc.fail["create"] = supermarkets.RequestFailed("create", errors.New("unavailable"))
	store := newTestStore(svc)
	nav := &mockNavigator{}
	require.NoError(t, store.Mount(context.Background()))

	editor, ok := OpenEditor(store, nav, "new")
	require.True(t, ok)

	err := editor.Submit(context.Background(), supermarkets.Fields{Name: "Shop"})
	assert.True(t, errors.Is(err, supermarkets.ErrRequestFailed))
	assert.Equal(t, 1, nav.backs)
	assert.Equal(t, []string{"list", "create", "list"}, svc.Calls())
	assert.Contains(t, store.Errors().Message(), "unavailable")
}

func TestEditorCancel(t *testing.T) {
	svc := newMockService(supermarkets.Supermarket{ID: 1, Name: "Shop"})
	store := newTestStore(svc)
	nav := &mockNavigator{}
	require.NoError(t, store.Mount(context.Background()))

	editor, ok := OpenEditor(store, nav, "1")
	require.True(t, ok)
	editor.Cancel()

	assert.Equal(t, 1, nav.backs)
	assert.Equal(t, []string{"list"}, svc.Calls())
}

func TestOpenEditorResolution(t *testing.T) {
	svc := newMockService(supermarkets.Supermarket{ID: 1, Name: "Shop"})
	store := newTestStore(svc)
	nav := &mockNavigator{}

	// nothing is rendered while loading
	_, ok := OpenEditor(store, nav, "1")
	assert.False(t, ok)
	assert.Empty(t, nav.visits)

	require.NoError(t, store.Mount(context.Background()))

	_, ok = OpenEditor(store, nav, "99")
	assert.False(t, ok)
	assert.Equal(t, "/supermarkets", nav.path)

	nav.path = ""
	_, ok = OpenEditor(store, nav, "abc")
	assert.False(t, ok)
	assert.Equal(t, "/supermarkets", nav.path)

	editor, ok := OpenEditor(store, nav, "1")
	require.True(t, ok)
	assert.Equal(t, int64(1), editor.Seed().ID)
}

func names(records []supermarkets.Supermarket) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}
