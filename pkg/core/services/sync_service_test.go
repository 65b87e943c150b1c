package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/core/dirty"
	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

type countingSource struct {
	mu    sync.Mutex
	links []domain.Link
	err   error
	reads int
}

func (s *countingSource) AllLinks(context.Context) ([]domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.Link(nil), s.links...), nil
}

// fakeCache records bulk writes and fails the keys listed in reject.
type fakeCache struct {
	mu         sync.Mutex
	configured bool
	reject     map[string]bool
	values     map[string]string
	bulkCalls  int
	panicOnPut bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{configured: true, reject: map[string]bool{}, values: map[string]string{}}
}

func (c *fakeCache) IsConfigured() bool { return c.configured }

func (c *fakeCache) Put(_ context.Context, key, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.configured || c.reject[key] {
		return false
	}
	c.values[key] = value
	return true
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *fakeCache) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return c.configured
}

func (c *fakeCache) BulkPut(_ context.Context, entries []domain.KVEntry) domain.BulkResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panicOnPut {
		panic("cache exploded")
	}
	c.bulkCalls++
	var res domain.BulkResult
	for _, e := range entries {
		if c.reject[e.Key] {
			res.Failed++
			continue
		}
		c.values[e.Key] = e.Value
		res.Success++
	}
	return res
}

type memHistory struct {
	mu      sync.Mutex
	entries []domain.SyncHistoryEntry
}

func (h *memHistory) Record(_ context.Context, e domain.SyncHistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	return nil
}

func (h *memHistory) Recent(_ context.Context, limit int) ([]domain.SyncHistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.SyncHistoryEntry, 0, len(h.entries))
	for i := len(h.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.entries[i])
	}
	return out, nil
}

func links(slugs ...string) []domain.Link {
	out := make([]domain.Link, len(slugs))
	for i, s := range slugs {
		out[i] = domain.Link{ID: int64(i + 1), Slug: s, OriginalURL: "https://example.com/" + s}
	}
	return out
}

func TestSyncService_NotConfigured(t *testing.T) {
	source := &countingSource{links: links("a")}
	cache := newFakeCache()
	cache.configured = false
	history := &memHistory{}
	tracker := dirty.New()

	res := NewSyncService(source, cache, tracker, history, nil).Run(context.Background())

	assert.Equal(t, domain.SyncError, res.Status)
	assert.Equal(t, "edge cache not configured", res.Error)
	assert.Zero(t, source.reads)
	assert.Empty(t, history.entries)
	assert.True(t, tracker.IsDirty())
}

func TestSyncService_Skipped(t *testing.T) {
	source := &countingSource{links: links("a")}
	cache := newFakeCache()
	history := &memHistory{}
	tracker := dirty.New()
	tracker.ClearDirty()

	res := NewSyncService(source, cache, tracker, history, nil).Run(context.Background())

	assert.Equal(t, domain.SyncResult{Status: domain.SyncSkipped}, res)
	assert.Zero(t, source.reads)
	assert.Zero(t, cache.bulkCalls)
	require.Len(t, history.entries, 1)
	assert.Equal(t, domain.SyncSkipped, history.entries[0].Status)
}

func TestSyncService_Success(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	all := links("a", "b", "c")
	all[1].ExpiresAt = &expires
	source := &countingSource{links: all}
	cache := newFakeCache()
	history := &memHistory{}
	tracker := dirty.New()

	res := NewSyncService(source, cache, tracker, history, nil).Run(context.Background())

	assert.Equal(t, domain.SyncSuccess, res.Status)
	assert.Equal(t, 3, res.Synced)
	assert.Zero(t, res.Failed)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Error)
	assert.False(t, tracker.IsDirty())

	assert.JSONEq(t, `{"id":1,"originalUrl":"https://example.com/a","expiresAt":null}`, cache.values["a"])
	assert.JSONEq(t, `{"id":2,"originalUrl":"https://example.com/b","expiresAt":1893456000000}`, cache.values["b"])

	require.Len(t, history.entries, 1)
	assert.Equal(t, domain.SyncSuccess, history.entries[0].Status)
	assert.Equal(t, 3, history.entries[0].Synced)
}

func TestSyncService_PartialFailureKeepsDirty(t *testing.T) {
	source := &countingSource{links: links("a", "b", "c", "d")}
	cache := newFakeCache()
	cache.reject["b"] = true
	history := &memHistory{}
	tracker := dirty.New()
	svc := NewSyncService(source, cache, tracker, history, nil)

	res := svc.Run(context.Background())

	assert.Equal(t, domain.SyncError, res.Status)
	assert.Equal(t, 3, res.Synced)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 4, res.Total)
	assert.NotEmpty(t, res.Error)
	assert.True(t, tracker.IsDirty())

	delete(cache.reject, "b")
	res = svc.Run(context.Background())
	assert.Equal(t, domain.SyncSuccess, res.Status)
	assert.Equal(t, 4, res.Synced)
	assert.Equal(t, 2, source.reads, "every record is re-sent after a partial failure")
	assert.False(t, tracker.IsDirty())
	assert.Len(t, history.entries, 2)
}

func TestSyncService_SourceFailure(t *testing.T) {
	source := &countingSource{err: errors.New("db down")}
	cache := newFakeCache()
	history := &memHistory{}
	tracker := dirty.New()

	res := NewSyncService(source, cache, tracker, history, nil).Run(context.Background())

	assert.Equal(t, domain.SyncError, res.Status)
	assert.True(t, strings.HasPrefix(res.Error, "failed to read source: "))
	assert.Contains(t, res.Error, "db down")
	assert.Zero(t, res.Synced)
	assert.Zero(t, cache.bulkCalls)
	assert.True(t, tracker.IsDirty())
	require.Len(t, history.entries, 1)
	assert.Equal(t, res.Error, history.entries[0].Error)
}

func TestSyncService_PanicBecomesResult(t *testing.T) {
	cache := newFakeCache()
	cache.panicOnPut = true
	history := &memHistory{}
	tracker := dirty.New()

	var res domain.SyncResult
	require.NotPanics(t, func() {
		res = NewSyncService(&countingSource{links: links("a")}, cache, tracker, history, nil).Run(context.Background())
	})
	assert.Equal(t, domain.SyncError, res.Status)
	assert.Contains(t, res.Error, "cache exploded")
	assert.Len(t, history.entries, 1)
	assert.True(t, tracker.IsDirty())
}

func TestSyncService_Convergence(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{links: links("a", "b")}
	cache := newFakeCache()
	history := &memHistory{}
	tracker := dirty.New()
	svc := NewSyncService(source, cache, tracker, history, nil)

	assert.Equal(t, domain.SyncSuccess, svc.Run(ctx).Status)
	assert.Equal(t, domain.SyncSkipped, svc.Run(ctx).Status)
	assert.Equal(t, 1, source.reads, "a clean run reads nothing")

	tracker.MarkDirty()
	assert.Equal(t, domain.SyncSuccess, svc.Run(ctx).Status)
	assert.Equal(t, 2, source.reads)

	recent, err := svc.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, domain.SyncSuccess, recent[0].Status)
	assert.Equal(t, domain.SyncSkipped, recent[1].Status)
}

func TestSyncService_EmptyStore(t *testing.T) {
	res := NewSyncService(&countingSource{}, newFakeCache(), dirty.New(), &memHistory{}, nil).Run(context.Background())
	assert.Equal(t, domain.SyncSuccess, res.Status)
	assert.Zero(t, res.Total)
}

// racingSource marks the tracker dirty while the run is reading, as a
// concurrent link mutation would.
type racingSource struct {
	tracker *dirty.Tracker
}

func (s racingSource) AllLinks(context.Context) ([]domain.Link, error) {
	s.tracker.MarkDirty()
	return links("a"), nil
}

func TestSyncService_MutationDuringRunStaysDirty(t *testing.T) {
	tracker := dirty.New()
	res := NewSyncService(racingSource{tracker: tracker}, newFakeCache(), tracker, &memHistory{}, nil).Run(context.Background())

	assert.Equal(t, domain.SyncSuccess, res.Status)
	assert.True(t, tracker.IsDirty())
}
