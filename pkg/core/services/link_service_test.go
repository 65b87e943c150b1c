package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkvault/pkg/core/catalog"
	"github.com/wadjakorntonsri/linkvault/pkg/core/dirty"
	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/scoped"
)

// linkCache adapts fakeCache to the per-link view.
type linkCache struct{ *fakeCache }

func (c linkCache) PutLink(ctx context.Context, slug string, l domain.CachedLink) bool {
	b, _ := json.Marshal(l)
	return c.Put(ctx, slug, string(b))
}

func (c linkCache) GetLink(ctx context.Context, slug string) (domain.CachedLink, bool) {
	raw, ok := c.Get(ctx, slug)
	if !ok {
		return domain.CachedLink{}, false
	}
	var l domain.CachedLink
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return domain.CachedLink{}, false
	}
	return l, true
}

func (c linkCache) DeleteLink(ctx context.Context, slug string) bool { return c.Delete(ctx, slug) }

type linkFixture struct {
	svc   *LinkService
	cache *fakeCache
	cat   *catalog.Catalog
	repo  *scoped.Repository
}

func newLinkFixture(t *testing.T) linkFixture {
	t.Helper()
	store, err := sqlite.OpenMemory(context.Background(), "services_"+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repo, err := scoped.New(store, "alice", dirty.New())
	require.NoError(t, err)
	cat := catalog.New(store)
	cache := newFakeCache()
	return linkFixture{svc: NewLinkService(cat, linkCache{cache}, nil), cache: cache, cat: cat, repo: repo}
}

func TestLinkService_Shorten(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	t.Run("Random Slug", func(t *testing.T) {
		link, err := f.svc.Shorten(ctx, f.repo, domain.NewLink{OriginalURL: "https://go.dev"})
		require.NoError(t, err)
		assert.Len(t, link.Slug, slugLength)
		assert.False(t, link.IsCustom)
		assert.Contains(t, f.cache.values, link.Slug, "cache is warmed")
	})

	t.Run("Custom Slug", func(t *testing.T) {
		link, err := f.svc.Shorten(ctx, f.repo, domain.NewLink{OriginalURL: "https://go.dev", Slug: " my-link "})
		require.NoError(t, err)
		assert.Equal(t, "my-link", link.Slug)
		assert.True(t, link.IsCustom)
	})

	t.Run("Custom Slug Taken", func(t *testing.T) {
		_, err := f.svc.Shorten(ctx, f.repo, domain.NewLink{OriginalURL: "https://go.dev", Slug: "my-link"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	for _, slug := range []string{"api", "Metrics", "ab", "has space", "sl/ash"} {
		t.Run("Rejected "+slug, func(t *testing.T) {
			_, err := f.svc.Shorten(ctx, f.repo, domain.NewLink{OriginalURL: "https://go.dev", Slug: slug})
			assert.True(t, domain.IsValidation(err))
		})
	}

	t.Run("Collision Retries", func(t *testing.T) {
		svc := NewLinkService(f.cat, linkCache{f.cache}, nil)
		seq := []string{"my-link", "my-link", "fresh1"}
		svc.genSlug = func(int) (string, error) {
			s := seq[0]
			seq = seq[1:]
			return s, nil
		}
		link, err := svc.Shorten(ctx, f.repo, domain.NewLink{OriginalURL: "https://go.dev"})
		require.NoError(t, err)
		assert.Equal(t, "fresh1", link.Slug)
	})

	t.Run("Gives Up", func(t *testing.T) {
		svc := NewLinkService(f.cat, linkCache{f.cache}, nil)
		svc.genSlug = func(int) (string, error) { return "my-link", nil }
		_, err := svc.Shorten(ctx, f.repo, domain.NewLink{OriginalURL: "https://go.dev"})
		assert.Error(t, err)
	})
}

func TestLinkService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	link, err := f.svc.Shorten(ctx, f.repo, domain.NewLink{OriginalURL: "https://a.com", Slug: "before"})
	require.NoError(t, err)

	renamed := "after"
	updated, err := f.svc.Update(ctx, f.repo, link.ID, domain.LinkPatch{Slug: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Slug)
	assert.NotContains(t, f.cache.values, "before")
	assert.Contains(t, f.cache.values, "after")

	_, err = f.svc.Update(ctx, f.repo, 999, domain.LinkPatch{Slug: &renamed})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := f.svc.Delete(ctx, f.repo, link.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, f.cache.values, "after")

	ok, err = f.svc.Delete(ctx, f.repo, link.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkService_Resolve(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	link, err := f.repo.CreateLink(ctx, domain.NewLink{OriginalURL: "https://a.com", Slug: "cold"})
	require.NoError(t, err)

	t.Run("Fallback Warms Cache", func(t *testing.T) {
		got, err := f.svc.Resolve(ctx, "cold")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, "https://a.com", got.OriginalURL)
		assert.Contains(t, f.cache.values, "cold")
	})

	t.Run("Cache Hit", func(t *testing.T) {
		f.cache.values["edge-only"] = `{"id":42,"originalUrl":"https://edge.example","expiresAt":null}`
		got, err := f.svc.Resolve(ctx, "edge-only")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ID)
	})

	t.Run("Expired In Cache", func(t *testing.T) {
		f.cache.values["old"] = `{"id":7,"originalUrl":"https://old.example","expiresAt":1}`
		_, err := f.svc.Resolve(ctx, "old")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Expired In Store", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		_, err := f.repo.CreateLink(ctx, domain.NewLink{OriginalURL: "https://b.com", Slug: "gone", ExpiresAt: &past})
		require.NoError(t, err)
		_, err = f.svc.Resolve(ctx, "gone")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotContains(t, f.cache.values, "gone")
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := f.svc.Resolve(ctx, "nope")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
