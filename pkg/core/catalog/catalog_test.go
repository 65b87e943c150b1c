package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkvault/pkg/core/catalog"
	"github.com/wadjakorntonsri/linkvault/pkg/core/dirty"
	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/scoped"
)

func setup(t *testing.T) (*sqlite.Store, *catalog.Catalog) {
	t.Helper()
	store, err := sqlite.OpenMemory(context.Background(), "catalog_"+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, catalog.New(store)
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	store, cat := setup(t)

	links, err := cat.AllLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)

	for _, owner := range []string{"alice", "bob"} {
		repo, err := scoped.New(store, owner, dirty.New())
		require.NoError(t, err)
		_, err = repo.CreateLink(ctx, domain.NewLink{OriginalURL: "https://example.com/" + owner, Slug: owner + "-1"})
		require.NoError(t, err)
	}

	links, err = cat.AllLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "alice", links[0].UserID)
	assert.Equal(t, "bob", links[1].UserID)

	link, err := cat.LinkBySlug(ctx, "bob-1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/bob", link.OriginalURL)

	_, err = cat.LinkBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	exists, err := cat.SlugExists(ctx, "alice-1")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = cat.SlugExists(ctx, "carol-1")
	require.NoError(t, err)
	assert.False(t, exists)

	country := "TH"
	require.NoError(t, cat.RecordVisit(ctx, domain.Visit{LinkID: link.ID, Country: &country}))
	require.NoError(t, cat.RecordVisit(ctx, domain.Visit{LinkID: link.ID}))

	link, err = cat.LinkBySlug(ctx, "bob-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.ClickCount)

	rows, err := store.Execute(ctx, `SELECT COUNT(*) AS n FROM analytics WHERE link_id = ?`, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows[0]["n"])
}
