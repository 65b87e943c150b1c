package scoped

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

func TestTagValidation(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, setupStore(t), "alice")

	tests := []struct {
		name  string
		in    domain.NewTag
		field string
	}{
		{"Blank Name", domain.NewTag{Name: "   "}, "name"},
		{"Long Name", domain.NewTag{Name: strings.Repeat("a", 31)}, "name"},
		{"Unknown Color", domain.NewTag{Name: "ok", Color: "chartreuse"}, "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateTag(ctx, tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("Trimmed And Defaulted", func(t *testing.T) {
		tag, err := repo.CreateTag(ctx, domain.NewTag{Name: "  " + strings.Repeat("b", 30) + "  "})
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("b", 30), tag.Name)
		assert.Equal(t, domain.DefaultTagColor, tag.Color)
		assert.NotEmpty(t, tag.ID)
	})

	t.Run("Update Rejects Bad Color", func(t *testing.T) {
		tag, err := repo.CreateTag(ctx, domain.NewTag{Name: "c"})
		require.NoError(t, err)
		_, err = repo.UpdateTag(ctx, tag.ID, domain.TagPatch{Color: ptr("nope")})
		assert.True(t, domain.IsValidation(err))
		_, err = repo.UpdateTag(ctx, tag.ID, domain.TagPatch{Name: ptr(" ")})
		assert.True(t, domain.IsValidation(err))

		got, err := repo.UpdateTag(ctx, tag.ID, domain.TagPatch{Color: ptr("teal")})
		require.NoError(t, err)
		assert.Equal(t, "teal", got.Color)
		assert.Equal(t, "c", got.Name)
	})
}

func TestAddTagToLink(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	alice := newRepo(t, store, "alice")
	bob := newRepo(t, store, "bob")

	link, err := alice.CreateLink(ctx, domain.NewLink{OriginalURL: "https://a.com", Slug: "tagme"})
	require.NoError(t, err)
	tag, err := alice.CreateTag(ctx, domain.NewTag{Name: "mine"})
	require.NoError(t, err)
	bobTag, err := bob.CreateTag(ctx, domain.NewTag{Name: "theirs"})
	require.NoError(t, err)
	bobLink, err := bob.CreateLink(ctx, domain.NewLink{OriginalURL: "https://b.com", Slug: "bobs"})
	require.NoError(t, err)

	t.Run("Idempotent", func(t *testing.T) {
		ok, err := alice.AddTagToLink(ctx, link.ID, tag.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = alice.AddTagToLink(ctx, link.ID, tag.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Equal(t, int64(1), countRows(t, store,
			`SELECT COUNT(*) AS n FROM link_tags WHERE link_id = ? AND tag_id = ?`, link.ID, tag.ID))

		tags, err := alice.LinkTags(ctx, link.ID)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "mine", tags[0].Name)
	})

	t.Run("Foreign Tag", func(t *testing.T) {
		ok, err := alice.AddTagToLink(ctx, link.ID, bobTag.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Foreign Link", func(t *testing.T) {
		ok, err := alice.AddTagToLink(ctx, bobLink.ID, tag.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Missing Entities", func(t *testing.T) {
		ok, err := alice.AddTagToLink(ctx, 9999, tag.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = alice.AddTagToLink(ctx, link.ID, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	assert.Equal(t, int64(1), countRows(t, store, `SELECT COUNT(*) AS n FROM link_tags`))

	t.Run("Remove Requires Owned Link", func(t *testing.T) {
		ok, err := bob.RemoveTagFromLink(ctx, link.ID, tag.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = alice.RemoveTagFromLink(ctx, link.ID, tag.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = alice.RemoveTagFromLink(ctx, link.ID, tag.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDeleteCascades(t *testing.T) {
	executors := map[string]func(*testing.T) ports.QueryExecutor{
		"Transactional": func(t *testing.T) ports.QueryExecutor { return setupStore(t) },
		"Sequential":    func(t *testing.T) ports.QueryExecutor { return execOnly{setupStore(t)} },
	}

	for name, open := range executors {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := open(t)
			repo := newRepo(t, db, "alice")

			l1, err := repo.CreateLink(ctx, domain.NewLink{OriginalURL: "https://1.com", Slug: "one"})
			require.NoError(t, err)
			l2, err := repo.CreateLink(ctx, domain.NewLink{OriginalURL: "https://2.com", Slug: "two"})
			require.NoError(t, err)
			t1, err := repo.CreateTag(ctx, domain.NewTag{Name: "t1"})
			require.NoError(t, err)
			t2, err := repo.CreateTag(ctx, domain.NewTag{Name: "t2"})
			require.NoError(t, err)

			for _, pair := range []struct {
				link int64
				tag  string
			}{{l1.ID, t1.ID}, {l1.ID, t2.ID}, {l2.ID, t1.ID}, {l2.ID, t2.ID}} {
				ok, err := repo.AddTagToLink(ctx, pair.link, pair.tag)
				require.NoError(t, err)
				require.True(t, ok)
			}

			ok, err := repo.DeleteTag(ctx, t1.ID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, int64(0), countRows(t, db, `SELECT COUNT(*) AS n FROM link_tags WHERE tag_id = ?`, t1.ID))
			assert.Equal(t, int64(2), countRows(t, db, `SELECT COUNT(*) AS n FROM link_tags`))

			ok, err = repo.DeleteLink(ctx, l1.ID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, int64(0), countRows(t, db, `SELECT COUNT(*) AS n FROM link_tags WHERE link_id = ?`, l1.ID))
			assert.Equal(t, int64(1), countRows(t, db,
				`SELECT COUNT(*) AS n FROM link_tags WHERE link_id = ? AND tag_id = ?`, l2.ID, t2.ID))
		})
	}
}
