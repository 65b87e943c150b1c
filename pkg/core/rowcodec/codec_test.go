package rowcodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

func TestDecodeLink(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("All Columns", func(t *testing.T) {
		row := ports.Row{
			"id": int64(7), "user_id": "alice", "folder_id": "f1",
			"original_url": "https://a.com", "slug": "abc", "is_custom": int64(1),
			"expires_at": created.Add(time.Hour).UnixMilli(), "click_count": int64(3),
			"meta_title": "A", "meta_description": nil, "meta_favicon": []byte("fav.ico"),
			"screenshot_url": nil, "note": "hello", "created_at": created.UnixMilli(),
		}
		l, err := DecodeLink(row)
		require.NoError(t, err)
		assert.Equal(t, int64(7), l.ID)
		assert.Equal(t, "alice", l.UserID)
		require.NotNil(t, l.FolderID)
		assert.Equal(t, "f1", *l.FolderID)
		assert.True(t, l.IsCustom)
		require.NotNil(t, l.ExpiresAt)
		assert.True(t, l.ExpiresAt.Equal(created.Add(time.Hour)))
		assert.Nil(t, l.MetaDescription)
		assert.Equal(t, "fav.ico", *l.MetaFavicon)
		assert.True(t, l.CreatedAt.Equal(created))
	})

	t.Run("Missing Column", func(t *testing.T) {
		_, err := DecodeLink(ports.Row{"id": int64(1)})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing column")
	})

	t.Run("Wrong Type", func(t *testing.T) {
		row := ports.Row{"id": struct{}{}}
		_, err := DecodeLink(row)
		assert.Error(t, err)
	})
}

func TestDecodeBreakdown(t *testing.T) {
	b, err := DecodeBreakdown(ports.Row{"name": nil, "count": int64(4)})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", b.Name)
	assert.Equal(t, int64(4), b.Count)

	b, err = DecodeBreakdown(ports.Row{"name": "Mobile", "count": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, "Mobile", b.Name)
	assert.Equal(t, int64(2), b.Count)
}

func TestEncoders(t *testing.T) {
	assert.Nil(t, NullMillis(nil))
	assert.Nil(t, NullString(nil))
	assert.Equal(t, int64(1), Bool(true))
	assert.Equal(t, int64(0), Bool(false))

	now := time.UnixMilli(1700000000123).UTC()
	assert.Equal(t, now.UnixMilli(), NullMillis(&now))
	assert.True(t, FromMillis(Millis(now)).Equal(now))
}

func TestDecodeAll(t *testing.T) {
	rows := []ports.Row{
		{"id": "t1", "user_id": "u", "name": "go", "color": "blue", "created_at": int64(0)},
		{"id": "t2", "user_id": "u", "name": "db", "color": "red", "created_at": "1000"},
	}
	tags, err := DecodeAll(rows, DecodeTag)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "db", tags[1].Name)
	assert.Equal(t, int64(1000), tags[1].CreatedAt.UnixMilli())
}
