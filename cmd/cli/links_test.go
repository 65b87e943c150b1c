package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/app"
	"github.com/wadjakorntonsri/linkvault/pkg/config"
	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

func setupApp(t *testing.T) {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL:     "file:" + t.Name() + "?mode=memory&cache=shared",
		SyncHistorySize: 10,
	}
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	linkvault = a
	t.Cleanup(func() {
		a.Close()
		linkvault = nil
	})
}

func TestImportThenExport(t *testing.T) {
	setupApp(t)
	ctx := context.Background()
	folder := "f-1"

	links := []domain.Link{
		{UserID: "alice", OriginalURL: "https://example.com/a", Slug: "alpha", IsCustom: true, FolderID: &folder},
		{UserID: "bob", OriginalURL: "https://example.com/b", Slug: "bravo"},
		{UserID: "", OriginalURL: "https://example.com/c", Slug: "charlie"},
		{UserID: "bob", OriginalURL: "not a url", Slug: "delta"},
	}

	imported, skipped, err := importLinks(ctx, links, "")
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 2, skipped)

	// Second pass finds every good slug taken.
	imported, skipped, err = importLinks(ctx, links[:2], "")
	require.NoError(t, err)
	assert.Zero(t, imported)
	assert.Equal(t, 2, skipped)

	var out bytes.Buffer
	exportCmd.SetOut(&out)
	exportCmd.SetContext(ctx)
	require.NoError(t, exportCmd.RunE(exportCmd, nil))

	var dumped []domain.Link
	require.NoError(t, json.Unmarshal(out.Bytes(), &dumped))
	require.Len(t, dumped, 2)
	assert.Equal(t, "alpha", dumped[0].Slug)
	assert.Equal(t, "alice", dumped[0].UserID)
	assert.True(t, dumped[0].IsCustom)
	assert.Nil(t, dumped[0].FolderID)
	assert.Equal(t, "bravo", dumped[1].Slug)
	assert.Equal(t, "bob", dumped[1].UserID)
}

func TestImportOwnerOverride(t *testing.T) {
	setupApp(t)

	imported, _, err := importLinks(context.Background(), []domain.Link{
		{UserID: "", OriginalURL: "https://example.com/x", Slug: "xray"},
	}, "carol")
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	l, err := linkvault.Catalog.LinkBySlug(context.Background(), "xray")
	require.NoError(t, err)
	assert.Equal(t, "carol", l.UserID)
}

func TestHistoryCommand(t *testing.T) {
	setupApp(t)
	ctx := context.Background()

	// Unconfigured cache: the run reports an error and records nothing.
	var out bytes.Buffer
	syncCmd.SetOut(&out)
	syncCmd.SetContext(ctx)
	assert.Error(t, syncCmd.RunE(syncCmd, nil))

	var res domain.SyncResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, domain.SyncError, res.Status)

	out.Reset()
	historyCmd.SetOut(&out)
	historyCmd.SetContext(ctx)
	historyLimit = 5
	require.NoError(t, historyCmd.RunE(historyCmd, nil))
	assert.JSONEq(t, `[]`, out.String())
}
