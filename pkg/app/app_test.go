package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/config"
	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:     "file:app_test?mode=memory&cache=shared",
		JWTSecret:       "secret",
		SyncHistorySize: 5,
	}
	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Cache.IsConfigured())
	res := a.Sync.Run(context.Background())
	assert.Equal(t, domain.SyncError, res.Status)

	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNew_BadDatabase(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "/nonexistent-dir/sub/db.sqlite"}
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
