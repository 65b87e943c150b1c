// Package app wires the store, the edge cache and the services into one
// graph shared by the server, the CLI and the serverless entry point.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/wadjakorntonsri/linkvault/pkg/adapters/handler"
	"github.com/wadjakorntonsri/linkvault/pkg/adapters/kv"
	"github.com/wadjakorntonsri/linkvault/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkvault/pkg/config"
	"github.com/wadjakorntonsri/linkvault/pkg/core/catalog"
	"github.com/wadjakorntonsri/linkvault/pkg/core/dirty"
	"github.com/wadjakorntonsri/linkvault/pkg/core/services"
)

const visitBuffer = 1000

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *sqlite.Store
	Catalog *catalog.Catalog
	Cache   *kv.Client
	History *sqlite.HistoryLog
	Sync    *services.SyncService
	Links   *services.LinkService
	Visits  *services.VisitRecorder
}

// New opens the store and builds every service. The dirty flag is the
// process-wide dirty.Default, so a fresh process always syncs once.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := sqlite.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cat := catalog.New(store)
	cache := kv.New(kv.Config{
		AccountID:   cfg.CFAccountID,
		NamespaceID: cfg.CFNamespaceID,
		APIToken:    cfg.CFAPIToken,
		BaseURL:     cfg.CFAPIBaseURL,
	}, logger)
	if !cache.IsConfigured() {
		logger.Warn("Edge cache not configured; redirects will read from the database")
	}
	history := sqlite.NewHistoryLog(store, cfg.SyncHistorySize)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Catalog: cat,
		Cache:   cache,
		History: history,
		Sync:    services.NewSyncService(cat, cache, dirty.Default, history, logger),
		Links:   services.NewLinkService(cat, cache, logger),
		Visits:  services.NewVisitRecorder(cat, logger, visitBuffer),
	}, nil
}

func (a *App) Router() http.Handler {
	return handler.NewRouter(a.Config, handler.Deps{
		DB:     a.Store,
		Dirty:  dirty.Default,
		Links:  a.Links,
		Visits: a.Visits,
		Syncer: a.Sync,
		Hooks:  a.Catalog,
		Logger: a.Logger,
	})
}

func (a *App) Close() error {
	return a.Store.Close()
}
