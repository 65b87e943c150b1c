package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wadjakorntonsri/linkvault/pkg/config"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	h := NewHTTPHandler(deps, cfg.BaseURL)
	mw := NewMiddleware(cfg, h.Logger)
	authHandler := NewAuthHandler(cfg, h.Logger)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /hooks/{token}", h.Ingest)
	mux.HandleFunc("GET /{slug}", h.Redirect)

	// Protected Routes
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/links", h.Create)
	api.HandleFunc("GET /api/v1/links", h.List)
	api.HandleFunc("GET /api/v1/links/{id}", h.Get)
	api.HandleFunc("PATCH /api/v1/links/{id}", h.Update)
	api.HandleFunc("PUT /api/v1/links/{id}", h.Update)
	api.HandleFunc("DELETE /api/v1/links/{id}", h.Delete)
	api.HandleFunc("GET /api/v1/links/{id}/stats", h.Stats)
	api.HandleFunc("GET /api/v1/links/{id}/tags", h.LinkTags)
	api.HandleFunc("PUT /api/v1/links/{id}/tags/{tagID}", h.AddTag)
	api.HandleFunc("DELETE /api/v1/links/{id}/tags/{tagID}", h.RemoveTag)

	api.HandleFunc("POST /api/v1/folders", h.CreateFolder)
	api.HandleFunc("GET /api/v1/folders", h.ListFolders)
	api.HandleFunc("GET /api/v1/folders/{id}", h.GetFolder)
	api.HandleFunc("PATCH /api/v1/folders/{id}", h.UpdateFolder)
	api.HandleFunc("DELETE /api/v1/folders/{id}", h.DeleteFolder)

	api.HandleFunc("POST /api/v1/tags", h.CreateTag)
	api.HandleFunc("GET /api/v1/tags", h.ListTags)
	api.HandleFunc("PATCH /api/v1/tags/{id}", h.UpdateTag)
	api.HandleFunc("DELETE /api/v1/tags/{id}", h.DeleteTag)

	api.HandleFunc("POST /api/v1/uploads", h.CreateUpload)
	api.HandleFunc("GET /api/v1/uploads", h.ListUploads)
	api.HandleFunc("GET /api/v1/uploads/{id}", h.GetUpload)
	api.HandleFunc("PATCH /api/v1/uploads/{id}", h.UpdateUpload)
	api.HandleFunc("DELETE /api/v1/uploads/{id}", h.DeleteUpload)

	api.HandleFunc("GET /api/v1/webhook", h.GetWebhook)
	api.HandleFunc("PUT /api/v1/webhook", h.PutWebhook)
	api.HandleFunc("POST /api/v1/webhook/regenerate", h.RegenerateWebhook)
	api.HandleFunc("DELETE /api/v1/webhook", h.DeleteWebhook)

	api.HandleFunc("GET /api/v1/settings", h.GetSettings)
	api.HandleFunc("PUT /api/v1/settings/preview-style", h.PutPreviewStyle)

	api.HandleFunc("GET /api/v1/overview", h.Overview)
	api.HandleFunc("GET /api/v1/analytics", h.Analytics)

	api.HandleFunc("POST /api/v1/sync", h.TriggerSync)
	api.HandleFunc("GET /api/v1/sync/history", h.SyncHistory)

	// api carries full paths, so it can sit behind the /api/v1/ prefix.
	mux.Handle("/api/v1/", mw.AuthMiddleware(api))

	return mw.RequestLogger(mux)
}
