package handler

import (
	"net/http"
	"time"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

func (h *HTTPHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var req domain.NewUpload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	upload, err := repo.CreateUpload(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}

func (h *HTTPHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	uploads, err := repo.ListUploads(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": uploads})
}

func (h *HTTPHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	upload, err := repo.GetUpload(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func (h *HTTPHandler) UpdateUpload(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var patch domain.UploadPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	upload, err := repo.UpdateUpload(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func (h *HTTPHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	deleted, err := repo.DeleteUpload(r.Context(), r.PathValue("id"))
	h.writeDeleted(w, deleted, err)
}

func (h *HTTPHandler) GetWebhook(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	hook, err := repo.GetWebhook(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

// PutWebhook creates or updates the caller's webhook. Omitting the token
// keeps the current one.
func (h *HTTPHandler) PutWebhook(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	req := domain.WebhookInput{RateLimit: domain.DefaultWebhookRateLimit}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	hook, err := repo.UpsertWebhook(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

func (h *HTTPHandler) RegenerateWebhook(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	hook, err := repo.RegenerateWebhookToken(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

func (h *HTTPHandler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	deleted, err := repo.DeleteWebhook(r.Context())
	h.writeDeleted(w, deleted, err)
}

func (h *HTTPHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	settings, err := repo.GetSettings(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *HTTPHandler) PutPreviewStyle(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var req struct {
		PreviewStyle string `json:"preview_style"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	settings, err := repo.UpsertPreviewStyle(r.Context(), req.PreviewStyle)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *HTTPHandler) Overview(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	stats, err := repo.GetOverviewStats(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Analytics accepts optional link_id and days query parameters.
func (h *HTTPHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	filter := domain.AnalyticsFilter{LinkID: int64(queryInt(r, "link_id"))}
	if days := queryInt(r, "days"); days > 0 {
		since := time.Now().AddDate(0, 0, -days)
		filter.Since = &since
	}
	stats, err := repo.GetAnalyticsStats(r.Context(), filter)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
