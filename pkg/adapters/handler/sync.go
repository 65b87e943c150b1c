package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

// TriggerSync runs one sync immediately and returns its result. A run that
// failed still answers 200; the status is in the body.
func (h *HTTPHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.Syncer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "sync unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, h.Syncer.Run(r.Context()))
}

func (h *HTTPHandler) SyncHistory(w http.ResponseWriter, r *http.Request) {
	if h.Syncer == nil {
		writeJSON(w, http.StatusOK, map[string]any{"data": []domain.SyncHistoryEntry{}})
		return
	}
	entries, err := h.Syncer.History(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if entries == nil {
		entries = []domain.SyncHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}
