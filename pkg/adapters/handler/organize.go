package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

func (h *HTTPHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var req domain.NewFolder
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	folder, err := repo.CreateFolder(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *HTTPHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	folders, err := repo.ListFolders(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": folders})
}

func (h *HTTPHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	folder, err := repo.GetFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *HTTPHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var patch domain.FolderPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	folder, err := repo.UpdateFolder(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder; its links stay and become unfiled.
func (h *HTTPHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	deleted, err := repo.DeleteFolder(r.Context(), r.PathValue("id"))
	h.writeDeleted(w, deleted, err)
}

func (h *HTTPHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var req domain.NewTag
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	tag, err := repo.CreateTag(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *HTTPHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	tags, err := repo.ListTags(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tags, "colors": domain.TagColors})
}

func (h *HTTPHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var patch domain.TagPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	tag, err := repo.UpdateTag(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *HTTPHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	deleted, err := repo.DeleteTag(r.Context(), r.PathValue("id"))
	h.writeDeleted(w, deleted, err)
}

func (h *HTTPHandler) LinkTags(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	tags, err := repo.LinkTags(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tags})
}

// AddTag attaches a tag to a link. Repeating the call is harmless.
func (h *HTTPHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	ok, err := repo.AddTagToLink(r.Context(), id, r.PathValue("tagID"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if !ok {
		writeError(w, h.Logger, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	deleted, err := repo.RemoveTagFromLink(r.Context(), id, r.PathValue("tagID"))
	h.writeDeleted(w, deleted, err)
}

func (h *HTTPHandler) writeDeleted(w http.ResponseWriter, deleted bool, err error) {
	switch {
	case err != nil:
		writeError(w, h.Logger, err)
	case !deleted:
		writeError(w, h.Logger, domain.ErrNotFound)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
