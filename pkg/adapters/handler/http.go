package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/scoped"
	"github.com/wadjakorntonsri/linkvault/pkg/core/services"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB     ports.QueryExecutor
	Dirty  ports.DirtyTracker
	Links  *services.LinkService
	Visits *services.VisitRecorder
	Syncer *services.SyncService
	Hooks  WebhookResolver
	Logger *slog.Logger
}

type HTTPHandler struct {
	Deps
	baseURL string
	limiter *hookLimiter
}

func NewHTTPHandler(d Deps, baseURL string) *HTTPHandler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &HTTPHandler{Deps: d, baseURL: strings.TrimRight(baseURL, "/"), limiter: newHookLimiter()}
}

// repo binds a repository to the authenticated owner of r.
func (h *HTTPHandler) repo(r *http.Request) (*scoped.Repository, error) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	return scoped.New(h.DB, owner, h.Dirty)
}

type linkResponse struct {
	*domain.Link
	ShortURL string `json:"short_url"`
}

func (h *HTTPHandler) present(l *domain.Link) linkResponse {
	return linkResponse{Link: l, ShortURL: h.baseURL + "/" + l.Slug}
}

// Create shortens a URL. A blank slug gets a random one.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var req domain.NewLink
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	link, err := h.Links.Shorten(r.Context(), repo, req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.present(link))
}

func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	repo, err := h.repo(r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	q := r.URL.Query()
	filter := domain.LinkFilter{
		FolderID: q.Get("folder_id"),
		TagID:    q.Get("tag_id"),
		Search:   q.Get("search"),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}

	links, err := repo.ListLinks(r.Context(), filter)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	data := make([]linkResponse, len(links))
	for i := range links {
		data[i] = h.present(&links[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":   data,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	link, err := repo.GetLink(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(link))
}

// Update applies a partial update. Fields sent as null are cleared.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var patch domain.LinkPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	link, err := h.Links.Update(r.Context(), repo, id, patch)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(link))
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	deleted, err := h.Links.Delete(r.Context(), repo, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if !deleted {
		writeError(w, h.Logger, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns the visit breakdown and latest visits for one link.
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
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
	if _, err := repo.GetLink(r.Context(), id); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	stats, err := repo.GetAnalyticsStats(r.Context(), domain.AnalyticsFilter{LinkID: id})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	recent, err := repo.RecentVisits(r.Context(), id, queryInt(r, "recent"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":  stats,
		"recent": recent,
	})
}

// Redirect sends the visitor to the link target and records the visit in the
// background unless no_stat is set.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		http.Error(w, "Slug missing", http.StatusBadRequest)
		return
	}

	target, err := h.Links.Resolve(r.Context(), slug)
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Link not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("Redirect lookup failed", "slug", slug, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if h.Visits != nil && r.URL.Query().Get("no_stat") == "" {
		h.Visits.RecordAsync(services.VisitEvent{
			LinkID:    target.ID,
			UserAgent: r.UserAgent(),
			Referer:   r.Referer(),
			Country:   r.Header.Get("CF-IPCountry"),
			City:      r.Header.Get("CF-IPCity"),
		})
	}

	w.Header().Set("Cache-Control", "private, max-age=0")
	http.Redirect(w, r, target.OriginalURL, http.StatusFound)
}
