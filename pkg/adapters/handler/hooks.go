package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/scoped"
)

// WebhookResolver finds the webhook a token belongs to.
type WebhookResolver interface {
	WebhookByToken(ctx context.Context, token string) (*domain.Webhook, error)
}

// hookLimiter keeps one token bucket per webhook token, refilled at the
// webhook's per-minute rate limit.
type hookLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limitEntry
}

type limitEntry struct {
	perMinute int
	limiter   *rate.Limiter
}

func newHookLimiter() *hookLimiter {
	return &hookLimiter{limiters: make(map[string]*limitEntry)}
}

func (l *hookLimiter) allow(token string, perMinute int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[token]
	if !ok || e.perMinute != perMinute {
		if len(l.limiters) > 10000 {
			l.limiters = make(map[string]*limitEntry)
		}
		e = &limitEntry{
			perMinute: perMinute,
			limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		}
		l.limiters[token] = e
	}
	return e.limiter.Allow()
}

type hookRequest struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
	Note string `json:"note"`
}

// Ingest creates a link on behalf of the webhook's owner. The token in the
// path authenticates the call; unknown tokens look like missing routes.
func (h *HTTPHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.Hooks == nil {
		http.NotFound(w, r)
		return
	}
	token := r.PathValue("token")
	hook, err := h.Hooks.WebhookByToken(r.Context(), token)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	limit := hook.RateLimit
	if limit < domain.MinWebhookRateLimit {
		limit = domain.DefaultWebhookRateLimit
	}
	if !h.limiter.allow(token, limit) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		return
	}

	var req hookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	repo, err := scoped.New(h.DB, hook.UserID, h.Dirty)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	in := domain.NewLink{OriginalURL: req.URL, Slug: req.Slug}
	if req.Note != "" {
		in.Note = &req.Note
	}
	link, err := h.Links.Shorten(r.Context(), repo, in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.present(link))
}
