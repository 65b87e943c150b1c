package services

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

// LinkStore is the slice of an owner-scoped repository the link service needs.
type LinkStore interface {
	CreateLink(ctx context.Context, in domain.NewLink) (*domain.Link, error)
	GetLink(ctx context.Context, id int64) (*domain.Link, error)
	UpdateLink(ctx context.Context, id int64, p domain.LinkPatch) (*domain.Link, error)
	DeleteLink(ctx context.Context, id int64) (bool, error)
}

// SlugIndex looks links up across all owners.
type SlugIndex interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	LinkBySlug(ctx context.Context, slug string) (*domain.Link, error)
}

// LinkCache is the per-link view of the edge cache.
type LinkCache interface {
	PutLink(ctx context.Context, slug string, link domain.CachedLink) bool
	GetLink(ctx context.Context, slug string) (domain.CachedLink, bool)
	DeleteLink(ctx context.Context, slug string) bool
}

const (
	slugLength   = 6
	slugAttempts = 5
	slugCharset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	slugTakenOp  = "slug already taken"
)

var (
	customSlugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)
	reservedSlugs     = []string{"api", "auth", "metrics", "healthz", "open"}
)

// LinkService assigns slugs and keeps the edge cache warm for single-link
// changes. The periodic sync remains the source of convergence.
type LinkService struct {
	index   SlugIndex
	cache   LinkCache
	logger  *slog.Logger
	genSlug func(int) (string, error)
	now     func() time.Time
}

func NewLinkService(index SlugIndex, cache LinkCache, logger *slog.Logger) *LinkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkService{
		index:   index,
		cache:   cache,
		logger:  logger.With("component", "links"),
		genSlug: generateSlug,
		now:     time.Now,
	}
}

// Shorten creates a link for the store's owner. An empty in.Slug gets a
// random one; a supplied slug is treated as custom.
func (s *LinkService) Shorten(ctx context.Context, store LinkStore, in domain.NewLink) (*domain.Link, error) {
	custom := strings.TrimSpace(in.Slug)
	if custom != "" {
		if err := s.checkCustomSlug(ctx, custom); err != nil {
			return nil, err
		}
		in.Slug = custom
		in.IsCustom = true
		link, err := store.CreateLink(ctx, in)
		if err != nil {
			return nil, err
		}
		s.warm(ctx, link)
		return link, nil
	}

	in.IsCustom = false
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug, err := s.genSlug(slugLength)
		if err != nil {
			return nil, err
		}
		taken, err := s.index.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		in.Slug = slug
		link, err := store.CreateLink(ctx, in)
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race for the slug; try another.
			continue
		}
		if err != nil {
			return nil, err
		}
		s.warm(ctx, link)
		return link, nil
	}
	return nil, errors.New("could not allocate a unique slug")
}

// Update applies p and refreshes the cache entry, dropping the old key when
// the slug changed.
func (s *LinkService) Update(ctx context.Context, store LinkStore, id int64, p domain.LinkPatch) (*domain.Link, error) {
	before, err := store.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Slug != nil {
		slug := strings.TrimSpace(*p.Slug)
		if slug != before.Slug {
			if err := s.checkCustomSlug(ctx, slug); err != nil {
				return nil, err
			}
			custom := true
			p.Slug = &slug
			p.IsCustom = &custom
		}
	}

	after, err := store.UpdateLink(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if after.Slug != before.Slug {
		s.cache.DeleteLink(ctx, before.Slug)
	}
	s.warm(ctx, after)
	return after, nil
}

// Delete removes the link and its cache entry. It reports false when the
// owner has no such link.
func (s *LinkService) Delete(ctx context.Context, store LinkStore, id int64) (bool, error) {
	link, err := store.GetLink(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	deleted, err := store.DeleteLink(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.cache.DeleteLink(ctx, link.Slug)
	return true, nil
}

// Resolve finds the redirect target for slug. The edge cache is consulted
// first; a miss or an unreachable cache falls back to the store and warms the
// cache. Expired links resolve as ErrNotFound.
func (s *LinkService) Resolve(ctx context.Context, slug string) (domain.CachedLink, error) {
	now := s.now()
	if cached, ok := s.cache.GetLink(ctx, slug); ok {
		if cached.Expired(now) {
			return domain.CachedLink{}, domain.ErrNotFound
		}
		return cached, nil
	}

	link, err := s.index.LinkBySlug(ctx, slug)
	if err != nil {
		return domain.CachedLink{}, err
	}
	if link.Expired(now) {
		return domain.CachedLink{}, domain.ErrNotFound
	}
	s.warm(ctx, link)
	return link.Cached(), nil
}

func (s *LinkService) warm(ctx context.Context, link *domain.Link) {
	if !s.cache.PutLink(ctx, link.Slug, link.Cached()) {
		s.logger.Debug("cache not warmed", "slug", link.Slug)
	}
}

func (s *LinkService) checkCustomSlug(ctx context.Context, slug string) error {
	if !customSlugPattern.MatchString(slug) {
		return &domain.ValidationError{Field: "slug", Reason: "must be 3-64 letters, digits, '-' or '_'"}
	}
	if slices.Contains(reservedSlugs, strings.ToLower(slug)) {
		return &domain.ValidationError{Field: "slug", Reason: "is reserved"}
	}
	taken, err := s.index.SlugExists(ctx, slug)
	if err != nil {
		return err
	}
	if taken {
		return &domain.StoreError{Op: slugTakenOp, Err: domain.ErrConflict}
	}
	return nil
}

func generateSlug(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugCharset))))
		if err != nil {
			return "", err
		}
		b[i] = slugCharset[num.Int64()]
	}
	return string(b), nil
}
