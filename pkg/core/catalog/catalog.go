// Package catalog holds the system-level reads and writes that are not tied to
// one owner: resolving a slug for a redirect, recording a visit, and reading
// every link for cache propagation. Owner-facing code uses package scoped.
package catalog

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

type Catalog struct {
	db ports.QueryExecutor
}

func New(db ports.QueryExecutor) *Catalog {
	return &Catalog{db: db}
}

// AllLinks implements ports.LinkSource.
func (c *Catalog) AllLinks(ctx context.Context) ([]domain.Link, error) {
	rows, err := c.db.Execute(ctx, `SELECT `+rowcodec.LinkColumns+` FROM links ORDER BY id`)
	if err != nil {
		return nil, &domain.StoreError{Op: "read all links", Err: err}
	}
	links, err := rowcodec.DecodeAll(rows, rowcodec.DecodeLink)
	if err != nil {
		return nil, &domain.StoreError{Op: "read all links", Err: err}
	}
	return links, nil
}

// LinkBySlug finds a link by slug regardless of owner.
func (c *Catalog) LinkBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	rows, err := c.db.Execute(ctx, `SELECT `+rowcodec.LinkColumns+` FROM links WHERE slug = ?`, slug)
	if err != nil {
		return nil, &domain.StoreError{Op: "link by slug", Err: err}
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	l, err := rowcodec.DecodeLink(rows[0])
	if err != nil {
		return nil, &domain.StoreError{Op: "link by slug", Err: err}
	}
	return &l, nil
}

// SlugExists reports whether any owner already uses slug.
func (c *Catalog) SlugExists(ctx context.Context, slug string) (bool, error) {
	rows, err := c.db.Execute(ctx, `SELECT 1 AS one FROM links WHERE slug = ? LIMIT 1`, slug)
	if err != nil {
		return false, &domain.StoreError{Op: "slug exists", Err: err}
	}
	return len(rows) > 0, nil
}

// RecordVisit appends a visit and bumps the link's click counter. The two
// writes share a transaction when the executor offers one.
func (c *Catalog) RecordVisit(ctx context.Context, v domain.Visit) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	write := func(q ports.QueryExecutor) error {
		if _, err := q.Execute(ctx,
			`INSERT INTO analytics (link_id, country, city, device, browser, os, referer, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			v.LinkID, rowcodec.NullString(v.Country), rowcodec.NullString(v.City), rowcodec.NullString(v.Device),
			rowcodec.NullString(v.Browser), rowcodec.NullString(v.OS), rowcodec.NullString(v.Referer),
			rowcodec.Millis(v.CreatedAt)); err != nil {
			return &domain.StoreError{Op: "insert visit", Err: err}
		}
		if _, err := q.Execute(ctx, `UPDATE links SET click_count = click_count + 1 WHERE id = ?`, v.LinkID); err != nil {
			return &domain.StoreError{Op: "increment clicks", Err: err}
		}
		return nil
	}

	if tx, ok := c.db.(ports.Transactor); ok {
		return tx.InTx(ctx, write)
	}
	return write(c.db)
}

var _ ports.LinkSource = (*Catalog)(nil)

// WebhookByToken finds the webhook that owns token.
func (c *Catalog) WebhookByToken(ctx context.Context, token string) (*domain.Webhook, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	rows, err := c.db.Execute(ctx, `SELECT `+rowcodec.WebhookColumns+` FROM webhooks WHERE token = ?`, token)
	if err != nil {
		return nil, &domain.StoreError{Op: "webhook by token", Err: err}
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	hook, err := rowcodec.DecodeWebhook(rows[0])
	if err != nil {
		return nil, &domain.StoreError{Op: "webhook by token", Err: err}
	}
	return &hook, nil
}
