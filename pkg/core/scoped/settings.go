package scoped

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
)

// GetWebhook returns the owner's webhook or ErrNotFound.
func (r *Repository) GetWebhook(ctx context.Context) (*domain.Webhook, error) {
	rows, err := r.query(ctx, r.db, "get webhook",
		`SELECT `+rowcodec.WebhookColumns+` FROM webhooks WHERE user_id = ?`, r.owner)
	if err != nil {
		return nil, err
	}
	return first("get webhook", rows, rowcodec.DecodeWebhook)
}

// UpsertWebhook converges the owner's webhook to in. An empty token keeps the
// stored one, or generates a fresh one when the webhook does not exist yet.
func (r *Repository) UpsertWebhook(ctx context.Context, in domain.WebhookInput) (*domain.Webhook, error) {
	in.Token = strings.TrimSpace(in.Token)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	keepToken := in.Token == ""
	token := in.Token
	if keepToken {
		var err error
		if token, err = newToken(); err != nil {
			return nil, err
		}
	}

	now := rowcodec.Millis(r.now())
	rows, err := r.query(ctx, r.db, "upsert webhook",
		`INSERT INTO webhooks (id, user_id, token, rate_limit, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			token = CASE WHEN ? THEN webhooks.token ELSE excluded.token END,
			rate_limit = excluded.rate_limit,
			updated_at = excluded.updated_at
		 RETURNING `+rowcodec.WebhookColumns,
		newID(), r.owner, token, in.RateLimit, now, now, rowcodec.Bool(keepToken))
	if err != nil {
		return nil, err
	}
	return first("upsert webhook", rows, rowcodec.DecodeWebhook)
}

// RegenerateWebhookToken replaces the token of an existing webhook.
func (r *Repository) RegenerateWebhookToken(ctx context.Context) (*domain.Webhook, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, r.db, "regenerate webhook token",
		`UPDATE webhooks SET token = ?, updated_at = ? WHERE user_id = ? RETURNING `+rowcodec.WebhookColumns,
		token, rowcodec.Millis(r.now()), r.owner)
	if err != nil {
		return nil, err
	}
	return first("regenerate webhook token", rows, rowcodec.DecodeWebhook)
}

func (r *Repository) DeleteWebhook(ctx context.Context) (bool, error) {
	rows, err := r.query(ctx, r.db, "delete webhook",
		`DELETE FROM webhooks WHERE user_id = ? RETURNING id`, r.owner)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// GetSettings returns the owner's settings, or the defaults when none were saved.
func (r *Repository) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	rows, err := r.query(ctx, r.db, "get settings",
		`SELECT `+rowcodec.SettingsColumns+` FROM user_settings WHERE user_id = ?`, r.owner)
	if err != nil {
		return nil, err
	}
	s, err := first("get settings", rows, rowcodec.DecodeSettings)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.UserSettings{UserID: r.owner, PreviewStyle: domain.DefaultPreviewStyle}, nil
	}
	return s, err
}

func (r *Repository) UpsertPreviewStyle(ctx context.Context, style string) (*domain.UserSettings, error) {
	style = strings.TrimSpace(style)
	if err := validateVar("preview_style", style, "required,oneof="+strings.Join(domain.PreviewStyles, " ")); err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, r.db, "upsert preview style",
		`INSERT INTO user_settings (user_id, preview_style, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET preview_style = excluded.preview_style, updated_at = excluded.updated_at
		 RETURNING `+rowcodec.SettingsColumns,
		r.owner, style, rowcodec.Millis(r.now()))
	if err != nil {
		return nil, err
	}
	return first("upsert preview style", rows, rowcodec.DecodeSettings)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
