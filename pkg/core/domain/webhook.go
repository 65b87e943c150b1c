package domain

import "time"

const (
	MinWebhookRateLimit     = 1
	MaxWebhookRateLimit     = 1000
	DefaultWebhookRateLimit = 60
)

// Webhook is the single programmatic-access endpoint an owner may have.
type Webhook struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	RateLimit int       `json:"rate_limit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WebhookInput is the desired state for UpsertWebhook. An empty Token keeps
// the existing token, or generates one on first insert.
type WebhookInput struct {
	Token     string `json:"token" validate:"omitempty,min=16,max=128"`
	RateLimit int    `json:"rate_limit" validate:"min=1,max=1000"`
}
