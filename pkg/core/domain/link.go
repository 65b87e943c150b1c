package domain

import "time"

// Link is a short slug pointing at a destination URL, owned by one user.
type Link struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	FolderID        *string    `json:"folder_id"`
	OriginalURL     string     `json:"original_url"`
	Slug            string     `json:"slug"`
	IsCustom        bool       `json:"is_custom"`
	ExpiresAt       *time.Time `json:"expires_at"`
	ClickCount      int64      `json:"click_count"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	MetaFavicon     *string    `json:"meta_favicon"`
	ScreenshotURL   *string    `json:"screenshot_url"`
	Note            *string    `json:"note"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Expired reports whether the link has an expiry in the past relative to now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// NewLink holds the fields a caller supplies when creating a link.
// The owner is never part of it; the repository binds it.
type NewLink struct {
	OriginalURL     string     `json:"original_url" validate:"required,url,max=2048"`
	Slug            string     `json:"slug" validate:"required,max=64"`
	IsCustom        bool       `json:"is_custom"`
	FolderID        *string    `json:"folder_id"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	MetaFavicon     *string    `json:"meta_favicon"`
	ScreenshotURL   *string    `json:"screenshot_url"`
	Note            *string    `json:"note"`
}

// LinkPatch is a partial update. Unset fields are left untouched.
type LinkPatch struct {
	OriginalURL     *string             `json:"original_url"`
	Slug            *string             `json:"slug"`
	IsCustom        *bool               `json:"is_custom"`
	FolderID        Nullable[string]    `json:"folder_id"`
	ExpiresAt       Nullable[time.Time] `json:"expires_at"`
	MetaTitle       Nullable[string]    `json:"meta_title"`
	MetaDescription Nullable[string]    `json:"meta_description"`
	MetaFavicon     Nullable[string]    `json:"meta_favicon"`
	ScreenshotURL   Nullable[string]    `json:"screenshot_url"`
	Note            Nullable[string]    `json:"note"`
}

// LinkFilter narrows ListLinks. Zero value lists everything the owner has.
type LinkFilter struct {
	FolderID string
	TagID    string
	Search   string
	Limit    int
	Offset   int
}

// LinkTag associates a link with a tag.
type LinkTag struct {
	LinkID int64  `json:"link_id"`
	TagID  string `json:"tag_id"`
}

// CachedLink is the projection of a Link stored in the edge cache under its slug.
// ExpiresAt is epoch milliseconds, nil for links that never expire.
type CachedLink struct {
	ID          int64  `json:"id"`
	OriginalURL string `json:"originalUrl"`
	ExpiresAt   *int64 `json:"expiresAt"`
}

// Cached projects l to the edge cache payload.
func (l *Link) Cached() CachedLink {
	c := CachedLink{ID: l.ID, OriginalURL: l.OriginalURL}
	if l.ExpiresAt != nil {
		ms := l.ExpiresAt.UnixMilli()
		c.ExpiresAt = &ms
	}
	return c
}

// Expired reports whether the cached entry is past its expiry.
func (c CachedLink) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && *c.ExpiresAt <= now.UnixMilli()
}
