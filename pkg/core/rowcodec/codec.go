// Package rowcodec converts column-keyed rows returned by a QueryExecutor
// into domain entities, and domain values into statement arguments.
//
// Timestamps are stored as epoch milliseconds and booleans as 0/1 integers.
package rowcodec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

// Column lists. Statements select these so every decoder sees the same shape.
const (
	LinkColumns     = "id, user_id, folder_id, original_url, slug, is_custom, expires_at, click_count, meta_title, meta_description, meta_favicon, screenshot_url, note, created_at"
	FolderColumns   = "id, user_id, name, icon, created_at"
	TagColumns      = "id, user_id, name, color, created_at"
	UploadColumns   = "id, user_id, storage_key, file_name, file_type, file_size, public_url, created_at"
	WebhookColumns  = "id, user_id, token, rate_limit, created_at, updated_at"
	SettingsColumns = "user_id, preview_style, updated_at"
	VisitColumns    = "id, link_id, country, city, device, browser, os, referer, created_at"
)

func DecodeLink(row ports.Row) (domain.Link, error) {
	r := reader{row: row}
	l := domain.Link{
		ID:              r.int64("id"),
		UserID:          r.str("user_id"),
		FolderID:        r.nullStr("folder_id"),
		OriginalURL:     r.str("original_url"),
		Slug:            r.str("slug"),
		IsCustom:        r.bool("is_custom"),
		ExpiresAt:       r.nullTime("expires_at"),
		ClickCount:      r.int64("click_count"),
		MetaTitle:       r.nullStr("meta_title"),
		MetaDescription: r.nullStr("meta_description"),
		MetaFavicon:     r.nullStr("meta_favicon"),
		ScreenshotURL:   r.nullStr("screenshot_url"),
		Note:            r.nullStr("note"),
		CreatedAt:       r.time("created_at"),
	}
	return l, r.wrap("link")
}

func DecodeFolder(row ports.Row) (domain.Folder, error) {
	r := reader{row: row}
	f := domain.Folder{
		ID:        r.str("id"),
		UserID:    r.str("user_id"),
		Name:      r.str("name"),
		Icon:      r.str("icon"),
		CreatedAt: r.time("created_at"),
	}
	return f, r.wrap("folder")
}

func DecodeTag(row ports.Row) (domain.Tag, error) {
	r := reader{row: row}
	t := domain.Tag{
		ID:        r.str("id"),
		UserID:    r.str("user_id"),
		Name:      r.str("name"),
		Color:     r.str("color"),
		CreatedAt: r.time("created_at"),
	}
	return t, r.wrap("tag")
}

func DecodeUpload(row ports.Row) (domain.Upload, error) {
	r := reader{row: row}
	u := domain.Upload{
		ID:        r.str("id"),
		UserID:    r.str("user_id"),
		Key:       r.str("storage_key"),
		FileName:  r.str("file_name"),
		FileType:  r.str("file_type"),
		FileSize:  r.int64("file_size"),
		PublicURL: r.str("public_url"),
		CreatedAt: r.time("created_at"),
	}
	return u, r.wrap("upload")
}

func DecodeWebhook(row ports.Row) (domain.Webhook, error) {
	r := reader{row: row}
	w := domain.Webhook{
		ID:        r.str("id"),
		UserID:    r.str("user_id"),
		Token:     r.str("token"),
		RateLimit: int(r.int64("rate_limit")),
		CreatedAt: r.time("created_at"),
		UpdatedAt: r.time("updated_at"),
	}
	return w, r.wrap("webhook")
}

func DecodeSettings(row ports.Row) (domain.UserSettings, error) {
	r := reader{row: row}
	s := domain.UserSettings{
		UserID:       r.str("user_id"),
		PreviewStyle: r.str("preview_style"),
		UpdatedAt:    r.time("updated_at"),
	}
	return s, r.wrap("settings")
}

func DecodeVisit(row ports.Row) (domain.Visit, error) {
	r := reader{row: row}
	v := domain.Visit{
		ID:        r.int64("id"),
		LinkID:    r.int64("link_id"),
		Country:   r.nullStr("country"),
		City:      r.nullStr("city"),
		Device:    r.nullStr("device"),
		Browser:   r.nullStr("browser"),
		OS:        r.nullStr("os"),
		Referer:   r.nullStr("referer"),
		CreatedAt: r.time("created_at"),
	}
	return v, r.wrap("visit")
}

// DecodeBreakdown reads a (name, count) aggregate row. A NULL name becomes "Unknown".
func DecodeBreakdown(row ports.Row) (domain.Breakdown, error) {
	r := reader{row: row}
	b := domain.Breakdown{Count: r.int64("count")}
	if name := r.nullStr("name"); name != nil && *name != "" {
		b.Name = *name
	} else {
		b.Name = "Unknown"
	}
	return b, r.wrap("breakdown")
}

// Int64 reads a single integer column, as produced by COUNT or SUM.
func Int64(row ports.Row, col string) (int64, error) {
	r := reader{row: row}
	v := r.int64(col)
	return v, r.wrap(col)
}

// DecodeAll applies decode to every row, stopping at the first error.
func DecodeAll[T any](rows []ports.Row, decode func(ports.Row) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Millis encodes t for storage.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// NullMillis encodes an optional timestamp; nil becomes SQL NULL.
func NullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

// NullString encodes an optional string; nil becomes SQL NULL.
func NullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Bool encodes b as 0/1.
func Bool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// FromMillis decodes a stored timestamp.
func FromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

type reader struct {
	row ports.Row
	err error
}

func (r *reader) wrap(entity string) error {
	if r.err == nil {
		return nil
	}
	return fmt.Errorf("decode %s: %w", entity, r.err)
}

func (r *reader) value(col string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.row[col]
	if !ok {
		r.err = fmt.Errorf("missing column %q", col)
		return nil, false
	}
	return v, true
}

func (r *reader) int64(col string) int64 {
	v, ok := r.value(col)
	if !ok || v == nil {
		return 0
	}
	n, err := toInt64(v)
	if err != nil {
		r.err = fmt.Errorf("column %q: %w", col, err)
	}
	return n
}

func (r *reader) str(col string) string {
	if s := r.nullStr(col); s != nil {
		return *s
	}
	return ""
}

func (r *reader) nullStr(col string) *string {
	v, ok := r.value(col)
	if !ok || v == nil {
		return nil
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		r.err = fmt.Errorf("column %q: unexpected type %T", col, v)
		return nil
	}
	return &s
}

func (r *reader) bool(col string) bool {
	v, ok := r.value(col)
	if !ok || v == nil {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	n, err := toInt64(v)
	if err != nil {
		r.err = fmt.Errorf("column %q: %w", col, err)
	}
	return n != 0
}

func (r *reader) time(col string) time.Time {
	if t := r.nullTime(col); t != nil {
		return *t
	}
	return time.Time{}
}

func (r *reader) nullTime(col string) *time.Time {
	v, ok := r.value(col)
	if !ok || v == nil {
		return nil
	}
	if t, isTime := v.(time.Time); isTime {
		t = t.UTC()
		return &t
	}
	n, err := toInt64(v)
	if err != nil {
		r.err = fmt.Errorf("column %q: %w", col, err)
		return nil
	}
	t := FromMillis(n)
	return &t
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case bool:
		return Bool(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
