package scoped

import (
	"context"
	"strings"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

// CreateLink inserts a link owned by the bound owner. The slug must be
// globally unique; a duplicate fails with a StoreError wrapping ErrConflict.
func (r *Repository) CreateLink(ctx context.Context, in domain.NewLink) (*domain.Link, error) {
	in.OriginalURL = strings.TrimSpace(in.OriginalURL)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.FolderID != nil {
		if err := r.requireFolder(ctx, r.db, *in.FolderID); err != nil {
			return nil, err
		}
	}

	rows, err := r.query(ctx, r.db, "create link",
		`INSERT INTO links (user_id, folder_id, original_url, slug, is_custom, expires_at, click_count,
			meta_title, meta_description, meta_favicon, screenshot_url, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?)
		 RETURNING `+rowcodec.LinkColumns,
		r.owner, rowcodec.NullString(in.FolderID), in.OriginalURL, in.Slug, rowcodec.Bool(in.IsCustom),
		rowcodec.NullMillis(in.ExpiresAt), rowcodec.NullString(in.MetaTitle), rowcodec.NullString(in.MetaDescription),
		rowcodec.NullString(in.MetaFavicon), rowcodec.NullString(in.ScreenshotURL), rowcodec.NullString(in.Note),
		rowcodec.Millis(r.now()))
	if err != nil {
		return nil, err
	}
	link, err := first("create link", rows, rowcodec.DecodeLink)
	if err != nil {
		return nil, err
	}
	r.dirty.MarkDirty()
	return link, nil
}

func (r *Repository) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	rows, err := r.query(ctx, r.db, "get link",
		`SELECT `+rowcodec.LinkColumns+` FROM links WHERE id = ? AND user_id = ?`, id, r.owner)
	if err != nil {
		return nil, err
	}
	return first("get link", rows, rowcodec.DecodeLink)
}

func (r *Repository) GetLinkBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	rows, err := r.query(ctx, r.db, "get link by slug",
		`SELECT `+rowcodec.LinkColumns+` FROM links WHERE slug = ? AND user_id = ?`, slug, r.owner)
	if err != nil {
		return nil, err
	}
	return first("get link by slug", rows, rowcodec.DecodeLink)
}

// ListLinks returns the owner's links, newest first.
func (r *Repository) ListLinks(ctx context.Context, f domain.LinkFilter) ([]domain.Link, error) {
	query := `SELECT ` + rowcodec.LinkColumns + ` FROM links WHERE user_id = ?`
	args := []any{r.owner}

	if f.FolderID != "" {
		query += " AND folder_id = ?"
		args = append(args, f.FolderID)
	}
	if f.TagID != "" {
		query += " AND EXISTS (SELECT 1 FROM link_tags lt JOIN tags t ON t.id = lt.tag_id WHERE lt.link_id = links.id AND t.id = ? AND t.user_id = ?)"
		args = append(args, f.TagID, r.owner)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		query += " AND (original_url LIKE ? OR slug LIKE ? OR meta_title LIKE ? OR note LIKE ?)"
		args = append(args, like, like, like, like)
	}

	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	rows, err := r.query(ctx, r.db, "list links", query, args...)
	if err != nil {
		return nil, err
	}
	return all("list links", rows, rowcodec.DecodeLink)
}

// UpdateLink applies the fields set in p. An empty patch returns the link unchanged.
func (r *Repository) UpdateLink(ctx context.Context, id int64, p domain.LinkPatch) (*domain.Link, error) {
	var set setList
	if p.OriginalURL != nil {
		u := strings.TrimSpace(*p.OriginalURL)
		if err := validateVar("original_url", u, "required,url,max=2048"); err != nil {
			return nil, err
		}
		set.add("original_url", u)
	}
	if p.Slug != nil {
		s := strings.TrimSpace(*p.Slug)
		if err := validateVar("slug", s, "required,max=64"); err != nil {
			return nil, err
		}
		set.add("slug", s)
	}
	if p.IsCustom != nil {
		set.add("is_custom", rowcodec.Bool(*p.IsCustom))
	}
	if p.FolderID.Set {
		if p.FolderID.Value != nil {
			if err := r.requireFolder(ctx, r.db, *p.FolderID.Value); err != nil {
				return nil, err
			}
		}
		set.add("folder_id", rowcodec.NullString(p.FolderID.Value))
	}
	if p.ExpiresAt.Set {
		set.add("expires_at", rowcodec.NullMillis(p.ExpiresAt.Value))
	}
	for _, f := range []struct {
		col string
		val domain.Nullable[string]
	}{
		{"meta_title", p.MetaTitle},
		{"meta_description", p.MetaDescription},
		{"meta_favicon", p.MetaFavicon},
		{"screenshot_url", p.ScreenshotURL},
		{"note", p.Note},
	} {
		if f.val.Set {
			set.add(f.col, rowcodec.NullString(f.val.Value))
		}
	}

	if set.empty() {
		return r.GetLink(ctx, id)
	}

	args := append(set.args, id, r.owner)
	rows, err := r.query(ctx, r.db, "update link",
		`UPDATE links SET `+set.String()+` WHERE id = ? AND user_id = ? RETURNING `+rowcodec.LinkColumns, args...)
	if err != nil {
		return nil, err
	}
	link, err := first("update link", rows, rowcodec.DecodeLink)
	if err != nil {
		return nil, err
	}
	r.dirty.MarkDirty()
	return link, nil
}

// DeleteLink removes the link with its tag associations and visits.
// It reports false when the owner has no such link.
func (r *Repository) DeleteLink(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.atomically(ctx, func(q ports.QueryExecutor) error {
		rows, err := r.query(ctx, q, "delete link",
			`DELETE FROM links WHERE id = ? AND user_id = ? RETURNING id`, id, r.owner)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		deleted = true

		if _, err := r.query(ctx, q, "delete link tags", `DELETE FROM link_tags WHERE link_id = ?`, id); err != nil {
			return err
		}
		_, err = r.query(ctx, q, "delete link analytics", `DELETE FROM analytics WHERE link_id = ?`, id)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		r.dirty.MarkDirty()
	}
	return deleted, nil
}

// LinkTags lists the tags attached to one of the owner's links.
func (r *Repository) LinkTags(ctx context.Context, linkID int64) ([]domain.Tag, error) {
	rows, err := r.query(ctx, r.db, "list link tags",
		`SELECT `+qualify("t", rowcodec.TagColumns)+`
		 FROM link_tags lt
		 JOIN links l ON l.id = lt.link_id
		 JOIN tags t ON t.id = lt.tag_id
		 WHERE lt.link_id = ? AND l.user_id = ? AND t.user_id = ?
		 ORDER BY t.name`,
		linkID, r.owner, r.owner)
	if err != nil {
		return nil, err
	}
	return all("list link tags", rows, rowcodec.DecodeTag)
}

func (r *Repository) requireFolder(ctx context.Context, q ports.QueryExecutor, folderID string) error {
	rows, err := r.query(ctx, q, "check folder",
		`SELECT id FROM folders WHERE id = ? AND user_id = ?`, folderID, r.owner)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &domain.ValidationError{Field: "folder_id", Reason: "unknown folder"}
	}
	return nil
}
