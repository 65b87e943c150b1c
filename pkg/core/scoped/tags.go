package scoped

import (
	"context"
	"strings"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

const tagNameRule = "required,max=30"

func (r *Repository) CreateTag(ctx context.Context, in domain.NewTag) (*domain.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Color == "" {
		in.Color = domain.DefaultTagColor
	}

	rows, err := r.query(ctx, r.db, "create tag",
		`INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?) RETURNING `+rowcodec.TagColumns,
		newID(), r.owner, in.Name, in.Color, rowcodec.Millis(r.now()))
	if err != nil {
		return nil, err
	}
	return first("create tag", rows, rowcodec.DecodeTag)
}

func (r *Repository) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	rows, err := r.query(ctx, r.db, "get tag",
		`SELECT `+rowcodec.TagColumns+` FROM tags WHERE id = ? AND user_id = ?`, id, r.owner)
	if err != nil {
		return nil, err
	}
	return first("get tag", rows, rowcodec.DecodeTag)
}

func (r *Repository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.query(ctx, r.db, "list tags",
		`SELECT `+rowcodec.TagColumns+` FROM tags WHERE user_id = ? ORDER BY name, id`, r.owner)
	if err != nil {
		return nil, err
	}
	return all("list tags", rows, rowcodec.DecodeTag)
}

func (r *Repository) UpdateTag(ctx context.Context, id string, p domain.TagPatch) (*domain.Tag, error) {
	var set setList
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := validateVar("name", name, tagNameRule); err != nil {
			return nil, err
		}
		set.add("name", name)
	}
	if p.Color != nil {
		if err := validateVar("color", *p.Color, "required,tagcolor"); err != nil {
			return nil, err
		}
		set.add("color", *p.Color)
	}
	if set.empty() {
		return r.GetTag(ctx, id)
	}

	args := append(set.args, id, r.owner)
	rows, err := r.query(ctx, r.db, "update tag",
		`UPDATE tags SET `+set.String()+` WHERE id = ? AND user_id = ? RETURNING `+rowcodec.TagColumns, args...)
	if err != nil {
		return nil, err
	}
	return first("update tag", rows, rowcodec.DecodeTag)
}

// DeleteTag removes the tag and every association that references it.
func (r *Repository) DeleteTag(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.atomically(ctx, func(q ports.QueryExecutor) error {
		rows, err := r.query(ctx, q, "delete tag",
			`DELETE FROM tags WHERE id = ? AND user_id = ? RETURNING id`, id, r.owner)
		if err != nil || len(rows) == 0 {
			return err
		}
		deleted = true
		_, err = r.query(ctx, q, "delete tag links", `DELETE FROM link_tags WHERE tag_id = ?`, id)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// AddTagToLink associates a tag with a link when both belong to the owner.
// It reports false, inserting nothing, if either is missing or foreign.
// Adding an existing association is a no-op that reports true.
func (r *Repository) AddTagToLink(ctx context.Context, linkID int64, tagID string) (bool, error) {
	var ok bool
	err := r.atomically(ctx, func(q ports.QueryExecutor) error {
		rows, err := r.query(ctx, q, "check link tag owners",
			`SELECT l.id FROM links l JOIN tags t ON t.id = ? AND t.user_id = ?
			 WHERE l.id = ? AND l.user_id = ?`,
			tagID, r.owner, linkID, r.owner)
		if err != nil || len(rows) == 0 {
			return err
		}
		ok = true

		// The ownership predicate is repeated so the insert stays guarded even
		// on executors without transactions.
		_, err = r.query(ctx, q, "add tag to link",
			`INSERT INTO link_tags (link_id, tag_id)
			 SELECT l.id, t.id FROM links l JOIN tags t ON t.id = ? AND t.user_id = ?
			 WHERE l.id = ? AND l.user_id = ?
			 ON CONFLICT (link_id, tag_id) DO NOTHING`,
			tagID, r.owner, linkID, r.owner)
		return err
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// RemoveTagFromLink deletes the association when the link belongs to the owner.
func (r *Repository) RemoveTagFromLink(ctx context.Context, linkID int64, tagID string) (bool, error) {
	rows, err := r.query(ctx, r.db, "remove tag from link",
		`DELETE FROM link_tags
		 WHERE link_id = ? AND tag_id = ?
		   AND link_id IN (SELECT id FROM links WHERE id = ? AND user_id = ?)
		 RETURNING link_id`,
		linkID, tagID, linkID, r.owner)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
