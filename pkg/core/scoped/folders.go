package scoped

import (
	"context"
	"strings"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

func (r *Repository) CreateFolder(ctx context.Context, in domain.NewFolder) (*domain.Folder, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = strings.TrimSpace(in.Icon)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Icon == "" {
		in.Icon = domain.DefaultFolderIcon
	}

	rows, err := r.query(ctx, r.db, "create folder",
		`INSERT INTO folders (id, user_id, name, icon, created_at) VALUES (?, ?, ?, ?, ?) RETURNING `+rowcodec.FolderColumns,
		newID(), r.owner, in.Name, in.Icon, rowcodec.Millis(r.now()))
	if err != nil {
		return nil, err
	}
	return first("create folder", rows, rowcodec.DecodeFolder)
}

func (r *Repository) GetFolder(ctx context.Context, id string) (*domain.Folder, error) {
	rows, err := r.query(ctx, r.db, "get folder",
		`SELECT `+rowcodec.FolderColumns+` FROM folders WHERE id = ? AND user_id = ?`, id, r.owner)
	if err != nil {
		return nil, err
	}
	return first("get folder", rows, rowcodec.DecodeFolder)
}

func (r *Repository) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	rows, err := r.query(ctx, r.db, "list folders",
		`SELECT `+rowcodec.FolderColumns+` FROM folders WHERE user_id = ? ORDER BY created_at, id`, r.owner)
	if err != nil {
		return nil, err
	}
	return all("list folders", rows, rowcodec.DecodeFolder)
}

func (r *Repository) UpdateFolder(ctx context.Context, id string, p domain.FolderPatch) (*domain.Folder, error) {
	var set setList
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := validateVar("name", name, "required,max=64"); err != nil {
			return nil, err
		}
		set.add("name", name)
	}
	if p.Icon != nil {
		icon := strings.TrimSpace(*p.Icon)
		if err := validateVar("icon", icon, "max=32"); err != nil {
			return nil, err
		}
		if icon == "" {
			icon = domain.DefaultFolderIcon
		}
		set.add("icon", icon)
	}
	if set.empty() {
		return r.GetFolder(ctx, id)
	}

	args := append(set.args, id, r.owner)
	rows, err := r.query(ctx, r.db, "update folder",
		`UPDATE folders SET `+set.String()+` WHERE id = ? AND user_id = ? RETURNING `+rowcodec.FolderColumns, args...)
	if err != nil {
		return nil, err
	}
	return first("update folder", rows, rowcodec.DecodeFolder)
}

// DeleteFolder removes the folder and detaches the owner's links from it.
// The links themselves are kept.
func (r *Repository) DeleteFolder(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.atomically(ctx, func(q ports.QueryExecutor) error {
		rows, err := r.query(ctx, q, "delete folder",
			`DELETE FROM folders WHERE id = ? AND user_id = ? RETURNING id`, id, r.owner)
		if err != nil || len(rows) == 0 {
			return err
		}
		deleted = true
		_, err = r.query(ctx, q, "detach folder links",
			`UPDATE links SET folder_id = NULL WHERE folder_id = ? AND user_id = ?`, id, r.owner)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
