package scoped

import (
	"context"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
)

// CreateUpload records metadata for a file already placed in object storage.
func (r *Repository) CreateUpload(ctx context.Context, in domain.NewUpload) (*domain.Upload, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, r.db, "create upload",
		`INSERT INTO uploads (id, user_id, storage_key, file_name, file_type, file_size, public_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+rowcodec.UploadColumns,
		newID(), r.owner, in.Key, in.FileName, in.FileType, in.FileSize, in.PublicURL, rowcodec.Millis(r.now()))
	if err != nil {
		return nil, err
	}
	return first("create upload", rows, rowcodec.DecodeUpload)
}

func (r *Repository) GetUpload(ctx context.Context, id string) (*domain.Upload, error) {
	rows, err := r.query(ctx, r.db, "get upload",
		`SELECT `+rowcodec.UploadColumns+` FROM uploads WHERE id = ? AND user_id = ?`, id, r.owner)
	if err != nil {
		return nil, err
	}
	return first("get upload", rows, rowcodec.DecodeUpload)
}

func (r *Repository) ListUploads(ctx context.Context) ([]domain.Upload, error) {
	rows, err := r.query(ctx, r.db, "list uploads",
		`SELECT `+rowcodec.UploadColumns+` FROM uploads WHERE user_id = ? ORDER BY created_at DESC, id`, r.owner)
	if err != nil {
		return nil, err
	}
	return all("list uploads", rows, rowcodec.DecodeUpload)
}

func (r *Repository) UpdateUpload(ctx context.Context, id string, p domain.UploadPatch) (*domain.Upload, error) {
	var set setList
	if p.FileName != nil {
		if err := validateVar("file_name", *p.FileName, "required,max=255"); err != nil {
			return nil, err
		}
		set.add("file_name", *p.FileName)
	}
	if p.PublicURL != nil {
		if err := validateVar("public_url", *p.PublicURL, "required,url"); err != nil {
			return nil, err
		}
		set.add("public_url", *p.PublicURL)
	}
	if set.empty() {
		return r.GetUpload(ctx, id)
	}

	args := append(set.args, id, r.owner)
	rows, err := r.query(ctx, r.db, "update upload",
		`UPDATE uploads SET `+set.String()+` WHERE id = ? AND user_id = ? RETURNING `+rowcodec.UploadColumns, args...)
	if err != nil {
		return nil, err
	}
	return first("update upload", rows, rowcodec.DecodeUpload)
}

// DeleteUpload removes the metadata row. Removing the stored object is the
// caller's job.
func (r *Repository) DeleteUpload(ctx context.Context, id string) (bool, error) {
	rows, err := r.query(ctx, r.db, "delete upload",
		`DELETE FROM uploads WHERE id = ? AND user_id = ? RETURNING id`, id, r.owner)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
