package domain

import "time"

// Upload records a file the owner stored in object storage.
type Upload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	PublicURL string    `json:"public_url"`
	CreatedAt time.Time `json:"created_at"`
}

type NewUpload struct {
	Key       string `json:"key" validate:"required,max=512"`
	FileName  string `json:"file_name" validate:"required,max=255"`
	FileType  string `json:"file_type" validate:"required,max=128"`
	FileSize  int64  `json:"file_size" validate:"gte=0"`
	PublicURL string `json:"public_url" validate:"required,url"`
}

// UploadPatch renames an upload or repoints it after the object moved.
type UploadPatch struct {
	FileName  *string `json:"file_name"`
	PublicURL *string `json:"public_url"`
}
