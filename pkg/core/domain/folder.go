package domain

import "time"

const DefaultFolderIcon = "folder"

type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

type NewFolder struct {
	Name string `json:"name" validate:"required,max=64"`
	Icon string `json:"icon" validate:"omitempty,max=32"`
}

type FolderPatch struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}
