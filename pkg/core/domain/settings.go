package domain

import "time"

// PreviewStyles lists the accepted values for UserSettings.PreviewStyle.
var PreviewStyles = []string{"favicon", "card", "screenshot", "none"}

const DefaultPreviewStyle = "favicon"

type UserSettings struct {
	UserID       string    `json:"user_id"`
	PreviewStyle string    `json:"preview_style"`
	UpdatedAt    time.Time `json:"updated_at"`
}
