package domain

import "time"

const MaxTagNameLength = 30

// TagColors is the fixed palette a tag colour must come from.
var TagColors = []string{
	"gray", "red", "orange", "amber", "yellow", "lime", "green", "teal",
	"cyan", "blue", "indigo", "violet", "purple", "pink", "rose",
}

const DefaultTagColor = "gray"

type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type NewTag struct {
	Name  string `json:"name" validate:"required,max=30"`
	Color string `json:"color" validate:"omitempty,tagcolor"`
}

type TagPatch struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}
