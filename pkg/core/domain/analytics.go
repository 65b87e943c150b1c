package domain

import "time"

// Visit is one click on a short link. Visits are append-only and belong
// to an owner only through their link.
type Visit struct {
	ID        int64     `json:"id"`
	LinkID    int64     `json:"link_id"`
	Country   *string   `json:"country"`
	City      *string   `json:"city"`
	Device    *string   `json:"device"`
	Browser   *string   `json:"browser"`
	OS        *string   `json:"os"`
	Referer   *string   `json:"referer"`
	CreatedAt time.Time `json:"created_at"`
}

// OverviewStats summarises an owner's account.
type OverviewStats struct {
	TotalLinks   int64 `json:"total_links"`
	TotalClicks  int64 `json:"total_clicks"`
	TotalFolders int64 `json:"total_folders"`
	TotalTags    int64 `json:"total_tags"`
	ActiveLinks  int64 `json:"active_links"`
}

// Breakdown is one bucket of a grouped count.
type Breakdown struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// AnalyticsStats groups an owner's visits by dimension.
type AnalyticsStats struct {
	TotalClicks int64       `json:"total_clicks"`
	Devices     []Breakdown `json:"devices"`
	Browsers    []Breakdown `json:"browsers"`
	OS          []Breakdown `json:"os"`
	Countries   []Breakdown `json:"countries"`
}

// AnalyticsFilter narrows GetAnalyticsStats to one link and/or a time window.
type AnalyticsFilter struct {
	LinkID int64
	Since  *time.Time
}
