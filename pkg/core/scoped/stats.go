package scoped

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
)

const breakdownLimit = 20

// GetOverviewStats counts the owner's links, folders, tags and clicks.
// Clicks come from the analytics table through each visit's parent link.
func (r *Repository) GetOverviewStats(ctx context.Context) (*domain.OverviewStats, error) {
	rows, err := r.query(ctx, r.db, "overview stats",
		`SELECT
			(SELECT COUNT(*) FROM links WHERE user_id = ?) AS total_links,
			(SELECT COUNT(*) FROM links WHERE user_id = ? AND (expires_at IS NULL OR expires_at > ?)) AS active_links,
			(SELECT COUNT(*) FROM analytics a JOIN links l ON l.id = a.link_id WHERE l.user_id = ?) AS total_clicks,
			(SELECT COUNT(*) FROM folders WHERE user_id = ?) AS total_folders,
			(SELECT COUNT(*) FROM tags WHERE user_id = ?) AS total_tags`,
		r.owner, r.owner, rowcodec.Millis(r.now()), r.owner, r.owner, r.owner)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &domain.OverviewStats{}, nil
	}

	var s domain.OverviewStats
	for _, f := range []struct {
		col string
		dst *int64
	}{
		{"total_links", &s.TotalLinks},
		{"active_links", &s.ActiveLinks},
		{"total_clicks", &s.TotalClicks},
		{"total_folders", &s.TotalFolders},
		{"total_tags", &s.TotalTags},
	} {
		if *f.dst, err = rowcodec.Int64(rows[0], f.col); err != nil {
			return nil, &domain.StoreError{Op: "overview stats", Err: err}
		}
	}
	return &s, nil
}

// GetAnalyticsStats breaks the owner's visits down by device, browser, OS and
// country. The five aggregate queries are independent and run concurrently.
func (r *Repository) GetAnalyticsStats(ctx context.Context, f domain.AnalyticsFilter) (*domain.AnalyticsStats, error) {
	where := "l.user_id = ?"
	args := []any{r.owner}
	if f.LinkID != 0 {
		where += " AND a.link_id = ?"
		args = append(args, f.LinkID)
	}
	if f.Since != nil {
		where += " AND a.created_at >= ?"
		args = append(args, rowcodec.Millis(*f.Since))
	}
	from := " FROM analytics a JOIN links l ON l.id = a.link_id WHERE " + where

	stats := &domain.AnalyticsStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := r.query(gctx, r.db, "analytics total", "SELECT COUNT(*) AS count"+from, args...)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			n, err := rowcodec.Int64(rows[0], "count")
			if err != nil {
				return &domain.StoreError{Op: "analytics total", Err: err}
			}
			stats.TotalClicks = n
		}
		return nil
	})

	for _, dim := range []struct {
		col string
		dst *[]domain.Breakdown
	}{
		{"device", &stats.Devices},
		{"browser", &stats.Browsers},
		{"os", &stats.OS},
		{"country", &stats.Countries},
	} {
		g.Go(func() error {
			op := "analytics by " + dim.col
			rows, err := r.query(gctx, r.db, op,
				"SELECT a."+dim.col+" AS name, COUNT(*) AS count"+from+
					" GROUP BY a."+dim.col+" ORDER BY count DESC, name LIMIT ?",
				append(append([]any{}, args...), breakdownLimit)...)
			if err != nil {
				return err
			}
			out, err := all(op, rows, rowcodec.DecodeBreakdown)
			if err != nil {
				return err
			}
			*dim.dst = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentVisits returns the newest visits on one of the owner's links.
func (r *Repository) RecentVisits(ctx context.Context, linkID int64, limit int) ([]domain.Visit, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.query(ctx, r.db, "recent visits",
		`SELECT `+qualify("a", rowcodec.VisitColumns)+`
		 FROM analytics a JOIN links l ON l.id = a.link_id
		 WHERE a.link_id = ? AND l.user_id = ?
		 ORDER BY a.created_at DESC, a.id DESC LIMIT ?`,
		linkID, r.owner, limit)
	if err != nil {
		return nil, err
	}
	return all("recent visits", rows, rowcodec.DecodeVisit)
}
