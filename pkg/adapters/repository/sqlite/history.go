package sqlite

import (
	"context"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/core/rowcodec"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

const DefaultHistoryLimit = 50

// HistoryLog keeps the most recent sync runs in the sync_history table and
// trims older rows on every write.
type HistoryLog struct {
	db    ports.QueryExecutor
	limit int
}

func NewHistoryLog(db ports.QueryExecutor, limit int) *HistoryLog {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	return &HistoryLog{db: db, limit: limit}
}

func (h *HistoryLog) Record(ctx context.Context, e domain.SyncHistoryEntry) error {
	var errText any
	if e.Error != "" {
		errText = e.Error
	}
	_, err := h.db.Execute(ctx,
		`INSERT INTO sync_history (timestamp, status, synced, failed, total, duration_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rowcodec.Millis(e.Timestamp), string(e.Status), e.Synced, e.Failed, e.Total, e.DurationMs, errText)
	if err != nil {
		return err
	}

	_, err = h.db.Execute(ctx,
		`DELETE FROM sync_history WHERE id NOT IN (SELECT id FROM sync_history ORDER BY id DESC LIMIT ?)`,
		h.limit)
	return err
}

// Recent returns up to limit entries, newest first.
func (h *HistoryLog) Recent(ctx context.Context, limit int) ([]domain.SyncHistoryEntry, error) {
	if limit < 1 || limit > h.limit {
		limit = h.limit
	}
	rows, err := h.db.Execute(ctx,
		`SELECT timestamp, status, synced, failed, total, duration_ms, error FROM sync_history ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SyncHistoryEntry, 0, len(rows))
	for _, row := range rows {
		e, err := decodeHistory(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeHistory(row ports.Row) (domain.SyncHistoryEntry, error) {
	var e domain.SyncHistoryEntry
	ts, err := rowcodec.Int64(row, "timestamp")
	if err != nil {
		return e, err
	}
	e.Timestamp = rowcodec.FromMillis(ts)

	status, _ := row["status"].(string)
	e.Status = domain.SyncStatus(status)

	counts := []struct {
		col string
		dst *int
	}{{"synced", &e.Synced}, {"failed", &e.Failed}, {"total", &e.Total}}
	for _, c := range counts {
		n, err := rowcodec.Int64(row, c.col)
		if err != nil {
			return e, err
		}
		*c.dst = int(n)
	}

	if e.DurationMs, err = rowcodec.Int64(row, "duration_ms"); err != nil {
		return e, err
	}
	if msg, ok := row["error"].(string); ok {
		e.Error = msg
	}
	return e, nil
}

var _ ports.SyncHistory = (*HistoryLog)(nil)
