package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

const errNotConfigured = "edge cache not configured"

// SyncService propagates every link to the edge cache when the dirty flag
// says something changed since the last clean run.
type SyncService struct {
	source  ports.LinkSource
	cache   ports.CacheClient
	dirty   ports.DirtyTracker
	history ports.SyncHistory
	logger  *slog.Logger
	now     func() time.Time
}

func NewSyncService(source ports.LinkSource, cache ports.CacheClient, dirty ports.DirtyTracker, history ports.SyncHistory, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		source:  source,
		cache:   cache,
		dirty:   dirty,
		history: history,
		logger:  logger.With("component", "sync"),
		now:     time.Now,
	}
}

// Run performs one sync. It never panics past its boundary and always
// returns a result; every configured run leaves exactly one history entry.
func (s *SyncService) Run(ctx context.Context) (result domain.SyncResult) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("sync panicked", "panic", p)
			s.dirty.MarkDirty()
			result = domain.SyncResult{Status: domain.SyncError, Error: fmt.Sprintf("panic: %v", p)}
			s.record(ctx, s.now(), result)
		}
	}()

	if !s.cache.IsConfigured() {
		syncRuns.WithLabelValues("not_configured").Inc()
		return domain.SyncResult{Status: domain.SyncError, Error: errNotConfigured}
	}

	started := s.now()
	if !s.dirty.IsDirty() {
		result = domain.SyncResult{Status: domain.SyncSkipped}
		s.logger.Debug("sync skipped, nothing changed")
		s.record(ctx, started, result)
		return result
	}

	// Cleared before reading: a mutation that lands mid-run leaves the flag dirty.
	s.dirty.ClearDirty()
	links, err := s.source.AllLinks(ctx)
	if err != nil {
		s.dirty.MarkDirty()
		result = domain.SyncResult{
			Status:     domain.SyncError,
			DurationMs: s.now().Sub(started).Milliseconds(),
			Error:      "failed to read source: " + err.Error(),
		}
		s.logger.Error("sync could not read links", "error", err)
		s.record(ctx, started, result)
		return result
	}

	entries := make([]domain.KVEntry, 0, len(links))
	encodeFailed := 0
	for i := range links {
		payload, err := json.Marshal(links[i].Cached())
		if err != nil {
			encodeFailed++
			s.logger.Warn("sync could not encode link", "slug", links[i].Slug, "error", err)
			continue
		}
		entries = append(entries, domain.KVEntry{Key: links[i].Slug, Value: string(payload)})
	}

	bulk := s.cache.BulkPut(ctx, entries)
	failed := bulk.Failed + encodeFailed
	result = domain.SyncResult{
		Synced:     bulk.Success,
		Failed:     failed,
		Total:      len(links),
		DurationMs: s.now().Sub(started).Milliseconds(),
	}
	if failed == 0 {
		result.Status = domain.SyncSuccess
		s.logger.Info("sync complete", "synced", result.Synced, "duration_ms", result.DurationMs)
	} else {
		result.Status = domain.SyncError
		s.dirty.MarkDirty()
		result.Error = fmt.Sprintf("%d of %d entries failed", failed, len(links))
		s.logger.Warn("sync partially failed", "synced", result.Synced, "failed", failed, "total", len(links))
	}

	syncEntries.WithLabelValues("synced").Add(float64(result.Synced))
	syncEntries.WithLabelValues("failed").Add(float64(result.Failed))
	syncDuration.Observe(float64(result.DurationMs) / 1000)
	s.record(ctx, started, result)
	return result
}

func (s *SyncService) record(ctx context.Context, at time.Time, r domain.SyncResult) {
	syncRuns.WithLabelValues(string(r.Status)).Inc()
	if s.history == nil {
		return
	}
	err := s.history.Record(ctx, domain.SyncHistoryEntry{
		Timestamp:  at.UTC(),
		Status:     r.Status,
		Synced:     r.Synced,
		Failed:     r.Failed,
		Total:      r.Total,
		DurationMs: r.DurationMs,
		Error:      r.Error,
	})
	if err != nil {
		s.logger.Error("sync history write failed", "error", err)
	}
}

// History returns the most recent runs, newest first.
func (s *SyncService) History(ctx context.Context, limit int) ([]domain.SyncHistoryEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(ctx, limit)
}

var _ ports.Syncer = (*SyncService)(nil)
