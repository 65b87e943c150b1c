package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

// SyncScheduler triggers a sync on a cron schedule. A tick that arrives while
// the previous run is still going is skipped.
type SyncScheduler struct {
	cron   *cron.Cron
	syncer ports.Syncer
	logger *slog.Logger
}

func NewSyncScheduler(spec string, syncer ports.Syncer, logger *slog.Logger) (*SyncScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger}

	s := &SyncScheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		syncer: syncer,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *SyncScheduler) Start() {
	s.logger.Info("Sync scheduler starting")
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one until ctx is done.
func (s *SyncScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Sync still running at shutdown")
	}
}

func (s *SyncScheduler) tick() {
	res := s.syncer.Run(context.Background())
	s.logger.Debug("Scheduled sync finished", "status", res.Status, "synced", res.Synced, "failed", res.Failed)
}

// cronLogger routes cron's logging through slog.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
