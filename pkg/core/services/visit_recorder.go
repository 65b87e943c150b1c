package services

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mssola/user_agent"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

// VisitSink persists an enriched visit.
type VisitSink interface {
	RecordVisit(ctx context.Context, v domain.Visit) error
}

// VisitEvent is the raw request data captured on redirect.
type VisitEvent struct {
	LinkID    int64
	UserAgent string
	Referer   string
	Country   string
	City      string
	At        time.Time
}

// VisitRecorder buffers visits and writes them from a single worker so the
// redirect path never waits on the store.
type VisitRecorder struct {
	sink   VisitSink
	logger *slog.Logger
	events chan VisitEvent
}

func NewVisitRecorder(sink VisitSink, logger *slog.Logger, buffer int) *VisitRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer < 1 {
		buffer = 1000
	}
	return &VisitRecorder{
		sink:   sink,
		logger: logger.With("component", "visits"),
		events: make(chan VisitEvent, buffer),
	}
}

// Start consumes events until ctx is cancelled.
func (r *VisitRecorder) Start(ctx context.Context) {
	r.logger.Info("Visit recorder starting")
	for {
		select {
		case ev := <-r.events:
			if err := r.sink.RecordVisit(ctx, enrich(ev)); err != nil {
				r.logger.Error("Failed to record visit", "link_id", ev.LinkID, "error", err)
			}
		case <-ctx.Done():
			r.logger.Info("Visit recorder stopping")
			return
		}
	}
}

// RecordAsync queues ev, dropping it when the buffer is full.
func (r *VisitRecorder) RecordAsync(ev VisitEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case r.events <- ev:
	default:
		visitsDropped.Inc()
		r.logger.Warn("Visit buffer full, dropping event", "link_id", ev.LinkID)
	}
}

func enrich(ev VisitEvent) domain.Visit {
	v := domain.Visit{
		LinkID:    ev.LinkID,
		Country:   optional(ev.Country),
		City:      optional(ev.City),
		Referer:   optional(refererHost(ev.Referer)),
		CreatedAt: ev.At.UTC(),
	}
	if ev.UserAgent == "" {
		return v
	}

	ua := user_agent.New(ev.UserAgent)
	name, _ := ua.Browser()
	v.Browser = optional(name)
	v.OS = optional(ua.OSInfo().Name)

	device := "Desktop"
	switch {
	case ua.Bot():
		device = "Bot"
	case ua.Mobile():
		device = "Mobile"
	}
	v.Device = &device
	return v
}

func refererHost(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return ref
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
