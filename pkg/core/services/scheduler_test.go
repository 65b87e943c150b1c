package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

type countingSyncer struct{ runs atomic.Int32 }

func (c *countingSyncer) Run(context.Context) domain.SyncResult {
	c.runs.Add(1)
	return domain.SyncResult{Status: domain.SyncSkipped}
}

func TestNewSyncScheduler_InvalidSpec(t *testing.T) {
	_, err := NewSyncScheduler("every so often", &countingSyncer{}, nil)
	assert.Error(t, err)
}

func TestSyncScheduler_Tick(t *testing.T) {
	syncer := &countingSyncer{}
	s, err := NewSyncScheduler("*/5 * * * *", syncer, nil)
	require.NoError(t, err)

	s.tick()
	assert.Equal(t, int32(1), syncer.runs.Load())

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
