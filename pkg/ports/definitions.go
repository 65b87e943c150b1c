package ports

import (
	"context"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

// Row is one result row keyed by column name.
type Row map[string]any

// QueryExecutor runs a parameterized statement against the authoritative
// store and returns whatever rows it produced. It enforces no ownership.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, args ...any) ([]Row, error)
}

// Transactor is implemented by executors that can run several statements
// atomically. fn receives an executor bound to the transaction.
type Transactor interface {
	QueryExecutor
	InTx(ctx context.Context, fn func(tx QueryExecutor) error) error
}

// CacheClient is the edge key-value cache. None of its methods return errors:
// failures are logged and degrade to "not stored" / "absent".
type CacheClient interface {
	IsConfigured() bool
	Put(ctx context.Context, key, value string) bool
	Get(ctx context.Context, key string) (string, bool)
	Delete(ctx context.Context, key string) bool
	BulkPut(ctx context.Context, entries []domain.KVEntry) domain.BulkResult
}

// DirtyTracker records whether the store changed since the last full sync.
type DirtyTracker interface {
	MarkDirty()
	IsDirty() bool
	ClearDirty()
}

// LinkSource reads every link regardless of owner, for cache propagation.
type LinkSource interface {
	AllLinks(ctx context.Context) ([]domain.Link, error)
}

// SyncHistory is the rolling log of sync runs.
type SyncHistory interface {
	Record(ctx context.Context, entry domain.SyncHistoryEntry) error
	Recent(ctx context.Context, limit int) ([]domain.SyncHistoryEntry, error)
}

// Syncer runs one propagation of the store to the edge cache.
type Syncer interface {
	Run(ctx context.Context) domain.SyncResult
}
