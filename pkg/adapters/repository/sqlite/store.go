package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// Store is the authoritative relational store. It runs raw statements and
// returns column-keyed rows; it knows nothing about owners.
type Store struct {
	db *sql.DB
}

// Open connects to dbURL, picking the libsql driver for Turso URLs and the
// embedded SQLite driver otherwise, and applies the schema.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") || strings.HasPrefix(dbURL, "https://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	// A shared in-memory database disappears with its last connection and
	// locks whole tables between connections, so keep exactly one.
	if strings.Contains(dbURL, "mode=memory") || strings.Contains(dbURL, ":memory:") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Execute implements ports.QueryExecutor.
func (s *Store) Execute(ctx context.Context, query string, args ...any) ([]ports.Row, error) {
	return execute(ctx, s.db, query, args...)
}

// InTx implements ports.Transactor. The transaction is rolled back when fn
// returns an error and committed otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx ports.QueryExecutor) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(txExecutor{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type txExecutor struct {
	tx *sql.Tx
}

func (t txExecutor) Execute(ctx context.Context, query string, args ...any) ([]ports.Row, error) {
	return execute(ctx, t.tx, query, args...)
}

func execute(ctx context.Context, q queryer, query string, args ...any) ([]ports.Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []ports.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(ports.Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var (
	_ ports.QueryExecutor = (*Store)(nil)
	_ ports.Transactor    = (*Store)(nil)
)

// OpenMemory opens a private shared-cache in-memory database named name.
// Databases with different names are independent.
func OpenMemory(ctx context.Context, name string) (*Store, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_").Replace(name)
	return Open(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}
