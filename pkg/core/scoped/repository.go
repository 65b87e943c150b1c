// Package scoped is the tenant-isolating data access layer.
//
// A Repository is bound to exactly one owner when it is built. Every
// statement it issues carries that owner as a predicate, so a caller cannot
// read or change another owner's rows by forgetting a filter. Rows that are
// missing and rows that belong to someone else both surface as
// domain.ErrNotFound.
package scoped

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/linkvault/pkg/core/dirty"
	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
	"github.com/wadjakorntonsri/linkvault/pkg/ports"
)

type Repository struct {
	db    ports.QueryExecutor
	owner string
	dirty ports.DirtyTracker
	now   func() time.Time
}

// New binds a repository to ownerID. Link mutations mark tracker dirty;
// a nil tracker means the process-wide dirty.Default.
func New(db ports.QueryExecutor, ownerID string, tracker ports.DirtyTracker) (*Repository, error) {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return nil, domain.ErrInvalidOwner
	}
	if db == nil {
		return nil, errors.New("scoped: nil query executor")
	}
	if tracker == nil {
		tracker = dirty.Default
	}
	return &Repository{
		db:    db,
		owner: owner,
		dirty: tracker,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}, nil
}

// OwnerID returns the identity this repository is bound to.
func (r *Repository) OwnerID() string { return r.owner }

// atomically runs fn inside a transaction when the executor supports one.
// Otherwise the statements run in order and a crash between them can leave
// dependents behind until the next repair.
func (r *Repository) atomically(ctx context.Context, fn func(q ports.QueryExecutor) error) error {
	if tx, ok := r.db.(ports.Transactor); ok {
		return tx.InTx(ctx, fn)
	}
	return fn(r.db)
}

func (r *Repository) query(ctx context.Context, q ports.QueryExecutor, op, stmt string, args ...any) ([]ports.Row, error) {
	rows, err := q.Execute(ctx, stmt, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func storeErr(op string, err error) error {
	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return &domain.StoreError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLITE_CONSTRAINT_UNIQUE") ||
		strings.Contains(msg, "duplicate key value")
}

// first decodes the first row, or reports ErrNotFound when there is none.
func first[T any](op string, rows []ports.Row, decode func(ports.Row) (T, error)) (*T, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	v, err := decode(rows[0])
	if err != nil {
		return nil, &domain.StoreError{Op: op, Err: err}
	}
	return &v, nil
}

func all[T any](op string, rows []ports.Row, decode func(ports.Row) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decode(row)
		if err != nil {
			return nil, &domain.StoreError{Op: op, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// qualify prefixes every column in a comma-separated list with alias.
func qualify(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// setList accumulates "col = ?" fragments for partial updates.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) empty() bool { return len(s.cols) == 0 }

func (s *setList) String() string { return strings.Join(s.cols, ", ") }

func newID() string { return uuid.NewString() }
