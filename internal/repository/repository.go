// repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/store"
)

var (
	ErrNotFound      = apperr.ErrNotFound
	ErrAlreadyExists = apperr.ErrConflict
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// Repository is the PostgreSQL implementation of store.Store
type Repository struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

var _ store.Store = (*Repository)(nil)

// New creates a repository backed by pool
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// WithTx runs fn inside a transaction. Nested calls reuse the outer transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Repository{pool: r.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// mapError translates constraint violations into the service error taxonomy
func mapError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.Conflict("%s conflicts with an existing record", action)
		case "23503":
			return apperr.Validation("%s references a record that does not exist", action)
		case "23514":
			return apperr.Validation("%s violates constraint %s", action, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// expectOne converts an update or delete that touched no rows into ErrNotFound
func expectOne(tag pgconn.CommandTag, err error, action string) error {
	if err != nil {
		return mapError(err, action)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// collect scans every row with scan and closes rows
func collect[T any](rows pgx.Rows, scan func(scanner) (*T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
