// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-elect/db"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicate            = errors.New("duplicate record")
	ErrContention           = errors.New("transaction contention")
	ErrPhaseConflict        = errors.New("election phase changed concurrently")
	ErrActiveElectionExists = errors.New("an active election already exists")
)

const (
	maxTxAttempts = 3
	txBackoff     = 25 * time.Millisecond
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds every read and write the service performs. It runs either
// directly against the pool (Store) or inside a transaction (Tx).
type Queries struct {
	q       querier
	dialect db.Dialect
}

// Store is the entity store backed by a connection pool.
type Store struct {
	Queries
	db *sql.DB
}

// Tx is a Queries bound to one open transaction.
type Tx struct {
	Queries
}

// New wraps an open connection pool.
func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{
		Queries: Queries{q: conn, dialect: dialect},
		db:      conn,
	}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InTx runs fn inside a transaction and commits if fn returns nil.
// Lock conflicts are retried with linear backoff; after the last attempt the
// error wraps ErrContention. Any other error from fn is returned unchanged.
func (s *Store) InTx(ctx context.Context, fn func(*Tx) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !db.IsContention(err) {
			return err
		}

		lastErr = err
		slog.Warn("transaction contention", "attempt", attempt, "error", err)

		if attempt < maxTxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * txBackoff):
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrContention, lastErr)
}

func (s *Store) runTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{Queries: Queries{q: sqlTx, dialect: s.dialect}}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps everything else.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

// insertErr maps unique violations to ErrDuplicate.
func insertErr(err error, what string) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("insert %s: %w", what, err)
}

// requireRow turns a zero-row update into ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func (q *Queries) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := q.q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (q *Queries) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := q.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
