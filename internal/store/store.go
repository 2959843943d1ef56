// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the PostgreSQL-backed entity store. Each store
// wraps a *sql.DB; compound writes run inside a single transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the stores translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// ErrConflict is returned when a unique constraint rejects a write. Callers
// translate it into their domain error.
var ErrConflict = errors.New("unique constraint conflict")

// ConflictError reports which unique constraint rejected a write.
type ConflictError struct {
	Constraint string
	cause      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint %q: %v", e.Constraint, e.cause)
}

func (e *ConflictError) Unwrap() error { return e.cause }

// Is lets errors.Is(err, ErrConflict) match any ConflictError.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ErrMissingReference is returned when a foreign key points at nothing.
var ErrMissingReference = errors.New("referenced row does not exist")

// ErrCheckViolation is returned when a CHECK constraint rejects a write.
var ErrCheckViolation = errors.New("check constraint violation")

// translate maps PostgreSQL constraint errors to the store's sentinel
// errors, leaving every other error untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return &ConflictError{Constraint: pgErr.ConstraintName, cause: err}
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrMissingReference, pgErr.ConstraintName)
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrCheckViolation, pgErr.ConstraintName)
	}
	return err
}

// ConstraintOf returns the constraint name of a ConflictError, or "".
func ConstraintOf(err error) string {
	var c *ConflictError
	if errors.As(err, &c) {
		return c.Constraint
	}
	return ""
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// scanIDs reads a single int64 column from rows.
func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
