package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"evently/internal/domain"
)

// Postgres error codes the repositories translate into domain errors.
const (
	pqUniqueViolation           = "23505"
	pqForeignKeyViolation       = "23503"
	pqInvalidTextRepresentation = "22P02"
)

// Connector yields the shared database handle (see database.Manager).
type Connector interface {
	Connect(ctx context.Context) (*sql.DB, error)
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// executor returns the transaction bound to ctx, or the shared handle.
func executor(ctx context.Context, c Connector) (dbtx, error) {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx, nil
	}
	return c.Connect(ctx)
}

type transactor struct {
	conn Connector
}

// NewTransactor returns a domain.Transactor backed by database/sql transactions.
func NewTransactor(conn Connector) domain.Transactor {
	return &transactor{conn: conn}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the outer transaction.
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	db, err := t.conn.Connect(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

type rowScanner interface {
	Scan(dest ...any) error
}
