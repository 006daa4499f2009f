package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the querier seam shared by *sql.DB and *sql.Tx. Repository
// methods that must participate in a caller-owned transaction take a
// DBTX instead of reaching for the pool.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager is the explicit unit-of-work boundary. Every mutation that
// spans more than one row runs inside WithinTx; the function either
// commits as a whole or rolls back on any error.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx DBTX) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager backed by database/sql transactions.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) WithinTx(ctx context.Context, fn func(tx DBTX) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
