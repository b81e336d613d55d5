package repositories

import (
	"database/sql"
	"fmt"
)

// UnitOfWork is one atomic group of writes. Repositories run against it as a
// plain SQLExecutor; the owning service decides when to Commit. Rollback after
// Commit is a no-op, so `defer uow.Rollback()` is always safe.
type UnitOfWork interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// TxManager hands out units of work. The order fulfillment state machine and
// the ledger-append procedure both receive a UnitOfWork as a parameter, so the
// same atomic primitive serves every mutating path.
type TxManager interface {
	Begin() (UnitOfWork, error)
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager backed by a database connection pool.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) Begin() (UnitOfWork, error) {
	tx, err := m.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: beginning transaction: %v", ErrDatabaseError, err)
	}
	// *sql.Tx already satisfies UnitOfWork.
	return tx, nil
}
