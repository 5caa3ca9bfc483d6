// Package sqltx implements a depth-counting transaction manager for SQL
// vendors. Nesting beyond the first level maps onto savepoints, the ANSI
// technique shared by PostgreSQL and Oracle.
package sqltx

import (
	"context"
	"fmt"

	"github.com/dbscope/dbscope/database/types"
)

const savepointPrefix = "dbscope_sp_"

// Manager owns the transaction status for a single connection. Statements are
// issued through the managed connection's BatchExecute, so the transaction
// scope is the connection's own session.
type Manager struct {
	beginStatement string
	status         types.TransactionStatus
}

var _ types.TransactionManager = (*Manager)(nil)

// NewManager creates a Manager that opens top-level transactions with
// beginStatement ("BEGIN" for PostgreSQL, "SET TRANSACTION READ WRITE" for
// Oracle).
func NewManager(beginStatement string) *Manager {
	return &Manager{beginStatement: beginStatement}
}

// BeginTransaction opens a transaction, or a savepoint when one is already in
// progress.
func (m *Manager) BeginTransaction(ctx context.Context, conn types.Conn) error {
	if m.status.Broken() {
		return types.ErrBrokenTransaction
	}

	stmt := m.beginStatement
	if m.status.InTransaction() {
		stmt = "SAVEPOINT " + savepointName(m.status.Depth())
	}

	if err := conn.BatchExecute(ctx, stmt); err != nil {
		return err
	}
	m.status.Enter()
	return nil
}

// CommitTransaction commits the innermost transaction level. A failed
// top-level commit poisons the status: the session may or may not have
// committed, so its transaction state can no longer be trusted.
func (m *Manager) CommitTransaction(ctx context.Context, conn types.Conn) error {
	if m.status.Broken() {
		return types.ErrBrokenTransaction
	}
	if !m.status.InTransaction() {
		return types.ErrNoTransaction
	}

	stmt := "COMMIT"
	if m.status.Depth() > 1 {
		stmt = "RELEASE SAVEPOINT " + savepointName(m.status.Depth()-1)
	}

	if err := conn.BatchExecute(ctx, stmt); err != nil {
		if m.status.Depth() == 1 {
			m.status.SetBroken()
		}
		return err
	}
	m.status.Exit()
	return nil
}

// RollbackTransaction rolls back the innermost transaction level.
func (m *Manager) RollbackTransaction(ctx context.Context, conn types.Conn) error {
	if m.status.Broken() {
		return types.ErrBrokenTransaction
	}
	if !m.status.InTransaction() {
		return types.ErrNoTransaction
	}

	stmt := "ROLLBACK"
	if m.status.Depth() > 1 {
		stmt = "ROLLBACK TO SAVEPOINT " + savepointName(m.status.Depth()-1)
	}

	if err := conn.BatchExecute(ctx, stmt); err != nil {
		if m.status.Depth() == 1 {
			m.status.SetBroken()
		}
		return err
	}
	m.status.Exit()
	return nil
}

// Status returns the live status object.
func (m *Manager) Status(types.Conn) *types.TransactionStatus {
	return &m.status
}

func savepointName(depth int) string {
	return fmt.Sprintf("%s%d", savepointPrefix, depth)
}
