package observing

import (
	"context"

	"github.com/dbscope/dbscope/database/types"
)

// TxManager satisfies the transaction-manager capability for an observed
// connection while delegating 100% of behavior and state to the wrapped
// connection's own manager. It carries no runtime state: duplicating
// transaction state between wrapper and inner connection would risk the two
// diverging (the wrapper believing a transaction is open after the inner
// connection rolled back on error), so every call routes through the single
// source of truth.
type TxManager struct{}

var _ types.TransactionManager = (*TxManager)(nil)

// unwrap peels the observation layer off conn so lifecycle calls reach the
// real manager with the real connection.
func unwrap(conn types.Conn) types.Conn {
	if oc, ok := conn.(*Connection); ok {
		return oc.conn
	}
	return conn
}

// BeginTransaction routes begin to the wrapped connection's manager.
func (m *TxManager) BeginTransaction(ctx context.Context, conn types.Conn) error {
	inner := unwrap(conn)
	return inner.TransactionState().BeginTransaction(ctx, inner)
}

// CommitTransaction routes commit to the wrapped connection's manager.
func (m *TxManager) CommitTransaction(ctx context.Context, conn types.Conn) error {
	inner := unwrap(conn)
	return inner.TransactionState().CommitTransaction(ctx, inner)
}

// RollbackTransaction routes rollback to the wrapped connection's manager.
func (m *TxManager) RollbackTransaction(ctx context.Context, conn types.Conn) error {
	inner := unwrap(conn)
	return inner.TransactionState().RollbackTransaction(ctx, inner)
}

// Status returns the inner manager's live status object, not a copy.
func (m *TxManager) Status(conn types.Conn) *types.TransactionStatus {
	inner := unwrap(conn)
	return inner.TransactionState().Status(inner)
}
