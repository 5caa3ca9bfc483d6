// Package types contains the core capability contracts for dbscope.
// They live apart from the main database package to avoid import cycles and to
// make them easily accessible for mocking and testing.
//
//nolint:revive // Package name "types" is intentionally generic to avoid circular imports
package types

import (
	"context"
)

// Database vendor identifiers shared across the database packages.
type Vendor = string

const (
	PostgreSQL Vendor = "postgresql"
	Oracle     Vendor = "oracle"
)

// Conn is the asynchronous connection capability every wrapped connection must
// satisfy. The observation layer implements this same interface, so a wrapped
// connection is substitutable anywhere the inner connection type was used.
//
// A Conn represents a single logical connection. It is not safe for concurrent
// use by multiple callers unless the concrete implementation says otherwise.
type Conn interface {
	// BatchExecute runs one or more raw SQL statements without returning rows.
	BatchExecute(ctx context.Context, statements string) error

	// Load initiates execution of a structured query and returns a lazily
	// consumed row stream. Row I/O may continue after Load returns.
	Load(ctx context.Context, query Query) (RowStream, error)

	// ExecuteReturningCount executes a structured query to completion and
	// returns the number of rows affected.
	ExecuteReturningCount(ctx context.Context, query Query) (int64, error)

	// TransactionState returns the manager owning this connection's
	// transaction state machine.
	TransactionState() TransactionManager

	// Health checks connectivity.
	Health(ctx context.Context) error

	// Stats returns driver-level connection statistics.
	Stats() (map[string]any, error)

	// Close releases the connection.
	Close() error

	// DatabaseType returns the vendor identifier.
	DatabaseType() string
}

// TransactionManager tracks transaction nesting and performs begin, commit and
// rollback. Every operation receives the connection it manages; a delegating
// manager extracts the real connection from a wrapper before routing the call,
// so the state machine always lives in exactly one place.
type TransactionManager interface {
	BeginTransaction(ctx context.Context, conn Conn) error
	CommitTransaction(ctx context.Context, conn Conn) error
	RollbackTransaction(ctx context.Context, conn Conn) error

	// Status returns the live status object, never a copy. Callers observing
	// or mutating depth operate on the real state machine.
	Status(conn Conn) *TransactionStatus
}
