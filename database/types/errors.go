package types

import "errors"

// Sentinel errors surfaced by connection implementations and transaction
// managers. The observation layer never constructs errors of its own; anything
// else a caller sees comes verbatim from the underlying driver.
var (
	// ErrConnClosed is returned when an operation is attempted on a closed connection.
	ErrConnClosed = errors.New("dbscope: connection is closed")

	// ErrNoTransaction is returned by commit or rollback without an open transaction.
	ErrNoTransaction = errors.New("dbscope: no transaction in progress")

	// ErrBrokenTransaction is returned when the transaction state has been
	// poisoned by an earlier failure and can no longer be trusted.
	ErrBrokenTransaction = errors.New("dbscope: transaction state is broken")
)
