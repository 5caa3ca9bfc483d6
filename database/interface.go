package database

import (
	"github.com/dbscope/dbscope/database/types"
)

// Conn is the async connection capability implemented by vendor adapters and
// by the observation wrapper itself. This type alias keeps the capability
// reachable from the main package while the definitions live in
// database/types to avoid import cycles.
type Conn = types.Conn

// TransactionManager is the transaction lifecycle capability.
type TransactionManager = types.TransactionManager

// TransactionStatus is the live transaction state machine.
type TransactionStatus = types.TransactionStatus

// Query is the structured query representation accepted by Load and
// ExecuteReturningCount.
type Query = types.Query

// RawQuery adapts plain SQL text and bind arguments to Query.
type RawQuery = types.RawQuery

// RowStream is the lazy row cursor returned by Load.
type RowStream = types.RowStream
