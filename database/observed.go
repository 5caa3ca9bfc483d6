// Package database provides transparent query observation for database
// connections: wrap a connection and every structured query is timed and
// logged at a level determined by its latency, with the underlying semantics
// untouched.
package database

import (
	"github.com/dbscope/dbscope/database/internal/observing"
)

// Re-export the internal observing implementation as the public API
type (
	ObservedConnection         = observing.Connection
	ObservedTransactionManager = observing.TxManager
	ObservingContext           = observing.Context
	ObservingSettings          = observing.Settings
)

// Re-export internal functions as public API
var (
	NewObservedConnection         = observing.NewConnection
	NewObservingSettings          = observing.NewSettings
	LogQuery                      = observing.LogQuery
	RegisterConnectionPoolMetrics = observing.RegisterConnectionPoolMetrics
)

// Re-export internal constants
const (
	DefaultSlowQueryThreshold     = observing.DefaultSlowQueryThreshold
	DefaultCriticalQueryThreshold = observing.DefaultCriticalQueryThreshold
	DefaultMaxQueryLength         = observing.DefaultMaxQueryLength
)
