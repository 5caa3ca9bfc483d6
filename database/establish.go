package database

import (
	"fmt"
	"slices"

	"github.com/dbscope/dbscope/config"
	"github.com/dbscope/dbscope/database/oracle"
	"github.com/dbscope/dbscope/database/postgresql"
	"github.com/dbscope/dbscope/database/types"
	"github.com/dbscope/dbscope/logger"
)

// Vendor identifiers supported by Establish.
const (
	PostgreSQL = types.PostgreSQL
	Oracle     = types.Oracle
)

// Establish opens a connection according to cfg and returns it wrapped for
// observation. The concrete driver is selected by cfg.Vendor. Establishment
// itself is never timed or logged by the wrapper; a driver failure is
// returned unchanged.
func Establish(cfg *config.DatabaseConfig, log logger.Logger) (Conn, error) {
	var conn Conn
	var err error

	switch cfg.Vendor {
	case PostgreSQL:
		conn, err = postgresql.Establish(cfg, log)
	case Oracle:
		conn, err = oracle.Establish(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database vendor: %s (supported: %v)", cfg.Vendor, SupportedVendors())
	}

	if err != nil {
		return nil, err
	}

	wrapped := Wrap(conn, log, cfg)
	wrapped.SetCloseHook(RegisterConnectionPoolMetrics(conn, conn.DatabaseType()))
	return wrapped, nil
}

// Wrap decorates an already-established connection with observation. The
// wrapper is substitutable anywhere conn itself was used.
func Wrap(conn Conn, log logger.Logger, cfg *config.DatabaseConfig) *ObservedConnection {
	return NewObservedConnection(conn, log, cfg)
}

// ValidateVendor returns nil when vendor names a supported database vendor.
func ValidateVendor(vendor string) error {
	if !slices.Contains(SupportedVendors(), vendor) {
		return fmt.Errorf("unsupported database vendor: %s (supported: %v)", vendor, SupportedVendors())
	}
	return nil
}

// SupportedVendors lists the vendors Establish accepts.
func SupportedVendors() []string {
	return []string{PostgreSQL, Oracle}
}
