// Package postgresql implements the dbscope connection capability for
// PostgreSQL using the pgx driver.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dbscope/dbscope/config"
	"github.com/dbscope/dbscope/database/internal/sqltx"
	"github.com/dbscope/dbscope/database/types"
	"github.com/dbscope/dbscope/logger"
)

// Connection implements types.Conn over a dedicated PostgreSQL session.
// Queries and transaction statements run on a single *sql.Conn checked out of
// the driver pool, so the transaction state machine and the query path share
// one session. Like the capability it implements, a Connection is not safe
// for concurrent use.
type Connection struct {
	db      *sql.DB
	session *sql.Conn
	txm     *sqltx.Manager
	config  *config.DatabaseConfig
	logger  logger.Logger
	closed  bool
}

var _ types.Conn = (*Connection)(nil)

var (
	openPostgresDB = func(cfg *pgx.ConnConfig) *sql.DB {
		return stdlib.OpenDB(*cfg)
	}
	pingPostgresDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// quoteDSN quotes a DSN value according to libpq rules:
// - Returns double single quotes for empty strings (empty value)
// - Escapes backslashes and single quotes
// - Wraps in single quotes when value contains non-alphanumeric/._- characters
func quoteDSN(value string) string {
	if value == "" {
		return "''"
	}

	needsQuoting := false
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != '.' && r != '_' && r != '-' {
			needsQuoting = true
			break
		}
	}

	if !needsQuoting {
		return value
	}

	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "'", "\\'")

	return "'" + escaped + "'"
}

// Establish opens a PostgreSQL connection for the given configuration, pings
// it and checks out the dedicated session. Establishment failures are
// returned unchanged from the driver.
func Establish(cfg *config.DatabaseConfig, log logger.Logger) (types.Conn, error) {
	var dsn string
	if cfg.ConnectionString != "" {
		dsn = cfg.ConnectionString
	} else {
		parts := []string{
			fmt.Sprintf("host=%s", quoteDSN(cfg.Host)),
			fmt.Sprintf("port=%d", cfg.Port),
			fmt.Sprintf("user=%s", quoteDSN(cfg.Username)),
			fmt.Sprintf("password=%s", quoteDSN(cfg.Password)),
			fmt.Sprintf("dbname=%s", quoteDSN(cfg.Database)),
		}
		if cfg.SSLMode != "" {
			parts = append(parts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))
		}
		dsn = strings.Join(parts, " ")
	}

	pgxConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	db := openPostgresDB(pgxConfig)

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MaxIdleConns))
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingPostgresDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close PostgreSQL database connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	session, err := db.Conn(ctx)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close PostgreSQL database connection after session checkout failure")
		}
		return nil, fmt.Errorf("failed to acquire PostgreSQL session: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to PostgreSQL database")

	return &Connection{
		db:      db,
		session: session,
		txm:     sqltx.NewManager("BEGIN"),
		config:  cfg,
		logger:  log,
	}, nil
}

// BatchExecute runs raw SQL on the session without returning rows.
func (c *Connection) BatchExecute(ctx context.Context, statements string) error {
	if c.closed {
		return types.ErrConnClosed
	}
	_, err := c.session.ExecContext(ctx, statements)
	return err
}

// Load initiates a structured query and returns its row stream.
func (c *Connection) Load(ctx context.Context, query types.Query) (types.RowStream, error) {
	if c.closed {
		return nil, types.ErrConnClosed
	}
	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := c.session.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	return types.NewRowStreamFromSQL(rows), nil
}

// ExecuteReturningCount executes a structured query and returns the affected
// row count.
func (c *Connection) ExecuteReturningCount(ctx context.Context, query types.Query) (int64, error) {
	if c.closed {
		return 0, types.ErrConnClosed
	}
	sqlText, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}
	result, err := c.session.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// TransactionState returns the session's transaction manager.
func (c *Connection) TransactionState() types.TransactionManager {
	return c.txm
}

// Health checks database connectivity.
func (c *Connection) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.session.PingContext(ctx)
}

// Stats returns driver pool statistics.
func (c *Connection) Stats() (map[string]any, error) {
	stats := c.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}, nil
}

// Close releases the session and the underlying pool.
func (c *Connection) Close() error {
	if c.closed {
		return types.ErrConnClosed
	}
	c.closed = true
	c.logger.Info().Msg("Closing PostgreSQL database connection")
	if err := c.session.Close(); err != nil {
		if closeErr := c.db.Close(); closeErr != nil {
			c.logger.Error().Err(closeErr).Msg("Failed to close PostgreSQL pool after session close failure")
		}
		return err
	}
	return c.db.Close()
}

// DatabaseType returns the vendor identifier.
func (c *Connection) DatabaseType() string {
	return types.PostgreSQL
}
