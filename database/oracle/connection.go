// Package oracle implements the dbscope connection capability for Oracle
// using the go-ora driver.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/dbscope/dbscope/config"
	"github.com/dbscope/dbscope/database/internal/sqltx"
	"github.com/dbscope/dbscope/database/types"
	"github.com/dbscope/dbscope/logger"
)

// Connection implements types.Conn over a dedicated Oracle session. The same
// single-session model as the PostgreSQL adapter applies: queries and
// transaction statements share one checked-out *sql.Conn.
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
	openOracleDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("oracle", dsn)
	}
	pingOracleDB = func(ctx context.Context, db *sql.DB) error {
		return db.PingContext(ctx)
	}
)

// buildDSN assembles the go-ora connection URL. Service name takes precedence
// over SID; the database name is used when neither is set.
func buildDSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	switch {
	case cfg.ServiceName != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.ServiceName, cfg.Username, cfg.Password, nil)
	case cfg.SID != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, "", cfg.Username, cfg.Password, map[string]string{"SID": cfg.SID})
	default:
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password, nil)
	}
}

// Establish opens an Oracle connection for the given configuration, pings it
// and checks out the dedicated session.
func Establish(cfg *config.DatabaseConfig, log logger.Logger) (types.Conn, error) {
	db, err := openOracleDB(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle connection: %w", err)
	}

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MaxIdleConns))
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingOracleDB(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close Oracle database connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping Oracle database: %w", err)
	}

	session, err := db.Conn(ctx)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close Oracle database connection after session checkout failure")
		}
		return nil, fmt.Errorf("failed to acquire Oracle session: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to Oracle database")

	return &Connection{
		db:      db,
		session: session,
		txm:     sqltx.NewManager("SET TRANSACTION READ WRITE"),
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
	c.logger.Info().Msg("Closing Oracle database connection")
	if err := c.session.Close(); err != nil {
		if closeErr := c.db.Close(); closeErr != nil {
			c.logger.Error().Err(closeErr).Msg("Failed to close Oracle pool after session close failure")
		}
		return err
	}
	return c.db.Close()
}

// DatabaseType returns the vendor identifier.
func (c *Connection) DatabaseType() string {
	return types.Oracle
}
