package observing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/dbscope/dbscope/config"
	"github.com/dbscope/dbscope/database/types"
	"github.com/dbscope/dbscope/logger"
)

// Connection wraps a types.Conn and observes its work-performing operations.
// It delegates every call to the wrapped connection; Load and
// ExecuteReturningCount additionally get timed and logged. The wrapper holds
// no connection state of its own: the open socket, transaction depth and
// everything durable live inside the inner connection.
//
// Connection is exactly as safe for concurrent use as the connection it wraps;
// it adds no synchronization.
type Connection struct {
	conn     types.Conn
	txm      *TxManager
	logger   logger.Logger
	vendor   string
	id       string
	settings Settings
	clock    clockwork.Clock

	// closeHook releases resources registered alongside the wrapper, such as
	// pool metric gauges. Not connection state; the inner connection owns all
	// of that.
	closeHook func()
}

var _ types.Conn = (*Connection)(nil)

// NewConnection wraps conn for observation. The vendor identifier comes from
// conn.DatabaseType() and the observation settings from cfg via NewSettings.
func NewConnection(conn types.Conn, log logger.Logger, cfg *config.DatabaseConfig) *Connection {
	return &Connection{
		conn:     conn,
		txm:      &TxManager{},
		logger:   log,
		vendor:   conn.DatabaseType(),
		id:       uuid.NewString(),
		settings: NewSettings(cfg),
		clock:    clockwork.NewRealClock(),
	}
}

// Unwrap returns the wrapped connection. Results observed through the returned
// connection are identical to never having wrapped it.
func (c *Connection) Unwrap() types.Conn {
	return c.conn
}

// BatchExecute forwards raw statement execution unchanged. Observation is
// scoped to structured queries; raw SQL batches are never timed or logged.
func (c *Connection) BatchExecute(ctx context.Context, statements string) error {
	return c.conn.BatchExecute(ctx, statements)
}

// Load renders the query for diagnostics, times the call that initiates
// loading and classifies the latency once that call returns. The returned
// stream and error come back from the inner connection untouched.
//
// The measurement covers initiation only, not row consumption: a stream read
// lazily after Load returns is outside the recorded latency.
func (c *Connection) Load(ctx context.Context, query types.Query) (types.RowStream, error) {
	queryText := c.renderQuery(query)

	start := c.clock.Now()
	stream, err := c.conn.Load(ctx, query)
	c.observe(ctx, opLoad, queryText, start, err)

	return stream, err
}

// ExecuteReturningCount renders the query for diagnostics, awaits the inner
// execution to completion and classifies the full end-to-end latency. The
// count and error come back from the inner connection unmodified; the timing
// step runs whether the call succeeded or failed.
func (c *Connection) ExecuteReturningCount(ctx context.Context, query types.Query) (int64, error) {
	queryText := c.renderQuery(query)

	start := c.clock.Now()
	count, err := c.conn.ExecuteReturningCount(ctx, query)
	c.observe(ctx, opExecute, queryText, start, err)

	return count, err
}

// TransactionState returns the observed transaction manager, which routes
// every lifecycle call back into the wrapped connection's real manager.
func (c *Connection) TransactionState() types.TransactionManager {
	return c.txm
}

// Health forwards the health check unchanged; never observed.
func (c *Connection) Health(ctx context.Context) error {
	return c.conn.Health(ctx)
}

// Stats forwards driver statistics unchanged; never observed.
func (c *Connection) Stats() (map[string]any, error) {
	return c.conn.Stats()
}

// SetCloseHook registers a cleanup function invoked once when the wrapper is
// closed, after the inner connection's own Close.
func (c *Connection) SetCloseHook(hook func()) {
	c.closeHook = hook
}

// Close forwards connection teardown unchanged; never observed.
func (c *Connection) Close() error {
	err := c.conn.Close()
	if c.closeHook != nil {
		c.closeHook()
		c.closeHook = nil
	}
	return err
}

// DatabaseType returns the wrapped connection's vendor identifier.
func (c *Connection) DatabaseType() string {
	return c.vendor
}

// observe classifies and logs a completed operation, emits telemetry and
// updates request-scoped counters. The log level depends only on elapsed
// time; err feeds the span status and nothing else.
func (c *Connection) observe(ctx context.Context, operation, queryText string, start time.Time, err error) {
	elapsed := c.clock.Since(start)

	if ctx != nil {
		logger.IncrementDBCounter(ctx)
		logger.AddDBElapsed(ctx, elapsed.Nanoseconds())
		createQuerySpan(ctx, c.vendor, operation, queryText, start, err)
		recordQueryMetrics(ctx, c.vendor, operation, elapsed, err)
	}

	oc := &Context{
		Logger:   c.logger,
		Vendor:   c.vendor,
		ConnID:   c.id,
		Settings: c.settings,
	}
	if ctx != nil {
		oc.Logger = c.logger.WithContext(ctx)
	}
	LogQuery(oc, queryText, elapsed)
}

// renderQuery produces the one-shot diagnostic text for a query, honoring the
// parameter logging setting and the configured length cap.
func (c *Connection) renderQuery(query types.Query) string {
	var text string
	if c.settings.LogQueryParameters() {
		text = types.RenderQuery(query)
	} else {
		text = types.RenderQueryText(query)
	}
	return TruncateString(text, c.settings.MaxQueryLength())
}
