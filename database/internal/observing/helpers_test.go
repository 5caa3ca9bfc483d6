package observing

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dbscope/dbscope/database/types"
	"github.com/dbscope/dbscope/logger"
)

const (
	levelDebug = "debug"
	levelError = "error"
	levelInfo  = "info"
	levelWarn  = "warn"
	levelFatal = "fatal"

	testSelectUsers = "SELECT * FROM users"
	testUpdateUsers = "UPDATE users SET name = 'test'"
)

type eventRecord struct {
	Level  string
	Msg    string
	Err    error
	Fields map[string]any
}

type recordingLogger struct {
	sink   *recordingSink
	fields map[string]any
}

type recordingSink struct {
	events []*eventRecord
}

type recordingEvent struct {
	record *eventRecord
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{
		sink:   &recordingSink{},
		fields: map[string]any{},
	}
}

func (l *recordingLogger) clone() *recordingLogger {
	cloned := &recordingLogger{
		sink:   l.sink,
		fields: make(map[string]any, len(l.fields)),
	}
	for k, v := range l.fields {
		cloned.fields[k] = v
	}
	return cloned
}

func (l *recordingLogger) newEvent(level string) logger.LogEvent {
	record := &eventRecord{
		Level:  level,
		Fields: make(map[string]any, len(l.fields)),
	}
	for k, v := range l.fields {
		record.Fields[k] = v
	}
	l.sink.events = append(l.sink.events, record)
	return &recordingEvent{record: record}
}

func (l *recordingLogger) Info() logger.LogEvent  { return l.newEvent(levelInfo) }
func (l *recordingLogger) Error() logger.LogEvent { return l.newEvent(levelError) }
func (l *recordingLogger) Debug() logger.LogEvent { return l.newEvent(levelDebug) }
func (l *recordingLogger) Warn() logger.LogEvent  { return l.newEvent(levelWarn) }
func (l *recordingLogger) Fatal() logger.LogEvent { return l.newEvent(levelFatal) }

func (l *recordingLogger) WithContext(_ any) logger.Logger { return l.clone() }

func (l *recordingLogger) WithFields(fields map[string]any) logger.Logger {
	cloned := l.clone()
	for k, v := range fields {
		cloned.fields[k] = v
	}
	return cloned
}

func (l *recordingLogger) events() []*eventRecord {
	return l.sink.events
}

func (e *recordingEvent) Msg(msg string) {
	e.record.Msg = msg
}

func (e *recordingEvent) Msgf(format string, args ...any) {
	e.record.Msg = fmt.Sprintf(format, args...)
}

func (e *recordingEvent) Err(err error) logger.LogEvent {
	e.record.Err = err
	return e
}

func (e *recordingEvent) Str(key, value string) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}

func (e *recordingEvent) Int(key string, value int) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}

func (e *recordingEvent) Int64(key string, value int64) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}

func (e *recordingEvent) Uint64(key string, value uint64) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}

func (e *recordingEvent) Float64(key string, value float64) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}

func (e *recordingEvent) Dur(key string, d time.Duration) logger.LogEvent {
	e.record.Fields[key] = d
	return e
}

func (e *recordingEvent) Interface(key string, i any) logger.LogEvent {
	e.record.Fields[key] = i
	return e
}

func (e *recordingEvent) Bytes(key string, val []byte) logger.LogEvent {
	e.record.Fields[key] = val
	return e
}

// stubStream is a RowStream placeholder whose identity tests compare against.
type stubStream struct {
	closed bool
}

func (s *stubStream) Next() bool                 { return false }
func (s *stubStream) Scan(...any) error          { return nil }
func (s *stubStream) Columns() ([]string, error) { return nil, nil }
func (s *stubStream) Err() error                 { return nil }
func (s *stubStream) Close() error               { s.closed = true; return nil }

// stubConn implements types.Conn with canned results. When clock and latency
// are set, work-performing calls advance the fake clock to simulate elapsed
// wall time inside the inner connection.
type stubConn struct {
	clock   *clockwork.FakeClock
	latency time.Duration

	batchCalls []string
	batchErr   error

	loadStream types.RowStream
	loadErr    error

	count   int64
	execErr error

	txm types.TransactionManager

	healthErr   error
	statsResult map[string]any
	statsErr    error
	closeErr    error
	closeCalled bool
	vendor      string
}

func (s *stubConn) tick() {
	if s.clock != nil && s.latency > 0 {
		s.clock.Advance(s.latency)
	}
}

func (s *stubConn) BatchExecute(_ context.Context, statements string) error {
	s.batchCalls = append(s.batchCalls, statements)
	return s.batchErr
}

func (s *stubConn) Load(_ context.Context, _ types.Query) (types.RowStream, error) {
	s.tick()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.loadStream == nil {
		s.loadStream = &stubStream{}
	}
	return s.loadStream, nil
}

func (s *stubConn) ExecuteReturningCount(_ context.Context, _ types.Query) (int64, error) {
	s.tick()
	if s.execErr != nil {
		return 0, s.execErr
	}
	return s.count, nil
}

func (s *stubConn) TransactionState() types.TransactionManager {
	if s.txm == nil {
		s.txm = &stubTxManager{}
	}
	return s.txm
}

func (s *stubConn) Health(context.Context) error { return s.healthErr }

func (s *stubConn) Stats() (map[string]any, error) {
	return s.statsResult, s.statsErr
}

func (s *stubConn) Close() error {
	s.closeCalled = true
	return s.closeErr
}

func (s *stubConn) DatabaseType() string {
	if s.vendor == "" {
		return "postgresql"
	}
	return s.vendor
}

// stubTxManager records which connection each lifecycle call received and
// keeps an honest depth counter so tests can compare wrapped and direct use.
type stubTxManager struct {
	begins      []types.Conn
	commits     []types.Conn
	rollbacks   []types.Conn
	beginErr    error
	commitErr   error
	rollbackErr error
	status      types.TransactionStatus
}

func (m *stubTxManager) BeginTransaction(_ context.Context, conn types.Conn) error {
	m.begins = append(m.begins, conn)
	if m.beginErr != nil {
		return m.beginErr
	}
	m.status.Enter()
	return nil
}

func (m *stubTxManager) CommitTransaction(_ context.Context, conn types.Conn) error {
	m.commits = append(m.commits, conn)
	if m.commitErr != nil {
		return m.commitErr
	}
	m.status.Exit()
	return nil
}

func (m *stubTxManager) RollbackTransaction(_ context.Context, conn types.Conn) error {
	m.rollbacks = append(m.rollbacks, conn)
	if m.rollbackErr != nil {
		return m.rollbackErr
	}
	m.status.Exit()
	return nil
}

func (m *stubTxManager) Status(types.Conn) *types.TransactionStatus {
	return &m.status
}

// newObservedConn wires a stub connection, a recording logger and a fake clock
// into an observed connection ready for latency tests.
func newObservedConn(inner *stubConn) (*Connection, *recordingLogger, *clockwork.FakeClock) {
	rec := newRecordingLogger()
	fake := clockwork.NewFakeClock()
	inner.clock = fake

	conn := NewConnection(inner, rec, nil)
	conn.clock = fake
	return conn, rec, fake
}
