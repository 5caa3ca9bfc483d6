package sqltx

import (
	"context"
	"errors"
	"testing"

	"github.com/dbscope/dbscope/database/types"
)

// batchConn records the statements a Manager issues and can fail on demand.
type batchConn struct {
	statements []string
	failNext   error
}

func (c *batchConn) BatchExecute(_ context.Context, statements string) error {
	c.statements = append(c.statements, statements)
	if c.failNext != nil {
		err := c.failNext
		c.failNext = nil
		return err
	}
	return nil
}

func (c *batchConn) Load(context.Context, types.Query) (types.RowStream, error) {
	return nil, nil
}
func (c *batchConn) ExecuteReturningCount(context.Context, types.Query) (int64, error) {
	return 0, nil
}
func (c *batchConn) TransactionState() types.TransactionManager { return nil }
func (c *batchConn) Health(context.Context) error               { return nil }
func (c *batchConn) Stats() (map[string]any, error)             { return nil, nil }
func (c *batchConn) Close() error                               { return nil }
func (c *batchConn) DatabaseType() string                       { return types.PostgreSQL }

func TestBeginIssuesVendorStatement(t *testing.T) {
	conn := &batchConn{}
	m := NewManager("BEGIN")

	if err := m.BeginTransaction(context.Background(), conn); err != nil {
		t.Fatalf("expected begin to succeed, got %v", err)
	}
	if len(conn.statements) != 1 || conn.statements[0] != "BEGIN" {
		t.Fatalf("unexpected statements: %v", conn.statements)
	}
	if m.Status(conn).Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", m.Status(conn).Depth())
	}
}

func TestNestedBeginUsesSavepoints(t *testing.T) {
	conn := &batchConn{}
	m := NewManager("BEGIN")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := m.BeginTransaction(ctx, conn); err != nil {
			t.Fatalf("begin %d failed: %v", i, err)
		}
	}

	want := []string{"BEGIN", "SAVEPOINT dbscope_sp_1", "SAVEPOINT dbscope_sp_2"}
	if len(conn.statements) != len(want) {
		t.Fatalf("unexpected statements: %v", conn.statements)
	}
	for i, stmt := range want {
		if conn.statements[i] != stmt {
			t.Fatalf("statement %d: got %q, want %q", i, conn.statements[i], stmt)
		}
	}
	if m.Status(conn).Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", m.Status(conn).Depth())
	}
}

func TestCommitUnwindsSavepointsThenCommits(t *testing.T) {
	conn := &batchConn{}
	m := NewManager("BEGIN")
	ctx := context.Background()

	_ = m.BeginTransaction(ctx, conn)
	_ = m.BeginTransaction(ctx, conn)
	conn.statements = nil

	if err := m.CommitTransaction(ctx, conn); err != nil {
		t.Fatalf("inner commit failed: %v", err)
	}
	if err := m.CommitTransaction(ctx, conn); err != nil {
		t.Fatalf("outer commit failed: %v", err)
	}

	want := []string{"RELEASE SAVEPOINT dbscope_sp_1", "COMMIT"}
	for i, stmt := range want {
		if conn.statements[i] != stmt {
			t.Fatalf("statement %d: got %q, want %q", i, conn.statements[i], stmt)
		}
	}
	if m.Status(conn).InTransaction() {
		t.Fatalf("expected no open transaction")
	}
}

func TestRollbackUnwindsToSavepoint(t *testing.T) {
	conn := &batchConn{}
	m := NewManager("BEGIN")
	ctx := context.Background()

	_ = m.BeginTransaction(ctx, conn)
	_ = m.BeginTransaction(ctx, conn)
	conn.statements = nil

	if err := m.RollbackTransaction(ctx, conn); err != nil {
		t.Fatalf("inner rollback failed: %v", err)
	}
	if err := m.RollbackTransaction(ctx, conn); err != nil {
		t.Fatalf("outer rollback failed: %v", err)
	}

	want := []string{"ROLLBACK TO SAVEPOINT dbscope_sp_1", "ROLLBACK"}
	for i, stmt := range want {
		if conn.statements[i] != stmt {
			t.Fatalf("statement %d: got %q, want %q", i, conn.statements[i], stmt)
		}
	}
}

func TestCommitWithoutTransaction(t *testing.T) {
	m := NewManager("BEGIN")
	conn := &batchConn{}

	if err := m.CommitTransaction(context.Background(), conn); !errors.Is(err, types.ErrNoTransaction) {
		t.Fatalf("expected ErrNoTransaction, got %v", err)
	}
	if err := m.RollbackTransaction(context.Background(), conn); !errors.Is(err, types.ErrNoTransaction) {
		t.Fatalf("expected ErrNoTransaction, got %v", err)
	}
	if len(conn.statements) != 0 {
		t.Fatalf("expected no statements issued, got %v", conn.statements)
	}
}

func TestFailedTopLevelCommitPoisonsManager(t *testing.T) {
	conn := &batchConn{}
	m := NewManager("BEGIN")
	ctx := context.Background()

	_ = m.BeginTransaction(ctx, conn)

	commitErr := errors.New("connection reset")
	conn.failNext = commitErr
	if err := m.CommitTransaction(ctx, conn); !errors.Is(err, commitErr) {
		t.Fatalf("expected driver error unchanged, got %v", err)
	}
	if !m.Status(conn).Broken() {
		t.Fatalf("expected broken status after failed top-level commit")
	}

	if err := m.BeginTransaction(ctx, conn); !errors.Is(err, types.ErrBrokenTransaction) {
		t.Fatalf("expected ErrBrokenTransaction, got %v", err)
	}
	if err := m.CommitTransaction(ctx, conn); !errors.Is(err, types.ErrBrokenTransaction) {
		t.Fatalf("expected ErrBrokenTransaction, got %v", err)
	}
}

func TestFailedSavepointReleaseKeepsManagerUsable(t *testing.T) {
	conn := &batchConn{}
	m := NewManager("BEGIN")
	ctx := context.Background()

	_ = m.BeginTransaction(ctx, conn)
	_ = m.BeginTransaction(ctx, conn)

	releaseErr := errors.New("savepoint gone")
	conn.failNext = releaseErr
	if err := m.CommitTransaction(ctx, conn); !errors.Is(err, releaseErr) {
		t.Fatalf("expected driver error unchanged, got %v", err)
	}
	if m.Status(conn).Broken() {
		t.Fatalf("savepoint failure must not poison the manager")
	}
	if m.Status(conn).Depth() != 2 {
		t.Fatalf("expected depth unchanged at 2, got %d", m.Status(conn).Depth())
	}

	// The outer transaction can still roll back.
	if err := m.RollbackTransaction(ctx, conn); err != nil {
		t.Fatalf("rollback after failed release should work, got %v", err)
	}
}

func TestFailedBeginLeavesDepthUnchanged(t *testing.T) {
	conn := &batchConn{}
	m := NewManager("BEGIN")

	beginErr := errors.New("database starting up")
	conn.failNext = beginErr
	if err := m.BeginTransaction(context.Background(), conn); !errors.Is(err, beginErr) {
		t.Fatalf("expected driver error unchanged, got %v", err)
	}
	if m.Status(conn).InTransaction() {
		t.Fatalf("failed begin must not enter a transaction")
	}
}
