package types

import (
	"database/sql"
	"errors"
)

// RowStream is the lazy cursor returned by Load. Rows are produced on demand;
// the stream must be closed by the consumer.
type RowStream interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

type sqlRowStream struct {
	rows *sql.Rows
}

// NewRowStreamFromSQL wraps *sql.Rows in a RowStream. It returns nil when rows
// is nil.
func NewRowStreamFromSQL(rows *sql.Rows) RowStream {
	if rows == nil {
		return nil
	}
	return &sqlRowStream{rows: rows}
}

func (s *sqlRowStream) Next() bool {
	return s.rows.Next()
}

func (s *sqlRowStream) Scan(dest ...any) error {
	if s == nil || s.rows == nil {
		return errors.New("sqlRowStream: underlying sql.Rows is nil")
	}
	return s.rows.Scan(dest...)
}

func (s *sqlRowStream) Columns() ([]string, error) {
	return s.rows.Columns()
}

func (s *sqlRowStream) Err() error {
	return s.rows.Err()
}

func (s *sqlRowStream) Close() error {
	return s.rows.Close()
}
