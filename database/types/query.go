package types

import (
	"fmt"
	"strings"
)

// Query is the opaque structured-query representation accepted by Load and
// ExecuteReturningCount. The signature matches squirrel's Sqlizer, so any
// squirrel builder satisfies it directly.
type Query interface {
	ToSql() (query string, args []any, err error)
}

// RawQuery adapts a plain SQL string and bind arguments to the Query interface.
type RawQuery struct {
	SQL  string
	Args []any
}

// ToSql returns the wrapped SQL and arguments unchanged.
func (q RawQuery) ToSql() (string, []any, error) {
	return q.SQL, q.Args, nil
}

// RenderQuery produces the diagnostic text form of a query, including its bind
// arguments. The rendering exists only for logging: it has no identity or
// persistence beyond one log event, and a query that fails to render still
// gets delegated to the connection, which reports the real error.
func RenderQuery(q Query) string {
	if q == nil {
		return "<nil query>"
	}

	sqlText, args, err := q.ToSql()
	if err != nil {
		return fmt.Sprintf("<unrenderable query: %v>", err)
	}
	if len(args) == 0 {
		return sqlText
	}

	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = renderArg(arg)
	}
	return sqlText + " -- binds: [" + strings.Join(rendered, ", ") + "]"
}

// RenderQueryText returns only the SQL text of a query, without bind arguments.
func RenderQueryText(q Query) string {
	if q == nil {
		return "<nil query>"
	}
	sqlText, _, err := q.ToSql()
	if err != nil {
		return fmt.Sprintf("<unrenderable query: %v>", err)
	}
	return sqlText
}

func renderArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return fmt.Sprintf("<bytes len=%d>", len(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
