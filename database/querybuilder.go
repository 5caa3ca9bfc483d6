package database

import (
	"github.com/Masterminds/squirrel"
)

// Builder returns a squirrel statement builder using the bind placeholder
// format of the given vendor ($1 for PostgreSQL, :1 for Oracle). Builders
// produced from it satisfy Query directly, so they can be passed to Load and
// ExecuteReturningCount as-is.
func Builder(vendor string) squirrel.StatementBuilderType {
	switch vendor {
	case Oracle:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Colon)
	default:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
}

// Select starts a vendor-aware SELECT builder.
func Select(vendor string, columns ...string) squirrel.SelectBuilder {
	return Builder(vendor).Select(columns...)
}

// Insert starts a vendor-aware INSERT builder.
func Insert(vendor, table string) squirrel.InsertBuilder {
	return Builder(vendor).Insert(table)
}

// Update starts a vendor-aware UPDATE builder.
func Update(vendor, table string) squirrel.UpdateBuilder {
	return Builder(vendor).Update(table)
}

// Delete starts a vendor-aware DELETE builder.
func Delete(vendor, table string) squirrel.DeleteBuilder {
	return Builder(vendor).Delete(table)
}
