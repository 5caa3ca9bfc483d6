package types

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRowStreamFromSQLNil(t *testing.T) {
	assert.Nil(t, NewRowStreamFromSQL(nil))
}

func TestRowStreamIteration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "ada").
			AddRow(2, "grace"))

	rows, err := db.Query("SELECT id, name FROM users")
	require.NoError(t, err)

	stream := NewRowStreamFromSQL(rows)
	require.NotNil(t, stream)

	cols, err := stream.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)

	var got []string
	for stream.Next() {
		var id int
		var name string
		require.NoError(t, stream.Scan(&id, &name))
		got = append(got, name)
	}
	require.NoError(t, stream.Err())
	require.NoError(t, stream.Close())

	assert.Equal(t, []string{"ada", "grace"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRowStreamScanOnNilRows(t *testing.T) {
	var s *sqlRowStream
	assert.Error(t, s.Scan())
}
