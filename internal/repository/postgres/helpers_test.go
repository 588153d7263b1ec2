package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// staticConnector serves an already-open handle.
type staticConnector struct {
	db *sql.DB
}

func (c staticConnector) Connect(context.Context) (*sql.DB, error) {
	return c.db, nil
}

func newMock(t *testing.T) (Connector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return staticConnector{db: db}, mock
}
