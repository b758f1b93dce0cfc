package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanlens/internal/errors"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		url    string
		driver string
		dsn    string
	}{
		{"postgres://u:p@db:5432/loans?sslmode=disable", DriverPostgres, "postgres://u:p@db:5432/loans?sslmode=disable"},
		{"postgresql://db/loans", DriverPostgres, "postgresql://db/loans"},
		{"sqlite3:///var/data/loans.db", DriverSQLite, "/var/data/loans.db"},
		{"sqlite://loans.db", DriverSQLite, "loans.db"},
	}
	for _, tt := range tests {
		driver, dsn, err := ParseDatabaseURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.driver, driver)
		assert.Equal(t, tt.dsn, dsn)
	}

	_, _, err := ParseDatabaseURL("mysql://db/loans")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
