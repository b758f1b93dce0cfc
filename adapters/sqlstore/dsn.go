package sqlstore

import (
	"strings"

	"loanlens/internal/errors"
)

// Supported database/sql driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// ParseDatabaseURL picks the driver for a DATABASE_URL. postgres:// and
// postgresql:// URLs go to lib/pq unchanged; sqlite:// and sqlite3:// name a
// database file.
func ParseDatabaseURL(url string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite3://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite3://"), nil
	case strings.HasPrefix(url, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	}
	return "", "", errors.ConfigInvalid("DATABASE_URL must start with postgres://, postgresql://, sqlite:// or sqlite3://")
}
