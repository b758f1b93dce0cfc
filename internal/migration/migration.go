package migration

import (
	"context"
	"fmt"
	"regexp"

	"loanlens/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MigrationRunner creates the loan snapshot table. The DDL is kept to types
// that both PostgreSQL and sqlite accept.
type MigrationRunner struct {
	version string
	table   string
}

// NewRunner creates a new migration runner for the given table
func NewRunner(table string) *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
		table:   table,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Table returns the table the runner manages
func (r *MigrationRunner) Table() string {
	return r.table
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if !identifier.MatchString(r.table) {
		return errors.ConfigInvalid(fmt.Sprintf("invalid table name %q", r.table))
	}

	if err := r.createLoansTable(ctx, db); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to create %s table", r.table))
	}

	if err := r.addRowNumber(ctx, db); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to add row_no to %s", r.table))
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createLoansTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			row_no INTEGER NOT NULL DEFAULT 0,
			id TEXT PRIMARY KEY,
			issue_date DATE NOT NULL,
			loan_amount DOUBLE PRECISION NOT NULL,
			interest_rate DOUBLE PRECISION NOT NULL,
			loan_condition TEXT NOT NULL,
			grade TEXT NOT NULL,
			term TEXT NOT NULL,
			purpose TEXT NOT NULL
		)
	`, r.table))
	return err
}

// addRowNumber upgrades tables created before row_no existed. Neither driver
// shares an ADD COLUMN IF NOT EXISTS syntax, so the column is selected first.
func (r *MigrationRunner) addRowNumber(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`SELECT row_no FROM %s WHERE 1 = 0`, r.table)); err == nil {
		return nil
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN row_no INTEGER NOT NULL DEFAULT 0`, r.table))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_issue_date ON %s(issue_date)`, r.table, r.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_condition ON %s(loan_condition)`, r.table, r.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_row_no ON %s(row_no)`, r.table, r.table),
	}
	for _, ddl := range indexes {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
