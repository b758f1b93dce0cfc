package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"loanlens/domain/core"
	"loanlens/domain/loan"
	"loanlens/internal/errors"
	"loanlens/internal/migration"
)

// insertBatch keeps bulk inserts under the bind-parameter limits of both drivers
const insertBatch = 500

type loanRow struct {
	RowNo         int       `db:"row_no"`
	ID            string    `db:"id"`
	IssueDate     time.Time `db:"issue_date"`
	LoanAmount    float64   `db:"loan_amount"`
	InterestRate  float64   `db:"interest_rate"`
	LoanCondition string    `db:"loan_condition"`
	Grade         string    `db:"grade"`
	Term          string    `db:"term"`
	Purpose       string    `db:"purpose"`
}

// LoanRepository reads and bulk-loads the loan snapshot table
type LoanRepository struct {
	db    *sqlx.DB
	table string
	now   func() time.Time
}

// NewLoanRepository wraps an open database handle
func NewLoanRepository(db *sqlx.DB, table string) *LoanRepository {
	return &LoanRepository{db: db, table: table, now: time.Now}
}

// Open connects with the given driver ("postgres" or "sqlite3")
func Open(ctx context.Context, driver, dsn, table string) (*LoanRepository, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatasetUnreadable(redact(driver), err)
	}
	return NewLoanRepository(db, table), nil
}

// Close releases the connection pool
func (r *LoanRepository) Close() error {
	return r.db.Close()
}

// Describe names the source without leaking credentials
func (r *LoanRepository) Describe() string {
	return fmt.Sprintf("%s table %s", redact(r.db.DriverName()), r.table)
}

// Migrate creates the loan table if it does not exist
func (r *LoanRepository) Migrate(ctx context.Context) error {
	return migration.NewRunner(r.table).Run(ctx, r.db)
}

// Load reads every row into an immutable dataset, in the order ReplaceAll
// wrote them. The version is the hash of the canonical JSON encoding of the
// records in that order.
func (r *LoanRepository) Load(ctx context.Context) (*loan.Dataset, error) {
	if err := r.checkTable(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT row_no, id, issue_date, loan_amount, interest_rate, loan_condition, grade, term, purpose
	FROM %s ORDER BY row_no`, r.table)

	var rows []loanRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.DatasetUnreadable(r.Describe(), err)
	}

	records := make([]loan.Record, 0, len(rows))
	for _, row := range rows {
		condition, err := loan.ParseCondition(row.LoanCondition)
		if err != nil {
			return nil, errors.SchemaInvalid(fmt.Sprintf("%s id %s: %v", r.Describe(), row.ID, err))
		}
		y, m, d := row.IssueDate.Date()
		issued := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		records = append(records, loan.Record{
			ID:           row.ID,
			IssueDate:    issued,
			IssueWeekday: issued.Weekday(),
			LoanAmount:   row.LoanAmount,
			InterestRate: row.InterestRate,
			Condition:    condition,
			Grade:        row.Grade,
			Term:         row.Term,
			Purpose:      row.Purpose,
		})
	}

	canonical, err := json.Marshal(records)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode records for versioning")
	}
	return loan.NewDataset(records, core.NewHash(canonical), r.Describe(), r.now().UTC()), nil
}

// ReplaceAll swaps the table contents for records inside one transaction and
// returns the number of rows written. Each row keeps its position in records
// as row_no.
func (r *LoanRepository) ReplaceAll(ctx context.Context, records []loan.Record) (int, error) {
	if err := r.checkTable(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, r.table)); err != nil {
		return 0, errors.DatabaseError("failed to clear "+r.table, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (row_no, id, issue_date, loan_amount, interest_rate, loan_condition, grade, term, purpose)
	VALUES (:row_no, :id, :issue_date, :loan_amount, :interest_rate, :loan_condition, :grade, :term, :purpose)`, r.table)

	for start := 0; start < len(records); start += insertBatch {
		end := start + insertBatch
		if end > len(records) {
			end = len(records)
		}
		batch := make([]loanRow, 0, end-start)
		for i, rec := range records[start:end] {
			batch = append(batch, toRow(start+i, rec))
		}
		if _, err := tx.NamedExecContext(ctx, insert, batch); err != nil {
			return 0, errors.DatabaseError(fmt.Sprintf("failed to insert rows %d-%d", start+1, end), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.DatabaseError("failed to commit", err)
	}
	return len(records), nil
}

func (r *LoanRepository) checkTable() error {
	if !validTable(r.table) {
		return errors.ConfigInvalid(fmt.Sprintf("invalid table name %q", r.table))
	}
	return nil
}

func toRow(rowNo int, rec loan.Record) loanRow {
	return loanRow{
		RowNo:         rowNo,
		ID:            rec.ID,
		IssueDate:     rec.IssueDate,
		LoanAmount:    rec.LoanAmount,
		InterestRate:  rec.InterestRate,
		LoanCondition: string(rec.Condition),
		Grade:         rec.Grade,
		Term:          rec.Term,
		Purpose:       rec.Purpose,
	}
}

func redact(driver string) string {
	if driver == "" {
		return "database"
	}
	return driver
}
