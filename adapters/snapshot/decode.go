package snapshot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"loanlens/domain/loan"
	"loanlens/internal/errors"
)

// dateLayouts are tried in order before falling back to Excel serial numbers
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Jan-2006",
	"Jan-06",
}

type fieldError struct {
	column string
	err    error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("column %s: %v", e.column, e.err)
}

// DecodeRows types raw rows into loan records. Every required column must be
// present, every value must parse, and ids must be unique. Row numbers in
// errors count the header as row 1.
func DecodeRows(source string, raw *RawData) ([]loan.Record, error) {
	var missing []string
	for _, field := range loan.RequiredFields {
		if !raw.HasColumn(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, errors.SchemaInvalid(fmt.Sprintf("dataset %s is missing required columns: %s",
			source, strings.Join(missing, ", ")))
	}

	records := make([]loan.Record, 0, len(raw.Rows))
	firstSeen := make(map[string]int, len(raw.Rows))
	for i, row := range raw.Rows {
		line := i + 2
		record, err := decodeRow(row)
		if err != nil {
			return nil, errors.SchemaInvalid(fmt.Sprintf("dataset %s row %d %v", source, line, err))
		}
		if prev, dup := firstSeen[record.ID]; dup {
			return nil, errors.SchemaInvalid(fmt.Sprintf("dataset %s row %d: duplicate id %q (first on row %d)",
				source, line, record.ID, prev))
		}
		firstSeen[record.ID] = line
		records = append(records, record)
	}
	return records, nil
}

func decodeRow(row RawRow) (loan.Record, error) {
	var rec loan.Record

	rec.ID = row[loan.FieldID]
	if rec.ID == "" {
		return rec, &fieldError{loan.FieldID, fmt.Errorf("empty id")}
	}

	issued, err := ParseDate(row[loan.FieldIssueDate])
	if err != nil {
		return rec, &fieldError{loan.FieldIssueDate, err}
	}
	rec.IssueDate = issued

	rec.IssueWeekday = issued.Weekday()
	if s := row[loan.FieldIssueWeekday]; s != "" {
		d, err := loan.ParseWeekday(s)
		if err != nil {
			return rec, &fieldError{loan.FieldIssueWeekday, err}
		}
		rec.IssueWeekday = d
	}

	if rec.LoanAmount, err = ParseNumber(row[loan.FieldLoanAmount]); err != nil {
		return rec, &fieldError{loan.FieldLoanAmount, err}
	}
	if rec.InterestRate, err = ParseNumber(row[loan.FieldInterestRate]); err != nil {
		return rec, &fieldError{loan.FieldInterestRate, err}
	}
	if rec.Condition, err = loan.ParseCondition(row[loan.FieldCondition]); err != nil {
		return rec, &fieldError{loan.FieldCondition, err}
	}

	rec.Grade = row[loan.FieldGrade]
	rec.Term = row[loan.FieldTerm]
	rec.Purpose = row[loan.FieldPurpose]
	return rec, nil
}

// ParseDate reads a calendar date and returns it as UTC midnight. The civil
// date as written is kept; a time of day or zone offset is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return civil(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseNumber reads a finite number, tolerating currency symbols, thousands
// separators and a trailing percent sign.
func ParseNumber(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("empty number")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}
