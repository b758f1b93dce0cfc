package loan

import (
	"fmt"
	"strings"
	"time"

	"loanlens/domain/core"
)

// Condition is the binary performance label of a loan
type Condition string

const (
	ConditionGood Condition = "Good Loan"
	ConditionBad  Condition = "Bad Loan"
)

// Conditions is the fixed option list offered by the condition selector, in display order.
var Conditions = []Condition{ConditionGood, ConditionBad}

func (c Condition) String() string { return string(c) }

// Valid reports whether c is one of the known conditions
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCondition matches a condition label case-insensitively, ignoring surrounding space.
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	for _, known := range Conditions {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown loan condition %q", s)
}

// Column names of the cleaned snapshot
const (
	FieldID           = "id"
	FieldIssueDate    = "issue_date"
	FieldIssueWeekday = "issue_weekday"
	FieldLoanAmount   = "loan_amount"
	FieldInterestRate = "interest_rate"
	FieldCondition    = "loan_condition"
	FieldGrade        = "grade"
	FieldTerm         = "term"
	FieldPurpose      = "purpose"
)

// RequiredFields must all be present in a snapshot header. issue_weekday is
// optional because it can be derived from issue_date.
var RequiredFields = []string{
	FieldID,
	FieldIssueDate,
	FieldLoanAmount,
	FieldInterestRate,
	FieldCondition,
	FieldGrade,
	FieldTerm,
	FieldPurpose,
}

// AllFields is the full column order used when writing snapshots and tables.
var AllFields = []string{
	FieldID,
	FieldIssueDate,
	FieldIssueWeekday,
	FieldLoanAmount,
	FieldInterestRate,
	FieldCondition,
	FieldGrade,
	FieldTerm,
	FieldPurpose,
}

// WeekdayOrder is the canonical display order for weekday aggregations.
var WeekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// ParseWeekday accepts full English day names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.TrimSpace(s)
	for _, d := range WeekdayOrder {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Record is one cleaned loan row
type Record struct {
	ID           string       `json:"id" db:"id"`
	IssueDate    time.Time    `json:"issue_date" db:"issue_date"`
	IssueWeekday time.Weekday `json:"issue_weekday" db:"-"`
	LoanAmount   float64      `json:"loan_amount" db:"loan_amount"`
	InterestRate float64      `json:"interest_rate" db:"interest_rate"`
	Condition    Condition    `json:"loan_condition" db:"loan_condition"`
	Grade        string       `json:"grade" db:"grade"`
	Term         string       `json:"term" db:"term"`
	Purpose      string       `json:"purpose" db:"purpose"`
}

// Dataset is an immutable snapshot of loan records. Nothing mutates a Dataset
// after NewDataset returns; reloads build a new one.
type Dataset struct {
	records  []Record
	version  core.Hash
	source   string
	loadedAt time.Time
}

// NewDataset copies records into a new snapshot
func NewDataset(records []Record, version core.Hash, source string, loadedAt time.Time) *Dataset {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Dataset{
		records:  owned,
		version:  version,
		source:   source,
		loadedAt: loadedAt,
	}
}

// Records returns the snapshot rows. Callers must treat the slice as read-only.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Version identifies the snapshot content
func (d *Dataset) Version() core.Hash { return d.version }

// Source describes where the snapshot was loaded from
func (d *Dataset) Source() string { return d.source }

// LoadedAt returns when the snapshot was read
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Info is the serializable description of a Dataset
type Info struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Info describes the snapshot
func (d *Dataset) Info() Info {
	return Info{
		Version:  d.version.String(),
		Source:   d.source,
		Records:  len(d.records),
		LoadedAt: d.loadedAt,
	}
}
