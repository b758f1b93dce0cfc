package testkit

import (
	"time"

	"loanlens/domain/core"
	"loanlens/domain/loan"
)

// Date builds a UTC calendar date
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ThreeLoans is the worked end-to-end example: amounts 1000/2000/3000, all
// good loans, two issued on 2020-01-01 and one on 2020-01-02.
func ThreeLoans() []loan.Record {
	d1 := Date(2020, time.January, 1)
	d2 := Date(2020, time.January, 2)
	return []loan.Record{
		{ID: "1", IssueDate: d1, IssueWeekday: d1.Weekday(), LoanAmount: 1000, InterestRate: 10, Condition: loan.ConditionGood, Grade: "B", Term: "36 months", Purpose: "car"},
		{ID: "2", IssueDate: d1, IssueWeekday: d1.Weekday(), LoanAmount: 2000, InterestRate: 12, Condition: loan.ConditionGood, Grade: "A", Term: "60 months", Purpose: "credit_card"},
		{ID: "3", IssueDate: d2, IssueWeekday: d2.Weekday(), LoanAmount: 3000, InterestRate: 14, Condition: loan.ConditionGood, Grade: "B", Term: "36 months", Purpose: "car"},
	}
}

// NewDataset wraps records in a snapshot with a deterministic version
func NewDataset(records []loan.Record) *loan.Dataset {
	return loan.NewDataset(records, core.NewHash([]byte("fixture")), "fixture", Date(2020, time.January, 3))
}
