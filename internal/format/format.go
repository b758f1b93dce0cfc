// Package format renders dashboard numbers the way the metrics panel and
// chart labels show them.
package format

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"loanlens/internal/aggregate"
)

// NotAvailable is shown for a mean of an empty dataset
const NotAvailable = "N/A"

// Count renders an integer with thousands separators: 1234 -> "1,234"
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Money renders a whole-dollar amount, rounding half to even:
// 6000 -> "$6,000", 1234.5 -> "$1,234", -1235.5 -> "-$1,236"
func Money(v float64) string {
	whole := decimal.NewFromFloat(v).RoundBank(0)
	if whole.IsNegative() {
		return "-$" + humanize.Comma(whole.Neg().IntPart())
	}
	return "$" + humanize.Comma(whole.IntPart())
}

// Percent renders a value that is already a percentage with no decimals:
// 12.6 -> "13%", 12.5 -> "12%"
func Percent(v float64) string {
	return decimal.NewFromFloat(v).RoundBank(0).String() + "%"
}

// Share renders a fraction of one as a percentage with one decimal
func Share(f float64) string {
	return decimal.NewFromFloat(f * 100).Round(1).StringFixed(1) + "%"
}

// Since renders a timestamp relative to now, e.g. "3 minutes ago"
func Since(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return humanize.Time(t)
}

// Metric is one labelled value of the metrics panel
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Metric labels, in panel order
const (
	LabelTotalLoans      = "Total Loans"
	LabelTotalAmount     = "Total Loan Amount"
	LabelAvgInterestRate = "Average Interest Rate"
	LabelAvgLoanAmount   = "Average Loan Amount"
)

// Metrics renders the four-scalar summary panel. The means of an empty
// dataset are shown as N/A.
func Metrics(s aggregate.Summary) []Metric {
	rate, avg := NotAvailable, NotAvailable
	if s.HasData {
		rate = Percent(s.AvgInterestRate)
		avg = Money(s.AvgLoanAmount)
	}
	return []Metric{
		{Label: LabelTotalLoans, Value: Count(s.TotalLoans)},
		{Label: LabelTotalAmount, Value: Money(s.TotalAmount)},
		{Label: LabelAvgInterestRate, Value: rate},
		{Label: LabelAvgLoanAmount, Value: avg},
	}
}
