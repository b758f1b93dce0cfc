// Package charts turns dashboard aggregations into charts: interactive
// go-echarts snippets for the pages and go-chart PNG images for the API and
// the CLI.
package charts

import (
	"fmt"
	"html/template"

	"loanlens/internal/distribution"
	"loanlens/internal/errors"
	"loanlens/internal/format"
)

// Chart names as they appear in URLs and CLI flags
const (
	NameLoansIssued = "loans-issued"
	NameLoanAmount  = "loan-amount"
	NameWeekday     = "weekday"
	NameCondition   = "condition"
	NameGrade       = "grade"
	NameHistogram   = "histogram"
	NameBoxPlot     = "box-plot"
)

// PNGNames lists the charts that can be rendered as images
var PNGNames = []string{
	NameLoansIssued,
	NameLoanAmount,
	NameWeekday,
	NameCondition,
	NameGrade,
	NameHistogram,
}

// Titles and axis labels shown on the dashboard
const (
	TitleLoansIssued = "Number of Loans Issued Over Time"
	TitleLoanAmount  = "Loans Amount Over Time"
	TitleWeekday     = "Distribution of Loans by Day of the Week"
	TitleCondition   = "Distribution of Loans by Condition"
	TitleGrade       = "Distribution of Loans by Grade"
	TitleHistogram   = "Loan Amount Distribution by Condition"
	TitleBoxPlot     = "Loan Amount Distribution by Purpose"

	LabelIssueDate     = "Issue Date"
	LabelNumberOfLoans = "Number of Loans"
	LabelDayOfWeek     = "Day of the Week"
	LabelGrade         = "Grade"
	LabelLoanAmount    = "Loan Amount"
	LabelPurpose       = "Purpose"
	LabelLoanTerm      = "Loan Term"

	NoData = "No data"
)

// Chart is one rendered interactive chart, ready to drop into a page
type Chart struct {
	Name  string
	Title string
	Empty bool
	HTML  template.HTML
}

// ValidPNGName reports whether name can be rendered as an image
func ValidPNGName(name string) bool {
	for _, n := range PNGNames {
		if n == name {
			return true
		}
	}
	return false
}

// UnknownChart is the error returned for a chart name nobody renders
func UnknownChart(name string) error {
	return errors.Newf(errors.CodeInvalidInput, "unknown chart %q", name)
}

// BinLabels names histogram bins by their dollar range
func BinLabels(bins []distribution.Bin) []string {
	labels := make([]string, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%s-%s", format.Money(b.Lower), format.Money(b.Upper))
	}
	return labels
}
