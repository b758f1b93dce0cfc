// Package export writes the dashboard aggregations as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"loanlens/internal/aggregate"
	"loanlens/internal/dashboard"
	"loanlens/internal/errors"
	"loanlens/internal/format"
)

// Sheet names, in workbook order
const (
	SheetSummary      = "Summary"
	SheetTrends       = "Trends"
	SheetWeekdays     = "Weekdays"
	SheetConditions   = "Conditions"
	SheetGrades       = "Grades"
	SheetDistribution = "Distribution"
)

// Sheets lists every sheet of the report
var Sheets = []string{SheetSummary, SheetTrends, SheetWeekdays, SheetConditions, SheetGrades, SheetDistribution}

// Report is the content of one exported workbook
type Report struct {
	Overview      *dashboard.OverviewView
	Distributions []dashboard.DistributionView
}

// WriteReport writes the workbook to w
func WriteReport(w io.Writer, r Report) error {
	if r.Overview == nil {
		return errors.InvalidInput("report needs an overview")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return errors.Wrap(err, "failed to name summary sheet")
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", name)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}
	sw := &sheetWriter{f: f, header: bold}

	writeSummary(sw, r.Overview)
	writeTrends(sw, r.Overview)
	writeCategories(sw, SheetWeekdays, "Day of the Week", r.Overview.Weekdays)
	writeCategories(sw, SheetConditions, "Loan Condition", r.Overview.Conditions)
	writeCategories(sw, SheetGrades, "Grade", r.Overview.Grades)
	writeDistributions(sw, r.Distributions)
	if sw.err != nil {
		return errors.Wrap(sw.err, "failed to write report")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

// sheetWriter appends rows and keeps the first error
type sheetWriter struct {
	f      *excelize.File
	header int
	rows   map[string]int
	err    error
}

func (sw *sheetWriter) row(sheet string, values ...interface{}) {
	if sw.err != nil {
		return
	}
	if sw.rows == nil {
		sw.rows = make(map[string]int)
	}
	sw.rows[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, sw.rows[sheet])
	if err != nil {
		sw.err = err
		return
	}
	sw.err = sw.f.SetSheetRow(sheet, cell, &values)
}

func (sw *sheetWriter) headerRow(sheet string, names ...string) {
	values := make([]interface{}, len(names))
	for i, n := range names {
		values[i] = n
	}
	sw.row(sheet, values...)
	if sw.err != nil {
		return
	}
	row := sw.rows[sheet]
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(names), row)
	sw.err = sw.f.SetCellStyle(sheet, first, last, sw.header)
	if sw.err == nil {
		col, _ := excelize.ColumnNumberToName(len(names))
		sw.err = sw.f.SetColWidth(sheet, "A", col, 18)
	}
}

func (sw *sheetWriter) blank(sheet string) {
	if sw.rows == nil {
		sw.rows = make(map[string]int)
	}
	sw.rows[sheet]++
}

func writeSummary(sw *sheetWriter, v *dashboard.OverviewView) {
	sw.headerRow(SheetSummary, "Metric", "Value", "Display")
	s := v.Summary
	display := format.Metrics(s)
	sw.row(SheetSummary, format.LabelTotalLoans, s.TotalLoans, display[0].Value)
	sw.row(SheetSummary, format.LabelTotalAmount, s.TotalAmount, display[1].Value)
	sw.row(SheetSummary, format.LabelAvgInterestRate, s.AvgInterestRate, display[2].Value)
	sw.row(SheetSummary, format.LabelAvgLoanAmount, s.AvgLoanAmount, display[3].Value)
	sw.blank(SheetSummary)
	sw.row(SheetSummary, "Dataset version", v.Dataset.Version)
	sw.row(SheetSummary, "Source", v.Dataset.Source)
	sw.row(SheetSummary, "Loaded at", v.Dataset.LoadedAt.UTC().Format("2006-01-02 15:04:05 MST"))
}

// writeTrends lays both date series side by side; they share the same dates.
func writeTrends(sw *sheetWriter, v *dashboard.OverviewView) {
	sw.headerRow(SheetTrends, "Issue Date", "Number of Loans", "Loan Amount")
	amounts := make(map[string]float64, len(v.LoanAmount))
	for _, p := range v.LoanAmount {
		amounts[p.Date.Format(aggregate.DateLayout)] = p.Value
	}
	for _, p := range v.LoansIssued {
		day := p.Date.Format(aggregate.DateLayout)
		sw.row(SheetTrends, day, int(p.Value), amounts[day])
	}
}

func writeCategories(sw *sheetWriter, sheet, label string, counts []aggregate.CategoryCount) {
	sw.headerRow(sheet, label, "Number of Loans", "Share")
	for _, c := range counts {
		sw.row(sheet, c.Category, c.Count, c.Share)
	}
}

func writeDistributions(sw *sheetWriter, views []dashboard.DistributionView) {
	for i, d := range views {
		if i > 0 {
			sw.blank(SheetDistribution)
		}
		terms := make([]string, len(d.Histogram.Series))
		for j, s := range d.Histogram.Series {
			terms[j] = s.Term
		}
		sw.row(SheetDistribution, fmt.Sprintf("%s (%s loans)", d.Condition, format.Count(d.Records)))
		sw.headerRow(SheetDistribution, append([]string{"Bin Lower", "Bin Upper"}, terms...)...)
		for b, bin := range d.Histogram.Bins {
			values := []interface{}{bin.Lower, bin.Upper}
			for _, s := range d.Histogram.Series {
				values = append(values, s.Counts[b])
			}
			sw.row(SheetDistribution, values...)
		}

		sw.blank(SheetDistribution)
		sw.headerRow(SheetDistribution, "Purpose", "Loan Term", "N", "Min", "Q1", "Median", "Q3", "Max", "Mean", "Outliers")
		for _, g := range d.BoxPlots.Groups {
			st := g.Stats
			sw.row(SheetDistribution, g.Purpose, g.Term, st.N, st.Min, st.Q1, st.Median, st.Q3, st.Max, st.Mean, joinAmounts(st.Outliers))
		}
	}
}

func joinAmounts(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = format.Money(v)
	}
	return strings.Join(parts, " ")
}
