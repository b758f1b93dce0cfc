package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanlens/domain/loan"
	"loanlens/internal/aggregate"
	"loanlens/internal/distribution"
	"loanlens/internal/errors"
	"loanlens/internal/testkit"
)

const assets = "/static/echarts/"

func threeLoanData() Data {
	records := testkit.ThreeLoans()
	return Data{
		LoansIssued: aggregate.CountByDate(records),
		LoanAmount:  aggregate.SumByDate(records),
		Weekdays:    aggregate.WeekdayCounts(records),
		Conditions:  aggregate.ConditionCounts(records),
		Grades:      aggregate.GradeCounts(records),
		Histogram:   distribution.NewAnalyzer(0).Histogram(records),
	}
}

func TestBuilderCharts(t *testing.T) {
	b := NewBuilder(assets)
	data := threeLoanData()

	line, err := b.LoansIssued(data.LoansIssued)
	require.NoError(t, err)
	assert.Equal(t, NameLoansIssued, line.Name)
	assert.False(t, line.Empty)
	html := string(line.HTML)
	assert.Contains(t, html, `id="chart_loans_issued"`)
	assert.Contains(t, html, TitleLoansIssued)
	assert.Contains(t, html, "2020-01-01")
	assert.Contains(t, html, `"showSymbol":true`)

	weekday, err := b.Weekdays(data.Weekdays)
	require.NoError(t, err)
	assert.Contains(t, string(weekday.HTML), `"Monday","Tuesday","Wednesday","Thursday","Friday","Saturday","Sunday"`)

	pie, err := b.Conditions(data.Conditions)
	require.NoError(t, err)
	assert.Contains(t, string(pie.HTML), `"40%"`)
	assert.Contains(t, string(pie.HTML), string(loan.ConditionGood))

	grade, err := b.Grades(data.Grades)
	require.NoError(t, err)
	assert.Contains(t, string(grade.HTML), `"B","A"`)

	hist, err := b.Histogram(data.Histogram)
	require.NoError(t, err)
	assert.Contains(t, string(hist.HTML), `"stack":"term"`)
	assert.Contains(t, string(hist.HTML), "36 months")
}

func TestBuilderEmptyCharts(t *testing.T) {
	b := NewBuilder(assets)

	line, err := b.LoanAmount(nil)
	require.NoError(t, err)
	assert.True(t, line.Empty)
	assert.Contains(t, string(line.HTML), NoData)

	hist, err := b.Histogram(distribution.NewAnalyzer(0).Histogram(nil))
	require.NoError(t, err)
	assert.True(t, hist.Empty)
	assert.Contains(t, string(hist.HTML), NoData)

	box, err := b.BoxPlots(distribution.NewAnalyzer(0).BoxPlots(nil))
	require.NoError(t, err)
	assert.True(t, box.Empty)
	assert.Contains(t, string(box.HTML), TitleBoxPlot)
}

func TestBuilderBoxPlots(t *testing.T) {
	records := testkit.ThreeLoans()
	records = append(records,
		loan.Record{ID: "4", IssueDate: testkit.Date(2020, 1, 3), LoanAmount: 1100, Condition: loan.ConditionGood, Term: "36 months", Purpose: "car"},
		loan.Record{ID: "5", IssueDate: testkit.Date(2020, 1, 3), LoanAmount: 1200, Condition: loan.ConditionGood, Term: "36 months", Purpose: "car"},
		loan.Record{ID: "6", IssueDate: testkit.Date(2020, 1, 3), LoanAmount: 90000, Condition: loan.ConditionGood, Term: "36 months", Purpose: "car"},
	)
	bp := distribution.NewAnalyzer(0).BoxPlots(records)

	box, err := NewBuilder(assets).BoxPlots(bp)
	require.NoError(t, err)
	html := string(box.HTML)
	assert.Contains(t, html, `"rotate":90`)
	assert.Contains(t, html, `"boxplot"`)
	assert.Contains(t, html, `"scatter"`)
	assert.Contains(t, html, "credit_card")
}

func TestBuilderScriptURL(t *testing.T) {
	assert.Equal(t, assets+"echarts.min.js", NewBuilder(assets).ScriptURL())
}

func TestPNGRender(t *testing.T) {
	p := NewPNG()
	data := threeLoanData()

	for _, name := range PNGNames {
		t.Run(name, func(t *testing.T) {
			out, err := p.Bytes(name, data)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, DefaultPNGHeight, img.Bounds().Dy())
		})
	}
}

func TestPNGSingleDate(t *testing.T) {
	records := testkit.ThreeLoans()[:2]
	var buf bytes.Buffer
	require.NoError(t, NewPNG().LoansIssued(&buf, aggregate.CountByDate(records)))
	assert.NotZero(t, buf.Len())
}

func TestPNGEmpty(t *testing.T) {
	p := NewPNG()
	for _, name := range PNGNames {
		t.Run(name, func(t *testing.T) {
			out, err := p.Bytes(name, Data{Histogram: distribution.NewAnalyzer(0).Histogram(nil)})
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, DefaultPNGWidth, img.Bounds().Dx())
		})
	}
}

func TestPNGUnknownChart(t *testing.T) {
	_, err := NewPNG().Bytes("radar", Data{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.False(t, ValidPNGName("radar"))
	assert.True(t, ValidPNGName(NameHistogram))
}

func TestBinLabels(t *testing.T) {
	got := BinLabels([]distribution.Bin{{Lower: 1000, Upper: 2750}})
	assert.Equal(t, []string{"$1,000-$2,750"}, got)
}
