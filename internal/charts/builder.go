package charts

import (
	"fmt"
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"

	"loanlens/internal/aggregate"
	"loanlens/internal/distribution"
	"loanlens/internal/errors"
)

const (
	defaultWidth  = "100%"
	defaultHeight = "420px"
	conditionHole = "40%"
)

// Builder renders aggregations as go-echarts HTML snippets. Every chart gets a
// stable element id so several charts can share one page.
type Builder struct {
	assetsHost string
	width      string
	height     string
}

// NewBuilder creates a builder that loads the echarts runtime from assetsHost
func NewBuilder(assetsHost string) *Builder {
	return &Builder{assetsHost: assetsHost, width: defaultWidth, height: defaultHeight}
}

// AssetsHost is the base URL the page loads echarts.min.js from
func (b *Builder) AssetsHost() string {
	return b.assetsHost
}

// ScriptURL is the echarts runtime the snippets expect on the page
func (b *Builder) ScriptURL() string {
	return b.assetsHost + "echarts.min.js"
}

func (b *Builder) global(name, title string, empty bool) []charts.GlobalOpts {
	t := opts.Title{Title: title}
	if empty {
		t.Subtitle = NoData
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    "chart_" + idSafe(name),
			Width:      b.width,
			Height:     b.height,
			AssetsHost: b.assetsHost,
		}),
		charts.WithTitleOpts(t),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// LoansIssued is the line chart of loans issued per issue date
func (b *Builder) LoansIssued(points []aggregate.DatePoint) (Chart, error) {
	return b.dateLine(NameLoansIssued, TitleLoansIssued, points)
}

// LoanAmount is the line chart of total loan amount per issue date
func (b *Builder) LoanAmount(points []aggregate.DatePoint) (Chart, error) {
	return b.dateLine(NameLoanAmount, TitleLoanAmount, points)
}

func (b *Builder) dateLine(name, title string, points []aggregate.DatePoint) (Chart, error) {
	empty := len(points) == 0
	line := charts.NewLine()
	line.SetGlobalOptions(b.global(name, title, empty)...)
	line.SetGlobalOptions(
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: LabelIssueDate}),
		charts.WithYAxisOpts(opts.YAxis{Name: LabelNumberOfLoans}),
	)

	dates := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		dates[i] = p.Date.Format(aggregate.DateLayout)
		data[i] = opts.LineData{Value: p.Value}
	}
	line.SetXAxis(dates).
		AddSeries(LabelNumberOfLoans, data).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))

	return snippet(name, title, empty, line)
}

// Weekdays is the bar chart of loans per issue weekday, Monday first, with
// the count printed on each bar
func (b *Builder) Weekdays(counts []aggregate.CategoryCount) (Chart, error) {
	empty := totalCount(counts) == 0
	bar := charts.NewBar()
	bar.SetGlobalOptions(b.global(NameWeekday, TitleWeekday, empty)...)
	bar.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: LabelDayOfWeek}),
		charts.WithYAxisOpts(opts.YAxis{Name: LabelNumberOfLoans}),
	)

	bar.SetXAxis(categories(counts)).
		AddSeries(LabelNumberOfLoans, barData(counts)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	return snippet(NameWeekday, TitleWeekday, empty, bar)
}

// Conditions is the donut chart of loans per condition
func (b *Builder) Conditions(counts []aggregate.CategoryCount) (Chart, error) {
	empty := totalCount(counts) == 0
	pie := charts.NewPie()
	pie.SetGlobalOptions(b.global(NameCondition, TitleCondition, empty)...)
	pie.SetGlobalOptions(charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}))

	data := make([]opts.PieData, len(counts))
	for i, c := range counts {
		data[i] = opts.PieData{Name: c.Category, Value: c.Count}
	}
	pie.AddSeries(LabelNumberOfLoans, data).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{conditionHole, "70%"}}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		)

	return snippet(NameCondition, TitleCondition, empty, pie)
}

// Grades is the bar chart of loans per grade in source order
func (b *Builder) Grades(counts []aggregate.CategoryCount) (Chart, error) {
	empty := totalCount(counts) == 0
	bar := charts.NewBar()
	bar.SetGlobalOptions(b.global(NameGrade, TitleGrade, empty)...)
	bar.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Name: LabelGrade}),
		charts.WithYAxisOpts(opts.YAxis{Name: LabelNumberOfLoans}),
	)
	bar.SetXAxis(categories(counts)).AddSeries(LabelNumberOfLoans, barData(counts))

	return snippet(NameGrade, TitleGrade, empty, bar)
}

// Histogram is the loan-amount histogram with one stacked series per term
func (b *Builder) Histogram(h distribution.Histogram) (Chart, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(b.global(NameHistogram, TitleHistogram, h.Empty)...)
	bar.SetGlobalOptions(
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: LabelLoanAmount, AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)

	bar.SetXAxis(BinLabels(h.Bins))
	for _, s := range h.Series {
		data := make([]opts.BarData, len(s.Counts))
		for i, c := range s.Counts {
			data[i] = opts.BarData{Value: c}
		}
		bar.AddSeries(s.Term, data)
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "term", BarGap: "0%"}))

	return snippet(NameHistogram, TitleHistogram, h.Empty, bar)
}

// BoxPlots is the per-purpose loan-amount box plot, one series per term.
// Purpose labels are rotated 90 degrees and outliers are overlaid as points.
func (b *Builder) BoxPlots(bp distribution.BoxPlots) (Chart, error) {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(b.global(NameBoxPlot, TitleBoxPlot, bp.Empty)...)
	box.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: LabelPurpose, AxisLabel: &opts.AxisLabel{Rotate: 90, Interval: "0"}}),
		charts.WithYAxisOpts(opts.YAxis{Name: LabelLoanAmount}),
	)

	box.SetXAxis(bp.Purposes)
	outliers := charts.NewScatter()
	for _, term := range bp.Terms {
		data := make([]opts.BoxPlotData, len(bp.Purposes))
		var points []opts.ScatterData
		for i, purpose := range bp.Purposes {
			g, ok := bp.Lookup(purpose, term)
			if !ok {
				data[i] = opts.BoxPlotData{Name: purpose}
				continue
			}
			s := g
			data[i] = opts.BoxPlotData{
				Name:  purpose,
				Value: []float64{s.LowerWhisker, s.Q1, s.Median, s.Q3, s.UpperWhisker},
			}
			for _, o := range s.Outliers {
				points = append(points, opts.ScatterData{Value: []interface{}{purpose, o}})
			}
		}
		box.AddSeries(term, data)
		if len(points) > 0 {
			outliers.AddSeries(term, points)
		}
	}
	if len(outliers.MultiSeries) > 0 {
		box.Overlap(outliers)
	}

	return snippet(NameBoxPlot, TitleBoxPlot, bp.Empty, box)
}

func snippet(name, title string, empty bool, c render.Renderer) (chart Chart, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.InternalError(fmt.Sprintf("render %s chart: %v", name, r))
		}
	}()
	s := c.RenderSnippet()
	return Chart{
		Name:  name,
		Title: title,
		Empty: empty,
		HTML:  template.HTML(s.Element + s.Script),
	}, nil
}

func categories(counts []aggregate.CategoryCount) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Category
	}
	return out
}

func barData(counts []aggregate.CategoryCount) []opts.BarData {
	out := make([]opts.BarData, len(counts))
	for i, c := range counts {
		out[i] = opts.BarData{Value: c.Count}
	}
	return out
}

func totalCount(counts []aggregate.CategoryCount) int {
	n := 0
	for _, c := range counts {
		n += c.Count
	}
	return n
}

func idSafe(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}
