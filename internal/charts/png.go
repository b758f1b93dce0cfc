package charts

import (
	"bytes"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"loanlens/internal/aggregate"
	"loanlens/internal/distribution"
	"loanlens/internal/errors"
	"loanlens/internal/format"
)

// Default PNG size in pixels
const (
	DefaultPNGWidth  = 1024
	DefaultPNGHeight = 512
)

// PNG renders aggregations as static images with go-chart
type PNG struct {
	Width  int
	Height int
}

// NewPNG creates a renderer with the default image size
func NewPNG() *PNG {
	return &PNG{Width: DefaultPNGWidth, Height: DefaultPNGHeight}
}

// LoansIssued draws loans issued per date
func (p *PNG) LoansIssued(w io.Writer, points []aggregate.DatePoint) error {
	return p.dateLine(w, TitleLoansIssued, points, func(f float64) string { return format.Count(int(math.Round(f))) })
}

// LoanAmount draws the total amount per date
func (p *PNG) LoanAmount(w io.Writer, points []aggregate.DatePoint) error {
	return p.dateLine(w, TitleLoanAmount, points, format.Money)
}

func (p *PNG) dateLine(w io.Writer, title string, points []aggregate.DatePoint, yLabel func(float64) string) error {
	if len(points) == 0 {
		return p.empty(w, title)
	}

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, pt := range points {
		xs[i] = pt.Date
		ys[i] = pt.Value
	}

	// A single date still needs a non-zero x range.
	first, last := xs[0], xs[len(xs)-1]
	if !last.After(first) {
		first = first.Add(-12 * time.Hour)
		last = last.Add(12 * time.Hour)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  p.Width,
		Height: p.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           LabelIssueDate,
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(first), Max: chart.TimeToFloat64(last)},
		},
		YAxis: chart.YAxis{
			Name: LabelNumberOfLoans,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return yLabel(f)
				}
				return ""
			},
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(ys)},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: LabelNumberOfLoans,
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: chart.GetDefaultColor(0),
					DotWidth:    3,
					DotColor:    chart.GetDefaultColor(0),
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return renderPNG(w, title, graph.Render)
}

// Weekdays draws loans per weekday, Monday first
func (p *PNG) Weekdays(w io.Writer, counts []aggregate.CategoryCount) error {
	return p.bars(w, TitleWeekday, counts)
}

// Grades draws loans per grade in source order
func (p *PNG) Grades(w io.Writer, counts []aggregate.CategoryCount) error {
	return p.bars(w, TitleGrade, counts)
}

func (p *PNG) bars(w io.Writer, title string, counts []aggregate.CategoryCount) error {
	if totalCount(counts) == 0 {
		return p.empty(w, title)
	}
	values := make([]chart.Value, len(counts))
	ys := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = chart.Value{Label: c.Category, Value: float64(c.Count)}
		ys[i] = float64(c.Count)
	}
	return p.barChart(w, title, values, upperBound(ys))
}

func (p *PNG) barChart(w io.Writer, title string, values []chart.Value, top float64) error {
	graph := chart.BarChart{
		Title:  title,
		Width:  p.Width,
		Height: p.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50},
		},
		BarWidth: barWidth(p.Width, len(values)),
		XAxis:    chart.Shown(),
		YAxis: chart.YAxis{
			Style: chart.Shown(),
			Range: &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return format.Count(int(math.Round(f)))
				}
				return ""
			},
		},
		Bars: values,
	}
	return renderPNG(w, title, graph.Render)
}

// Conditions draws the condition donut
func (p *PNG) Conditions(w io.Writer, counts []aggregate.CategoryCount) error {
	if totalCount(counts) == 0 {
		return p.empty(w, TitleCondition)
	}
	values := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: c.Category + " " + format.Share(c.Share),
			Value: float64(c.Count),
		})
	}
	graph := chart.DonutChart{
		Title:  TitleCondition,
		Width:  p.Height,
		Height: p.Height,
		Values: values,
	}
	return renderPNG(w, TitleCondition, graph.Render)
}

// Histogram draws the binned loan-amount distribution. go-chart has no
// absolute stacked bars, so each bin shows the count over all terms.
func (p *PNG) Histogram(w io.Writer, h distribution.Histogram) error {
	if h.Empty {
		return p.empty(w, TitleHistogram)
	}
	labels := BinLabels(h.Bins)
	counts := h.Counts()
	values := make([]chart.Value, len(counts))
	ys := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = chart.Value{Label: labels[i], Value: float64(c)}
		ys[i] = float64(c)
	}
	return p.barChart(w, TitleHistogram, values, upperBound(ys))
}

// empty draws a blank canvas with the title and a "No data" note
func (p *PNG) empty(w io.Writer, title string) error {
	r, err := chart.PNG(p.Width, p.Height)
	if err != nil {
		return errors.InternalError("create png renderer: " + err.Error())
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return errors.InternalError("load chart font: " + err.Error())
	}

	canvas := chart.Box{Top: 0, Left: 0, Right: p.Width, Bottom: p.Height}
	chart.Draw.Box(r, canvas, chart.Style{
		FillColor:   chart.DefaultBackgroundColor,
		StrokeColor: chart.DefaultBackgroundColor,
		StrokeWidth: 1,
	})
	text := chart.Style{
		Font:                font,
		FontColor:           chart.DefaultTextColor,
		TextHorizontalAlign: chart.TextHorizontalAlignCenter,
		TextVerticalAlign:   chart.TextVerticalAlignMiddle,
	}

	titleStyle := text
	titleStyle.FontSize = chart.DefaultTitleFontSize
	chart.Draw.TextWithin(r, title, chart.Box{Top: 10, Left: 0, Right: p.Width, Bottom: 60}, titleStyle)

	noteStyle := text
	noteStyle.FontSize = chart.DefaultFontSize
	chart.Draw.TextWithin(r, NoData, canvas, noteStyle)

	return r.Save(w)
}

// Render draws the named chart for the given views into w
func (p *PNG) Render(w io.Writer, name string, data Data) error {
	switch name {
	case NameLoansIssued:
		return p.LoansIssued(w, data.LoansIssued)
	case NameLoanAmount:
		return p.LoanAmount(w, data.LoanAmount)
	case NameWeekday:
		return p.Weekdays(w, data.Weekdays)
	case NameCondition:
		return p.Conditions(w, data.Conditions)
	case NameGrade:
		return p.Grades(w, data.Grades)
	case NameHistogram:
		return p.Histogram(w, data.Histogram)
	}
	return UnknownChart(name)
}

// Bytes renders the named chart into memory
func (p *PNG) Bytes(name string, data Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Data is the set of aggregations the PNG charts draw from
type Data struct {
	LoansIssued []aggregate.DatePoint
	LoanAmount  []aggregate.DatePoint
	Weekdays    []aggregate.CategoryCount
	Conditions  []aggregate.CategoryCount
	Grades      []aggregate.CategoryCount
	Histogram   distribution.Histogram
}

func renderPNG(w io.Writer, title string, fn func(chart.RendererProvider, io.Writer) error) error {
	if err := fn(chart.PNG, w); err != nil {
		return errors.Wrapf(err, "render %q", title)
	}
	return nil
}

// upperBound pads the maximum so the tallest point is not on the frame
func upperBound(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	if top <= 0 {
		return 1
	}
	return top * 1.1
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 40
	}
	w := (width - 100) / (bars * 2)
	if w < 8 {
		return 8
	}
	if w > 80 {
		return 80
	}
	return w
}
