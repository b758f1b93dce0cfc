package aggregate

import (
	"encoding/json"
	"sort"
	"time"

	"loanlens/domain/loan"
)

// DateLayout is how dates travel in JSON and chart axes
const DateLayout = "2006-01-02"

// DatePoint is one (date, value) pair of a time series
type DatePoint struct {
	Date  time.Time
	Value float64
}

type datePointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// MarshalJSON writes the date as YYYY-MM-DD
func (p DatePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(datePointJSON{Date: p.Date.Format(DateLayout), Value: p.Value})
}

// UnmarshalJSON reads the YYYY-MM-DD form written by MarshalJSON
func (p *DatePoint) UnmarshalJSON(data []byte) error {
	var raw datePointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}
	p.Date = d
	p.Value = raw.Value
	return nil
}

// day is a civil date usable as a map key regardless of location or clock
type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{year: y, month: m, day: d}
}

func (d day) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// ByDate groups records by issue date and orders the result ascending by date
func ByDate(records []loan.Record, agg Aggregator) []DatePoint {
	groups := GroupBy(records, func(r loan.Record) day { return dayOf(r.IssueDate) }, agg)

	points := make([]DatePoint, len(groups))
	for i, g := range groups {
		points[i] = DatePoint{Date: g.Key.time(), Value: g.Value}
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// CountByDate counts loans issued per date
func CountByDate(records []loan.Record) []DatePoint {
	return ByDate(records, Count)
}

// SumByDate sums loan amounts per date
func SumByDate(records []loan.Record) []DatePoint {
	return ByDate(records, SumAmount)
}

// Total adds up the values of a series
func Total(points []DatePoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}
