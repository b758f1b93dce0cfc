package distribution

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"loanlens/domain/loan"
	"loanlens/internal/aggregate"
)

// FiveNumber is the box-plot summary of one group of loan amounts. Whiskers
// follow Tukey's rule: the most extreme values within 1.5 IQR of the box.
type FiveNumber struct {
	N            int       `json:"n"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Mean         float64   `json:"mean"`
	StdDev       float64   `json:"std_dev"`
	Skewness     float64   `json:"skewness"`
	Outliers     []float64 `json:"outliers"`
}

// IQR is the interquartile range
func (f FiveNumber) IQR() float64 {
	return f.Q3 - f.Q1
}

// BoxGroup is the summary for one (purpose, term) pair
type BoxGroup struct {
	Purpose string     `json:"purpose"`
	Term    string     `json:"term"`
	Stats   FiveNumber `json:"stats"`
}

// BoxPlots is the per-purpose loan-amount summary split by term
type BoxPlots struct {
	Purposes []string   `json:"purposes"`
	Terms    []string   `json:"terms"`
	Groups   []BoxGroup `json:"groups"`
	Empty    bool       `json:"empty"`
}

// Lookup finds the summary for a (purpose, term) pair
func (b BoxPlots) Lookup(purpose, term string) (FiveNumber, bool) {
	for _, g := range b.Groups {
		if g.Purpose == purpose && g.Term == term {
			return g.Stats, true
		}
	}
	return FiveNumber{}, false
}

type boxKey struct {
	purpose string
	term    string
}

// BoxPlots summarizes loan amounts per (purpose, term). Purposes and terms are
// listed in first-appearance order; groups follow purpose order, then term
// order, and pairs with no records are omitted.
func (a *Analyzer) BoxPlots(records []loan.Record) BoxPlots {
	if len(records) == 0 {
		return BoxPlots{Purposes: []string{}, Terms: []string{}, Groups: []BoxGroup{}, Empty: true}
	}

	purposes := aggregate.FirstAppearance(records, func(r loan.Record) string { return r.Purpose })
	terms := aggregate.FirstAppearance(records, func(r loan.Record) string { return r.Term })

	values := make(map[boxKey][]float64)
	for _, r := range records {
		k := boxKey{purpose: r.Purpose, term: r.Term}
		values[k] = append(values[k], r.LoanAmount)
	}

	groups := make([]BoxGroup, 0, len(values))
	for _, p := range purposes {
		for _, t := range terms {
			v, ok := values[boxKey{purpose: p, term: t}]
			if !ok {
				continue
			}
			groups = append(groups, BoxGroup{Purpose: p, Term: t, Stats: Summarize(v)})
		}
	}

	return BoxPlots{Purposes: purposes, Terms: terms, Groups: groups}
}

// Summarize computes the five-number summary of values. Empty input returns
// the zero summary.
func Summarize(values []float64) FiveNumber {
	if len(values) == 0 {
		return FiveNumber{Outliers: []float64{}}
	}

	data := make([]float64, len(values))
	copy(data, values)
	sort.Float64s(data)

	summary := FiveNumber{
		N:        len(data),
		Min:      data[0],
		Max:      data[len(data)-1],
		Outliers: []float64{},
	}

	if len(data) == 1 {
		// Quartile needs at least two values
		v := data[0]
		summary.Q1, summary.Median, summary.Q3 = v, v, v
		summary.LowerWhisker, summary.UpperWhisker = v, v
		summary.Mean = v
		return summary
	}

	q, err := stats.Quartile(data)
	if err != nil {
		return summary
	}
	summary.Q1, summary.Median, summary.Q3 = q.Q1, q.Q2, q.Q3

	summary.Mean, _ = stats.Mean(data)
	summary.StdDev, _ = stats.StandardDeviationSample(data)
	summary.Skewness = skewness(data, summary.Mean)

	iqr := summary.IQR()
	lowFence := summary.Q1 - 1.5*iqr
	highFence := summary.Q3 + 1.5*iqr

	summary.LowerWhisker = summary.Q1
	summary.UpperWhisker = summary.Q3
	for _, x := range data {
		if x >= lowFence {
			summary.LowerWhisker = math.Min(x, summary.Q1)
			break
		}
	}
	for i := len(data) - 1; i >= 0; i-- {
		if data[i] <= highFence {
			summary.UpperWhisker = math.Max(data[i], summary.Q3)
			break
		}
	}
	for _, x := range data {
		if x < lowFence || x > highFence {
			summary.Outliers = append(summary.Outliers, x)
		}
	}

	return summary
}

// skewness is the adjusted Fisher-Pearson sample skewness G1, built from the
// population moments m2 and m3 around the mean
func skewness(data []float64, mean float64) float64 {
	if len(data) < 3 {
		return 0
	}

	n := float64(len(data))
	var m2, m3 float64
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}

	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}
