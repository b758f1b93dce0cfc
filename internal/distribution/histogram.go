// Package distribution computes the loan-amount distribution panels: a binned
// histogram split by term and per-purpose box plots split by term.
package distribution

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"loanlens/domain/loan"
	"loanlens/internal/aggregate"
)

// DefaultBins is the histogram resolution used by the dashboard
const DefaultBins = 20

// Bin is a half-open interval [Lower, Upper); the last bin of a histogram also
// includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// HistogramSeries holds the per-bin counts for one term
type HistogramSeries struct {
	Term   string `json:"term"`
	Counts []int  `json:"counts"`
}

// Histogram is the binned loan-amount distribution of a record subset
type Histogram struct {
	Bins   []Bin             `json:"bins"`
	Series []HistogramSeries `json:"series"`
	Total  int               `json:"total"`
	Empty  bool              `json:"empty"`
}

// Analyzer computes distribution panels with a fixed bin count
type Analyzer struct {
	bins int
}

// NewAnalyzer creates an analyzer; a non-positive bin count falls back to DefaultBins
func NewAnalyzer(bins int) *Analyzer {
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Analyzer{bins: bins}
}

// Bins returns the configured bin count
func (a *Analyzer) Bins() int {
	return a.bins
}

// Histogram bins loan amounts into equal-width bins spanning [min, max] of the
// whole subset, so every term series shares the same bin edges. Terms appear in
// first-appearance order. Empty input yields an Empty histogram with no bins.
func (a *Analyzer) Histogram(records []loan.Record) Histogram {
	if len(records) == 0 {
		return Histogram{Bins: []Bin{}, Series: []HistogramSeries{}, Empty: true}
	}

	lo, hi := records[0].LoanAmount, records[0].LoanAmount
	for _, r := range records[1:] {
		lo = math.Min(lo, r.LoanAmount)
		hi = math.Max(hi, r.LoanAmount)
	}

	dividers := a.dividers(lo, hi)
	bins := make([]Bin, a.bins)
	for i := range bins {
		bins[i] = Bin{Lower: dividers[i], Upper: dividers[i+1]}
	}
	// Report the closed upper edge rather than the nudged divider
	if hi > lo {
		bins[len(bins)-1].Upper = hi
	}

	terms := aggregate.FirstAppearance(records, func(r loan.Record) string { return r.Term })
	byTerm := make(map[string][]float64, len(terms))
	for _, r := range records {
		byTerm[r.Term] = append(byTerm[r.Term], r.LoanAmount)
	}

	series := make([]HistogramSeries, len(terms))
	for i, term := range terms {
		series[i] = HistogramSeries{Term: term, Counts: binCounts(byTerm[term], dividers)}
	}

	return Histogram{
		Bins:   bins,
		Series: series,
		Total:  len(records),
	}
}

// dividers returns bins+1 strictly increasing edges. The last edge is nudged
// just above hi so the maximum lands in the final bin. A zero-width range
// gets unit-width bins starting at lo.
func (a *Analyzer) dividers(lo, hi float64) []float64 {
	dividers := make([]float64, a.bins+1)
	if hi <= lo {
		for i := range dividers {
			dividers[i] = lo + float64(i)
		}
		return dividers
	}
	floats.Span(dividers, lo, hi)
	dividers[a.bins] = math.Nextafter(hi, math.Inf(1))
	return dividers
}

func binCounts(values []float64, dividers []float64) []int {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	raw := stat.Histogram(nil, dividers, sorted, nil)
	counts := make([]int, len(raw))
	for i, c := range raw {
		counts[i] = int(c)
	}
	return counts
}

// Counts sums every series bin by bin
func (h Histogram) Counts() []int {
	out := make([]int, len(h.Bins))
	for _, s := range h.Series {
		for i, c := range s.Counts {
			out[i] += c
		}
	}
	return out
}
