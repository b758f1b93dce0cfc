// Package aggregate holds the pure, shared aggregation routines behind every
// dashboard panel. All functions treat their input as read-only.
package aggregate

import (
	"github.com/montanaflynn/stats"

	"loanlens/domain/loan"
)

// Aggregator reduces a group of records to a single value
type Aggregator func(records []loan.Record) float64

// Count counts records
func Count(records []loan.Record) float64 {
	return float64(len(records))
}

// SumAmount sums loan_amount
func SumAmount(records []loan.Record) float64 {
	total, _ := stats.Sum(amounts(records))
	return total
}

// MeanAmount averages loan_amount; zero for an empty group
func MeanAmount(records []loan.Record) float64 {
	return mean(amounts(records))
}

// MeanInterestRate averages interest_rate; zero for an empty group
func MeanInterestRate(records []loan.Record) float64 {
	return mean(interestRates(records))
}

// Group is one bucket produced by GroupBy
type Group[K comparable] struct {
	Key   K
	Size  int
	Value float64
}

// GroupBy buckets records by key and reduces each bucket with agg. Groups come
// back in order of first appearance in records; callers that need another order
// sort the result explicitly.
func GroupBy[K comparable](records []loan.Record, key func(loan.Record) K, agg Aggregator) []Group[K] {
	index := make(map[K]int)
	var keys []K
	var buckets [][]loan.Record

	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], r)
	}

	groups := make([]Group[K], len(keys))
	for i, k := range keys {
		groups[i] = Group[K]{
			Key:   k,
			Size:  len(buckets[i]),
			Value: agg(buckets[i]),
		}
	}
	return groups
}

func amounts(records []loan.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.LoanAmount
	}
	return out
}

func interestRates(records []loan.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.InterestRate
	}
	return out
}

// mean returns 0 instead of an error for empty input
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}
