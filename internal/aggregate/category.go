package aggregate

import (
	"sort"
	"time"

	"loanlens/domain/loan"
)

// CategoryCount is one slice of a categorical breakdown
type CategoryCount struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// WeekdayCounts counts loans per issue weekday. The result always has seven
// entries in loan.WeekdayOrder, zero-filled, whatever the input order.
func WeekdayCounts(records []loan.Record) []CategoryCount {
	counts := make(map[time.Weekday]int, 7)
	for _, r := range records {
		counts[r.IssueWeekday]++
	}

	out := make([]CategoryCount, len(loan.WeekdayOrder))
	for i, d := range loan.WeekdayOrder {
		out[i] = CategoryCount{Category: d.String(), Count: counts[d]}
	}
	return withShares(out, len(records))
}

// ConditionCounts counts loans per condition, largest first. Ties keep the
// order in which the conditions first appear.
func ConditionCounts(records []loan.Record) []CategoryCount {
	out := countBy(records, func(r loan.Record) string { return string(r.Condition) })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// GradeCounts counts loans per grade in the order grades first appear in the
// source rows. It is never re-sorted by frequency.
func GradeCounts(records []loan.Record) []CategoryCount {
	return countBy(records, func(r loan.Record) string { return r.Grade })
}

func countBy(records []loan.Record, key func(loan.Record) string) []CategoryCount {
	groups := GroupBy(records, key, Count)
	out := make([]CategoryCount, len(groups))
	for i, g := range groups {
		out[i] = CategoryCount{Category: g.Key, Count: g.Size}
	}
	return withShares(out, len(records))
}

func withShares(counts []CategoryCount, total int) []CategoryCount {
	if total == 0 {
		return counts
	}
	for i := range counts {
		counts[i].Share = float64(counts[i].Count) / float64(total)
	}
	return counts
}
