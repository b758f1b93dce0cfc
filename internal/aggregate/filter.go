package aggregate

import "loanlens/domain/loan"

// FilterByCondition returns the records with the given condition. The result
// is never nil so an empty selection still encodes as an empty list.
func FilterByCondition(records []loan.Record, c loan.Condition) []loan.Record {
	out := make([]loan.Record, 0)
	for _, r := range records {
		if r.Condition == c {
			out = append(out, r)
		}
	}
	return out
}

// Partition splits records by condition
func Partition(records []loan.Record) map[loan.Condition][]loan.Record {
	parts := make(map[loan.Condition][]loan.Record, len(loan.Conditions))
	for _, c := range loan.Conditions {
		parts[c] = make([]loan.Record, 0)
	}
	for _, r := range records {
		parts[r.Condition] = append(parts[r.Condition], r)
	}
	return parts
}

// FirstAppearance lists the distinct values of key in first-appearance order
func FirstAppearance(records []loan.Record, key func(loan.Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
