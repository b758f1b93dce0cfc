package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanlens/domain/loan"
	"loanlens/internal/testkit"
)

func generated(t *testing.T, n int) []loan.Record {
	t.Helper()
	cfg := testkit.DefaultLoanConfig()
	cfg.RecordCount = n
	return testkit.NewLoanGenerator(cfg).Generate()
}

func TestThreeLoanExample(t *testing.T) {
	records := testkit.ThreeLoans()

	s := Summarize(records)
	assert.Equal(t, 3, s.TotalLoans)
	assert.Equal(t, 6000.0, s.TotalAmount)
	assert.Equal(t, 2000.0, s.AvgLoanAmount)
	assert.Equal(t, 12.0, s.AvgInterestRate)
	assert.True(t, s.HasData)

	d1 := testkit.Date(2020, time.January, 1)
	d2 := testkit.Date(2020, time.January, 2)

	wantCounts := []DatePoint{{Date: d1, Value: 2}, {Date: d2, Value: 1}}
	if diff := cmp.Diff(wantCounts, CountByDate(records)); diff != "" {
		t.Errorf("CountByDate mismatch (-want +got):\n%s", diff)
	}

	wantSums := []DatePoint{{Date: d1, Value: 3000}, {Date: d2, Value: 3000}}
	if diff := cmp.Diff(wantSums, SumByDate(records)); diff != "" {
		t.Errorf("SumByDate mismatch (-want +got):\n%s", diff)
	}
}

func TestSeriesTotalsMatchSummary(t *testing.T) {
	records := generated(t, 1500)
	s := Summarize(records)

	assert.Equal(t, float64(s.TotalLoans), Total(CountByDate(records)))
	assert.InDelta(t, s.TotalAmount, Total(SumByDate(records)), 1e-6)
}

func TestByDateIsAscendingAndDistinct(t *testing.T) {
	records := generated(t, 800)
	points := CountByDate(records)
	require.NotEmpty(t, points)

	for i := 1; i < len(points); i++ {
		assert.True(t, points[i-1].Date.Before(points[i].Date), "dates out of order at %d", i)
	}
}

func TestByDateIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2021, 3, 4, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2021, 3, 4, 22, 15, 0, 0, time.UTC)
	records := []loan.Record{
		{ID: "a", IssueDate: evening, LoanAmount: 10},
		{ID: "b", IssueDate: morning, LoanAmount: 20},
	}

	points := SumByDate(records)
	require.Len(t, points, 1)
	assert.Equal(t, testkit.Date(2021, time.March, 4), points[0].Date)
	assert.Equal(t, 30.0, points[0].Value)
}

func TestEmptyInput(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
	assert.False(t, s.HasData)

	assert.Empty(t, CountByDate(nil))
	assert.Empty(t, SumByDate(nil))
	assert.Empty(t, GradeCounts(nil))
	assert.Empty(t, ConditionCounts(nil))

	weekdays := WeekdayCounts(nil)
	require.Len(t, weekdays, 7)
	for _, w := range weekdays {
		assert.Zero(t, w.Count)
		assert.Zero(t, w.Share)
	}
}

func TestWeekdayOrderIndependentOfInput(t *testing.T) {
	records := generated(t, 600)
	want := WeekdayCounts(records)

	shuffled := make([]loan.Record, len(records))
	copy(shuffled, records)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	got := WeekdayCounts(shuffled)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("weekday counts depend on row order (-want +got):\n%s", diff)
	}

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Category
	}
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}, names)
}

func TestWeekdayCountsZeroFill(t *testing.T) {
	sunday := testkit.Date(2020, time.January, 5)
	records := []loan.Record{{ID: "1", IssueDate: sunday, IssueWeekday: time.Sunday}}

	got := WeekdayCounts(records)
	require.Len(t, got, 7)
	assert.Equal(t, "Sunday", got[6].Category)
	assert.Equal(t, 1, got[6].Count)
	assert.Equal(t, 1.0, got[6].Share)
	for _, c := range got[:6] {
		assert.Zero(t, c.Count)
	}
}

func TestGradeCountsFirstAppearance(t *testing.T) {
	records := []loan.Record{
		{ID: "1", Grade: "C"},
		{ID: "2", Grade: "A"},
		{ID: "3", Grade: "A"},
		{ID: "4", Grade: "A"},
		{ID: "5", Grade: "B"},
		{ID: "6", Grade: "C"},
	}

	want := []CategoryCount{
		{Category: "C", Count: 2, Share: 2.0 / 6},
		{Category: "A", Count: 3, Share: 3.0 / 6},
		{Category: "B", Count: 1, Share: 1.0 / 6},
	}
	if diff := cmp.Diff(want, GradeCounts(records)); diff != "" {
		t.Errorf("GradeCounts mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionCountsLargestFirst(t *testing.T) {
	records := []loan.Record{
		{ID: "1", Condition: loan.ConditionBad},
		{ID: "2", Condition: loan.ConditionGood},
		{ID: "3", Condition: loan.ConditionGood},
	}
	got := ConditionCounts(records)
	require.Len(t, got, 2)
	assert.Equal(t, string(loan.ConditionGood), got[0].Category)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, string(loan.ConditionBad), got[1].Category)

	tied := []loan.Record{
		{ID: "1", Condition: loan.ConditionBad},
		{ID: "2", Condition: loan.ConditionGood},
	}
	got = ConditionCounts(tied)
	assert.Equal(t, string(loan.ConditionBad), got[0].Category, "ties keep first appearance")
}

func TestCategoryCountsSumToTotal(t *testing.T) {
	records := generated(t, 1000)

	for name, counts := range map[string][]CategoryCount{
		"weekday":   WeekdayCounts(records),
		"condition": ConditionCounts(records),
		"grade":     GradeCounts(records),
	} {
		total := 0
		share := 0.0
		for _, c := range counts {
			total += c.Count
			share += c.Share
		}
		assert.Equal(t, len(records), total, name)
		assert.InDelta(t, 1.0, share, 1e-9, name)
	}
}

func TestPartitionCoversEveryRecord(t *testing.T) {
	records := generated(t, 700)
	parts := Partition(records)

	require.Len(t, parts, 2)
	assert.Equal(t, len(records), len(parts[loan.ConditionGood])+len(parts[loan.ConditionBad]))
	assert.Equal(t, parts[loan.ConditionGood], FilterByCondition(records, loan.ConditionGood))
	assert.Equal(t, parts[loan.ConditionBad], FilterByCondition(records, loan.ConditionBad))
}

func TestFilterByConditionNeverNil(t *testing.T) {
	got := FilterByCondition(testkit.ThreeLoans(), loan.ConditionBad)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroupByPreservesFirstAppearance(t *testing.T) {
	groups := GroupBy(testkit.ThreeLoans(), func(r loan.Record) string { return r.Purpose }, SumAmount)
	want := []Group[string]{
		{Key: "car", Size: 2, Value: 4000},
		{Key: "credit_card", Size: 1, Value: 2000},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("GroupBy mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"B", "A"}, FirstAppearance(testkit.ThreeLoans(), func(r loan.Record) string { return r.Grade }))
}

func TestDatePointJSON(t *testing.T) {
	p := DatePoint{Date: testkit.Date(2020, time.January, 2), Value: 3000}
	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2020-01-02","value":3000}`, string(data))

	var back DatePoint
	require.NoError(t, back.UnmarshalJSON(data))
	assert.True(t, p.Date.Equal(back.Date))
}
