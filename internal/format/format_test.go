package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loanlens/internal/aggregate"
)

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "3", Count(3))
	assert.Equal(t, "1,234", Count(1234))
	assert.Equal(t, "887,379", Count(887379))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{6000, "$6,000"},
		{2000, "$2,000"},
		{1234.49, "$1,234"},
		{1234.5, "$1,234"},
		{1235.5, "$1,236"},
		{13106411250, "$13,106,411,250"},
		{-1234.5, "-$1,234"},
		{-1235.5, "-$1,236"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in), "Money(%v)", tt.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12%", Percent(12))
	assert.Equal(t, "12%", Percent(12.5))
	assert.Equal(t, "14%", Percent(13.5))
	assert.Equal(t, "13%", Percent(13.24))
	assert.Equal(t, "0%", Percent(0))
}

func TestShare(t *testing.T) {
	assert.Equal(t, "66.7%", Share(2.0/3.0))
	assert.Equal(t, "100.0%", Share(1))
	assert.Equal(t, "0.0%", Share(0))
}

func TestSince(t *testing.T) {
	assert.Equal(t, NotAvailable, Since(time.Time{}))
	assert.Contains(t, Since(time.Now().Add(-3*time.Minute)), "minutes ago")
}

func TestMetrics(t *testing.T) {
	got := Metrics(aggregate.Summary{
		TotalLoans:      3,
		TotalAmount:     6000,
		AvgInterestRate: 12,
		AvgLoanAmount:   2000,
		HasData:         true,
	})
	assert.Equal(t, []Metric{
		{Label: LabelTotalLoans, Value: "3"},
		{Label: LabelTotalAmount, Value: "$6,000"},
		{Label: LabelAvgInterestRate, Value: "12%"},
		{Label: LabelAvgLoanAmount, Value: "$2,000"},
	}, got)
}

func TestMetricsEmpty(t *testing.T) {
	got := Metrics(aggregate.Summary{})
	assert.Equal(t, "0", got[0].Value)
	assert.Equal(t, "$0", got[1].Value)
	assert.Equal(t, NotAvailable, got[2].Value)
	assert.Equal(t, NotAvailable, got[3].Value)
}
