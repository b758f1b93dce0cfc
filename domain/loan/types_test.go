package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("  good loan ")
	require.NoError(t, err)
	assert.Equal(t, ConditionGood, c)

	c, err = ParseCondition("Bad Loan")
	require.NoError(t, err)
	assert.Equal(t, ConditionBad, c)

	_, err = ParseCondition("Charged Off")
	assert.Error(t, err)
}

func TestConditionValid(t *testing.T) {
	assert.True(t, ConditionGood.Valid())
	assert.True(t, ConditionBad.Valid())
	assert.False(t, Condition("good").Valid())
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	_, err = ParseWeekday("Mon")
	assert.Error(t, err)
}

func TestWeekdayOrderStartsMonday(t *testing.T) {
	require.Len(t, WeekdayOrder, 7)
	assert.Equal(t, time.Monday, WeekdayOrder[0])
	assert.Equal(t, time.Sunday, WeekdayOrder[6])
}

func TestNewDatasetCopiesRecords(t *testing.T) {
	records := []Record{{ID: "1", LoanAmount: 1000}}
	ds := NewDataset(records, "abc", "test", time.Unix(0, 0))
	records[0].LoanAmount = 5

	assert.Equal(t, 1000.0, ds.Records()[0].LoanAmount)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "abc", ds.Info().Version)
}

func TestNilDatasetIsEmpty(t *testing.T) {
	var ds *Dataset
	assert.Equal(t, 0, ds.Len())
	assert.Nil(t, ds.Records())
}
