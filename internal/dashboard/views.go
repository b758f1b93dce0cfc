package dashboard

import (
	"loanlens/domain/loan"
	"loanlens/internal/aggregate"
	"loanlens/internal/distribution"
)

// OverviewView is everything the overview page renders
type OverviewView struct {
	Dataset     loan.Info                 `json:"dataset"`
	Summary     aggregate.Summary         `json:"summary"`
	LoansIssued []aggregate.DatePoint     `json:"loans_issued"`
	LoanAmount  []aggregate.DatePoint     `json:"loan_amount"`
	Weekdays    []aggregate.CategoryCount `json:"weekdays"`
	Conditions  []aggregate.CategoryCount `json:"conditions"`
	Grades      []aggregate.CategoryCount `json:"grades"`

	// Distribution is nil unless the overview distribution section is enabled
	Distribution *DistributionView `json:"distribution,omitempty"`
}

// PerformanceView is everything the performance page renders for one condition
type PerformanceView struct {
	Dataset      loan.Info                 `json:"dataset"`
	Options      []loan.Condition          `json:"options"`
	Conditions   []aggregate.CategoryCount `json:"conditions"`
	Grades       []aggregate.CategoryCount `json:"grades"`
	Distribution DistributionView          `json:"distribution"`
}

// DistributionView is the loan-amount distribution for the selected condition
type DistributionView struct {
	Condition loan.Condition         `json:"condition"`
	Records   int                    `json:"records"`
	Histogram distribution.Histogram `json:"histogram"`
	BoxPlots  distribution.BoxPlots  `json:"box_plots"`
}

// Empty reports whether the selection matched no loans
func (v DistributionView) Empty() bool {
	return v.Records == 0
}
