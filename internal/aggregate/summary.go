package aggregate

import "loanlens/domain/loan"

// Summary is the four-scalar metrics panel
type Summary struct {
	TotalLoans      int     `json:"total_loans"`
	TotalAmount     float64 `json:"total_amount"`
	AvgInterestRate float64 `json:"avg_interest_rate"`
	AvgLoanAmount   float64 `json:"avg_loan_amount"`
	// HasData is false for an empty dataset; the means are then reported as
	// zero and displayed as N/A.
	HasData bool `json:"has_data"`
}

// Summarize computes the metrics panel
func Summarize(records []loan.Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	return Summary{
		TotalLoans:      len(records),
		TotalAmount:     SumAmount(records),
		AvgInterestRate: MeanInterestRate(records),
		AvgLoanAmount:   MeanAmount(records),
		HasData:         true,
	}
}
