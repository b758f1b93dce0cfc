package ports

import (
	"context"

	"loanlens/domain/loan"
)

// LoanSource loads one immutable snapshot of cleaned loan records. A source
// never mutates the data it reads.
type LoanSource interface {
	Load(ctx context.Context) (*loan.Dataset, error)
	// Describe names the source for logs and error pages
	Describe() string
}

// LoanWriter bulk-loads records into a SQL table. Only the CLI import path uses
// it; the dashboard itself is read-only.
type LoanWriter interface {
	ReplaceAll(ctx context.Context, records []loan.Record) (int, error)
}
