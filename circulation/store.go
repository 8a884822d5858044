package circulation

import (
	"context"
)

// RecordStore is the read-only query capability the evaluators consume.
// Implementations compile a Filter into their own query language; this
// package issues no writes through it.
//
// All three methods perform a single blocking round trip with no retry.
// Callers may impose an overall timeout through the context.
type RecordStore interface {
	// QueryCatalogRecords returns the catalog records matching the filter,
	// most recently updated first.
	QueryCatalogRecords(ctx context.Context, filter Filter) ([]CatalogRecord, error)

	// QueryLoanRecords returns the loan records matching the filter.
	QueryLoanRecords(ctx context.Context, filter Filter) ([]LoanRecord, error)

	// CountLoanRecords returns the number of loan records matching the
	// filter without materializing them.
	CountLoanRecords(ctx context.Context, filter Filter) (int, error)
}
