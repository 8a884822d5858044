package circulation

import (
	"errors"
)

var ErrNilRecordStore = errors.New("nil record store supplied")
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyTableName = errors.New("empty table name supplied")
var ErrBuildingQueryFailed = errors.New("building sql query failed")
var ErrQueryingRecordsFailed = errors.New("querying records failed")
var ErrScanningRowFailed = errors.New("scanning database row failed")
var ErrInvalidPolicyDocument = errors.New("policy document is not valid")

// ErrorPolicy names how an evaluator treats a failed record-store query.
// The asymmetry between the two values is deliberate: duplicate detection is
// advisory, so a false negative is preferred over blocking all catalog writes,
// while wrongly allowing a loan is the worse outcome for an eligibility gate.
type ErrorPolicy int

const (
	// AdvisoryOnError degrades the affected result to empty. Used by the
	// duplicate tiers: a tier whose query fails reports no matches.
	AdvisoryOnError ErrorPolicy = iota

	// DenyOnError converts a failed query into a denial (fail closed). Used
	// by the eligibility gates: a gate that cannot verify its precondition
	// must not allow the loan.
	DenyOnError
)

// String returns the policy name for log and metric labels.
func (p ErrorPolicy) String() string {
	switch p {
	case DenyOnError:
		return "deny_on_error"
	default:
		return "advisory_on_error"
	}
}
