package circulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DefaultUnpaidFeeThreshold is the unpaid-fee total above which new loans are
// denied, in currency units. The comparison is strictly greater than: a
// member owing exactly the threshold may still borrow.
const DefaultUnpaidFeeThreshold = 10.00

const (
	reasonBorrowingLimitReached     = "Member has reached borrowing limit"
	reasonBorrowingLimitCheckFailed = "Error checking borrowing limit"
	reasonUnpaidFeeCheckFailed      = "Error checking unpaid late fees"
	reasonUnpaidFeesFormat          = "Member has unpaid late fees of %.2f"

	logMsgEligibilityCheckFailed = "eligibility gate denied after query failure"
	metricEligibilityGateFailed  = "circulation_eligibility_gate_failed_total"
	labelGate                    = "gate"
	gateBorrowingLimit           = "borrowing_limit"
	gateUnpaidFees               = "unpaid_fees"
)

// EligibilityVerdict is the decision record of one gate. It is never
// persisted; the caller consumes it immediately. Current and Limit echo the
// gate's inputs for UI display where applicable.
type EligibilityVerdict struct {
	Allowed bool
	Reason  string
	Current int
	Limit   int
}

// EligibilityChecker enforces per-member borrowing eligibility. Its two gates
// are independent and composed by the caller: both must pass before a new
// loan is issued.
//
// Both gates follow DenyOnError: a failed store query denies the loan, since
// wrongly allowing one is the worse outcome. Neither gate mutates state; both
// are idempotent and safe to call on every checkout attempt.
type EligibilityChecker struct {
	store       RecordStore
	logger      Logger
	metrics     MetricsCollector
	errorPolicy ErrorPolicy
}

// CheckerOption defines a functional option for configuring an EligibilityChecker.
type CheckerOption func(*EligibilityChecker) error

// WithCheckerLogger sets the logger for denied-gate error reporting.
func WithCheckerLogger(logger Logger) CheckerOption {
	return func(c *EligibilityChecker) error {
		c.logger = logger
		return nil
	}
}

// WithCheckerMetrics sets the metrics collector for failed-gate counters.
func WithCheckerMetrics(collector MetricsCollector) CheckerOption {
	return func(c *EligibilityChecker) error {
		c.metrics = collector
		return nil
	}
}

// NewEligibilityChecker creates an EligibilityChecker backed by the given
// record store, with optional configuration.
func NewEligibilityChecker(store RecordStore, options ...CheckerOption) (EligibilityChecker, error) {
	if store == nil {
		return EligibilityChecker{}, ErrNilRecordStore
	}

	checker := EligibilityChecker{
		store:       store,
		errorPolicy: DenyOnError,
	}

	for _, option := range options {
		if err := option(&checker); err != nil {
			return EligibilityChecker{}, err
		}
	}

	return checker, nil
}

// CanMemberBorrow is the borrowing-limit gate: it counts the member's active
// (Borrowed) loans under the account and denies once the count reaches the
// limit. Current and Limit are always populated for display.
func (c EligibilityChecker) CanMemberBorrow(
	ctx context.Context,
	accountID uuid.UUID,
	memberID uuid.UUID,
	limit int,
) EligibilityVerdict {

	filter := BuildRecordFilter(accountID).
		Matching().
		AllPredicatesOf(
			P(FieldMemberID, memberID),
			P(FieldStatus, string(StatusBorrowed)),
		).
		Finalize()

	count, err := c.store.CountLoanRecords(ctx, filter)
	if err != nil {
		c.reportGateFailure(gateBorrowingLimit, err)

		return EligibilityVerdict{
			Allowed: false,
			Reason:  reasonBorrowingLimitCheckFailed,
			Limit:   limit,
		}
	}

	if count >= limit {
		return EligibilityVerdict{
			Allowed: false,
			Reason:  reasonBorrowingLimitReached,
			Current: count,
			Limit:   limit,
		}
	}

	return EligibilityVerdict{
		Allowed: true,
		Current: count,
		Limit:   limit,
	}
}

// CheckUnpaidLateFees is the unpaid-fees gate: it sums the fee amounts of the
// member's loans that are neither paid nor waived and denies once the total
// exceeds the threshold (strictly greater than).
func (c EligibilityChecker) CheckUnpaidLateFees(
	ctx context.Context,
	accountID uuid.UUID,
	memberID uuid.UUID,
	threshold float64,
) EligibilityVerdict {

	filter := BuildRecordFilter(accountID).
		Matching().
		AllPredicatesOf(
			P(FieldMemberID, memberID),
			P(FieldFeePaid, false),
			P(FieldFeeWaived, false),
		).
		Finalize()

	loans, err := c.store.QueryLoanRecords(ctx, filter)
	if err != nil {
		c.reportGateFailure(gateUnpaidFees, err)

		return EligibilityVerdict{
			Allowed: false,
			Reason:  reasonUnpaidFeeCheckFailed,
		}
	}

	var total float64
	for _, loan := range loans {
		total += loan.FeeAmount
	}
	total = roundToCents(total)

	if total > threshold {
		return EligibilityVerdict{
			Allowed: false,
			Reason:  fmt.Sprintf(reasonUnpaidFeesFormat, total),
		}
	}

	return EligibilityVerdict{Allowed: true}
}

// reportGateFailure logs and counts a gate that failed closed.
func (c EligibilityChecker) reportGateFailure(gate string, err error) {
	if c.logger != nil {
		c.logger.Error(logMsgEligibilityCheckFailed,
			labelGate, gate,
			labelErrorPolicy, c.errorPolicy.String(),
			"error", err.Error())
	}

	if c.metrics != nil {
		c.metrics.IncrementCounter(metricEligibilityGateFailed, map[string]string{
			labelGate:        gate,
			labelErrorPolicy: c.errorPolicy.String(),
		})
	}
}
