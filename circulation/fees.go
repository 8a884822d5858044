package circulation

import (
	"math"
	"time"
)

const hoursPerDay = 24

// FeePolicy is the per-account late-fee configuration. It is read-only to
// this package; values are expected to be non-negative. Providers normalize
// loaded configuration with Normalized, the calculation itself does not
// validate (see CalculateLateFee).
type FeePolicy struct {
	// DailyLateFeeRate is the fee charged per chargeable day, in currency units.
	DailyLateFeeRate float64

	// GracePeriodDays is the number of overdue days during which no fee accrues.
	GracePeriodDays int

	// MaxLateFeeCap caps the total fee for one loan; 0 disables the cap.
	MaxLateFeeCap float64
}

// DefaultFeePolicy returns the policy applied when an account has none
// configured: 50 cents per day, no grace period, uncapped.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		DailyLateFeeRate: 0.50,
		GracePeriodDays:  0,
		MaxLateFeeCap:    0,
	}
}

// Normalized returns a copy with negative values clamped to zero. Invalid
// configuration must not take fee collection down, and a clamped value is the
// conservative reading of "no fee".
func (p FeePolicy) Normalized() FeePolicy {
	if p.DailyLateFeeRate < 0 {
		p.DailyLateFeeRate = 0
	}

	if p.GracePeriodDays < 0 {
		p.GracePeriodDays = 0
	}

	if p.MaxLateFeeCap < 0 {
		p.MaxLateFeeCap = 0
	}

	return p
}

// DaysOverdue returns the signed whole-day count between dueDate and now,
// rounded up: any started day past the due date counts as a full overdue day.
// Negative means not yet due. Pure and referentially transparent, so it is
// safe to call repeatedly with a fresh "now" on every render or poll.
func DaysOverdue(dueDate time.Time, now time.Time) int {
	return int(math.Ceil(now.Sub(dueDate).Hours() / hoursPerDay))
}

// IsOverdue reports whether the loan is past due at the given time.
// Due exactly now is not overdue.
func IsOverdue(dueDate time.Time, now time.Time) bool {
	return DaysOverdue(dueDate, now) > 0
}

// CalculateLateFee computes the late fee owed for a loan returned (or
// evaluated) at returnedAt, in currency units rounded to two decimal places.
//
// Chargeable days are the overdue days remaining after the grace period; zero
// or fewer yields no fee. A positive MaxLateFeeCap bounds the result.
//
// Policy values are taken as supplied: a negative rate produces a negative
// fee. Callers load policies through providers that clamp at configuration
// time instead.
func CalculateLateFee(dueDate time.Time, returnedAt time.Time, policy FeePolicy) float64 {
	daysOverdue := DaysOverdue(dueDate, returnedAt)
	if daysOverdue <= 0 {
		return 0
	}

	chargeableDays := daysOverdue - policy.GracePeriodDays
	if chargeableDays <= 0 {
		return 0
	}

	fee := float64(chargeableDays) * policy.DailyLateFeeRate

	if policy.MaxLateFeeCap > 0 && fee > policy.MaxLateFeeCap {
		fee = policy.MaxLateFeeCap
	}

	return roundToCents(fee)
}

// roundToCents rounds half-up on the cents digit. For the non-negative
// amounts this package produces, half-up and half-away-from-zero coincide.
func roundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
