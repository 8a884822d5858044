package policyconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/shelfwise/circulation-go/circulation"
)

// Environment variables understood by FromEnv.
const (
	EnvDailyLateFeeRate = "CIRCULATION_DAILY_LATE_FEE_RATE"
	EnvGracePeriodDays  = "CIRCULATION_GRACE_PERIOD_DAYS"
	EnvMaxLateFeeCap    = "CIRCULATION_MAX_LATE_FEE_CAP"
)

var ErrParsingEnvValueFailed = errors.New("parsing policy environment variable failed")

// FromEnv loads a process-wide fee policy from environment variables,
// reading a .env file first when one exists. Unset variables fall back to
// DefaultFeePolicy values; negative values are clamped.
func FromEnv() (StaticProvider, error) {
	_ = godotenv.Load() // a .env file is optional

	policy := circulation.DefaultFeePolicy()

	if raw, ok := os.LookupEnv(EnvDailyLateFeeRate); ok {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return StaticProvider{}, errors.Join(ErrParsingEnvValueFailed, fmt.Errorf("%s: %w", EnvDailyLateFeeRate, err))
		}
		policy.DailyLateFeeRate = rate
	}

	if raw, ok := os.LookupEnv(EnvGracePeriodDays); ok {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return StaticProvider{}, errors.Join(ErrParsingEnvValueFailed, fmt.Errorf("%s: %w", EnvGracePeriodDays, err))
		}
		policy.GracePeriodDays = days
	}

	if raw, ok := os.LookupEnv(EnvMaxLateFeeCap); ok {
		feeCap, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return StaticProvider{}, errors.Join(ErrParsingEnvValueFailed, fmt.Errorf("%s: %w", EnvMaxLateFeeCap, err))
		}
		policy.MaxLateFeeCap = feeCap
	}

	return Static(policy), nil
}
