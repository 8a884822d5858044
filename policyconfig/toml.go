package policyconfig

import (
	"errors"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shelfwise/circulation-go/circulation"
)

var ErrReadingPolicyFileFailed = errors.New("reading policy file failed")
var ErrParsingPolicyFileFailed = errors.New("parsing policy file failed")

// tomlSettings is the on-disk shape of a process-wide fee policy file:
//
//	daily_late_fee_rate = 0.50
//	grace_period_days = 2
//	max_late_fee_cap = 10.00
type tomlSettings struct {
	DailyLateFeeRate float64 `toml:"daily_late_fee_rate"`
	GracePeriodDays  int     `toml:"grace_period_days"`
	MaxLateFeeCap    float64 `toml:"max_late_fee_cap"`
}

// FromTOMLFile loads a process-wide fee policy from a TOML file. Missing keys
// keep their zero values; negative values are clamped.
func FromTOMLFile(path string) (StaticProvider, error) {
	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		return StaticProvider{}, errors.Join(ErrReadingPolicyFileFailed, readErr)
	}

	var settings tomlSettings
	if parseErr := toml.Unmarshal(raw, &settings); parseErr != nil {
		return StaticProvider{}, errors.Join(ErrParsingPolicyFileFailed, parseErr)
	}

	return Static(circulation.FeePolicy{
		DailyLateFeeRate: settings.DailyLateFeeRate,
		GracePeriodDays:  settings.GracePeriodDays,
		MaxLateFeeCap:    settings.MaxLateFeeCap,
	}), nil
}
