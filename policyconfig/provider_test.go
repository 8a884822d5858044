package policyconfig_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/circulation-go/circulation"
	"github.com/shelfwise/circulation-go/policyconfig"
)

func Test_Static_ServesSamePolicyForEveryAccount(t *testing.T) {
	// arrange
	provider := policyconfig.Static(circulation.FeePolicy{
		DailyLateFeeRate: 0.25,
		GracePeriodDays:  2,
		MaxLateFeeCap:    15.00,
	})

	// act
	first, firstErr := provider.FeePolicy(context.Background(), uuid.New())
	second, secondErr := provider.FeePolicy(context.Background(), uuid.New())

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, first, second)
	assert.Equal(t, 0.25, first.DailyLateFeeRate)
}

func Test_Static_ClampsNegativeValuesAtConstruction(t *testing.T) {
	// arrange
	provider := policyconfig.Static(circulation.FeePolicy{
		DailyLateFeeRate: -0.50,
		GracePeriodDays:  -1,
		MaxLateFeeCap:    -5.00,
	})

	// act
	policy, err := provider.FeePolicy(context.Background(), uuid.New())

	// assert
	require.NoError(t, err)
	assert.Zero(t, policy.DailyLateFeeRate)
	assert.Zero(t, policy.GracePeriodDays)
	assert.Zero(t, policy.MaxLateFeeCap)
}

func Test_FromTOMLFile_LoadsPolicyFromFile(t *testing.T) {
	// arrange
	path := writePolicyFile(t, `
daily_late_fee_rate = 0.75
grace_period_days = 3
max_late_fee_cap = 20.00
`)

	// act
	provider, err := policyconfig.FromTOMLFile(path)

	// assert
	require.NoError(t, err)

	policy, policyErr := provider.FeePolicy(context.Background(), uuid.New())
	require.NoError(t, policyErr)
	assert.Equal(t, 0.75, policy.DailyLateFeeRate)
	assert.Equal(t, 3, policy.GracePeriodDays)
	assert.Equal(t, 20.00, policy.MaxLateFeeCap)
}

func Test_FromTOMLFile_KeepsZeroValues_ForMissingKeys(t *testing.T) {
	// arrange
	path := writePolicyFile(t, `daily_late_fee_rate = 0.75`)

	// act
	provider, err := policyconfig.FromTOMLFile(path)

	// assert
	require.NoError(t, err)

	policy, policyErr := provider.FeePolicy(context.Background(), uuid.New())
	require.NoError(t, policyErr)
	assert.Equal(t, 0.75, policy.DailyLateFeeRate)
	assert.Zero(t, policy.GracePeriodDays)
	assert.Zero(t, policy.MaxLateFeeCap)
}

func Test_FromTOMLFile_ReturnsError_WhenFileDoesNotExist(t *testing.T) {
	_, err := policyconfig.FromTOMLFile(filepath.Join(t.TempDir(), "missing.toml"))

	assert.ErrorIs(t, err, policyconfig.ErrReadingPolicyFileFailed)
}

func Test_FromTOMLFile_ReturnsError_WhenFileIsNotValidTOML(t *testing.T) {
	path := writePolicyFile(t, `daily_late_fee_rate = = broken`)

	_, err := policyconfig.FromTOMLFile(path)

	assert.ErrorIs(t, err, policyconfig.ErrParsingPolicyFileFailed)
}

func Test_FromEnv_LoadsPolicyFromEnvironment(t *testing.T) {
	// arrange
	t.Setenv(policyconfig.EnvDailyLateFeeRate, "1.25")
	t.Setenv(policyconfig.EnvGracePeriodDays, "2")
	t.Setenv(policyconfig.EnvMaxLateFeeCap, "30.00")

	// act
	provider, err := policyconfig.FromEnv()

	// assert
	require.NoError(t, err)

	policy, policyErr := provider.FeePolicy(context.Background(), uuid.New())
	require.NoError(t, policyErr)
	assert.Equal(t, 1.25, policy.DailyLateFeeRate)
	assert.Equal(t, 2, policy.GracePeriodDays)
	assert.Equal(t, 30.00, policy.MaxLateFeeCap)
}

func Test_FromEnv_FallsBackToDefaults_ForUnsetVariables(t *testing.T) {
	// arrange
	t.Setenv(policyconfig.EnvGracePeriodDays, "5")

	unsetPolicyEnv(t, policyconfig.EnvDailyLateFeeRate)
	unsetPolicyEnv(t, policyconfig.EnvMaxLateFeeCap)

	// act
	provider, err := policyconfig.FromEnv()

	// assert
	require.NoError(t, err)

	policy, policyErr := provider.FeePolicy(context.Background(), uuid.New())
	require.NoError(t, policyErr)
	assert.Equal(t, circulation.DefaultFeePolicy().DailyLateFeeRate, policy.DailyLateFeeRate)
	assert.Equal(t, 5, policy.GracePeriodDays)
}

func Test_FromEnv_ReturnsError_WhenVariableDoesNotParse(t *testing.T) {
	t.Setenv(policyconfig.EnvDailyLateFeeRate, "not-a-number")

	_, err := policyconfig.FromEnv()

	assert.ErrorIs(t, err, policyconfig.ErrParsingEnvValueFailed)
}

func Test_Cached_ServesFromInnerProviderOnMiss_AndFromCacheAfterwards(t *testing.T) {
	// arrange
	inner := &countingProvider{policy: circulation.FeePolicy{DailyLateFeeRate: 0.75, GracePeriodDays: 1}}
	cache := newMapCache()
	provider := policyconfig.Cached(inner, cache, time.Minute)
	accountID := uuid.New()

	// act
	first, firstErr := provider.FeePolicy(context.Background(), accountID)
	second, secondErr := provider.FeePolicy(context.Background(), accountID)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func Test_Cached_FallsThroughToInnerProvider_OnCorruptCacheEntry(t *testing.T) {
	// arrange
	inner := &countingProvider{policy: circulation.FeePolicy{DailyLateFeeRate: 0.75}}
	cache := newMapCache()
	accountID := uuid.New()
	_ = cache.Set(context.Background(), "circulation:policy:"+accountID.String(), "{not json", time.Minute)

	provider := policyconfig.Cached(inner, cache, time.Minute)

	// act
	policy, err := provider.FeePolicy(context.Background(), accountID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0.75, policy.DailyLateFeeRate)
	assert.Equal(t, 1, inner.calls)
}

func Test_Cached_PropagatesInnerProviderError(t *testing.T) {
	// arrange
	innerErr := errors.New("policy row gone")
	provider := policyconfig.Cached(&failingProvider{err: innerErr}, newMapCache(), time.Minute)

	// act
	_, err := provider.FeePolicy(context.Background(), uuid.New())

	// assert
	assert.ErrorIs(t, err, innerErr)
}

func Test_Cached_ToleratesCacheSetFailures(t *testing.T) {
	// arrange
	inner := &countingProvider{policy: circulation.FeePolicy{DailyLateFeeRate: 0.75}}
	provider := policyconfig.Cached(inner, &readOnlyCache{}, time.Minute)

	// act
	policy, err := provider.FeePolicy(context.Background(), uuid.New())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0.75, policy.DailyLateFeeRate)
}

/*** test doubles and helpers ***/

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "circulation.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// unsetPolicyEnv clears a variable for the test while restoring it afterwards.
func unsetPolicyEnv(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

type countingProvider struct {
	policy circulation.FeePolicy
	calls  int
}

func (p *countingProvider) FeePolicy(_ context.Context, _ uuid.UUID) (circulation.FeePolicy, error) {
	p.calls++

	return p.policy.Normalized(), nil
}

type failingProvider struct {
	err error
}

func (p *failingProvider) FeePolicy(_ context.Context, _ uuid.UUID) (circulation.FeePolicy, error) {
	return circulation.FeePolicy{}, p.err
}

type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool) {
	value, ok := c.entries[key]

	return value, ok
}

func (c *mapCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.entries[key] = value

	return nil
}

type readOnlyCache struct{}

func (c *readOnlyCache) Get(_ context.Context, _ string) (string, bool) {
	return "", false
}

func (c *readOnlyCache) Set(_ context.Context, _ string, _ string, _ time.Duration) error {
	return errors.New("cache unavailable")
}
