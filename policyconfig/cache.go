package policyconfig

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfwise/circulation-go/circulation"
)

const cacheKeyPrefix = "circulation:policy:"

// Cache is the key-value capability the cached provider needs. Get reports a
// miss with ok=false; Set failures are tolerated (the cache is an
// optimization, not a source of truth).
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// CachedProvider decorates another Provider with a TTL cache. Policies are
// serialized to JSON for storage; a corrupt cache entry falls through to the
// inner provider.
type CachedProvider struct {
	inner Provider
	cache Cache
	ttl   time.Duration
}

// Cached creates a caching decorator around the given provider.
func Cached(inner Provider, cache Cache, ttl time.Duration) CachedProvider {
	return CachedProvider{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

type cachedPolicyDocument struct {
	DailyLateFeeRate float64 `json:"daily_late_fee_rate"`
	GracePeriodDays  int     `json:"grace_period_days"`
	MaxLateFeeCap    float64 `json:"max_late_fee_cap"`
}

// FeePolicy serves the policy from the cache when present, loading and
// caching it otherwise.
func (p CachedProvider) FeePolicy(ctx context.Context, accountID uuid.UUID) (circulation.FeePolicy, error) {
	key := cacheKeyPrefix + accountID.String()

	if raw, ok := p.cache.Get(ctx, key); ok {
		var document cachedPolicyDocument
		if err := jsoniter.ConfigFastest.UnmarshalFromString(raw, &document); err == nil {
			policy := circulation.FeePolicy{
				DailyLateFeeRate: document.DailyLateFeeRate,
				GracePeriodDays:  document.GracePeriodDays,
				MaxLateFeeCap:    document.MaxLateFeeCap,
			}

			return policy.Normalized(), nil
		}
	}

	policy, err := p.inner.FeePolicy(ctx, accountID)
	if err != nil {
		return circulation.FeePolicy{}, err
	}

	document := cachedPolicyDocument{
		DailyLateFeeRate: policy.DailyLateFeeRate,
		GracePeriodDays:  policy.GracePeriodDays,
		MaxLateFeeCap:    policy.MaxLateFeeCap,
	}

	if raw, marshalErr := jsoniter.ConfigFastest.MarshalToString(document); marshalErr == nil {
		_ = p.cache.Set(ctx, key, raw, p.ttl)
	}

	return policy, nil
}
