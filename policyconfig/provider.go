package policyconfig

import (
	"context"

	"github.com/google/uuid"

	"github.com/shelfwise/circulation-go/circulation"
)

// Provider yields the fee policy to apply for an account. Implementations
// must be safe for concurrent use; callers read the policy at evaluation
// time.
type Provider interface {
	FeePolicy(ctx context.Context, accountID uuid.UUID) (circulation.FeePolicy, error)
}

// StaticProvider serves one fixed policy for every account.
type StaticProvider struct {
	policy circulation.FeePolicy
}

// Static creates a provider around a fixed policy. The policy is normalized
// once at construction.
func Static(policy circulation.FeePolicy) StaticProvider {
	return StaticProvider{policy: policy.Normalized()}
}

// FeePolicy returns the fixed policy regardless of account.
func (p StaticProvider) FeePolicy(_ context.Context, _ uuid.UUID) (circulation.FeePolicy, error) {
	return p.policy, nil
}
