// Package policyconfig provides ways to obtain the per-account
// circulation.FeePolicy: a fixed policy, a TOML file, environment variables,
// or any store-backed provider, optionally wrapped in a TTL cache.
//
// All providers normalize what they load: negative rates, caps, and grace
// periods are clamped to zero rather than rejected, so a bad configuration
// value can never produce a negative fee or take fee collection down.
//
// The core evaluators do not cache policies themselves; wrap a provider with
// Cached when policy reads should not hit the source on every evaluation:
//
//	provider := policyconfig.Cached(
//		store, // e.g. a postgresengine.RecordStore
//		policyconfig.NewRedisCache("localhost:6379"),
//		5*time.Minute,
//	)
package policyconfig
