package kv

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps backend failures so callers can treat any cache
// outage uniformly (log and continue; never turn it into an authorization
// decision).
var ErrUnavailable = errors.New("kv: store unavailable")

// Store is the cache port consumed by the authorization engine.
//
// Pattern strings use Redis glob syntax; the engine only relies on trailing
// "*" (prefix matching), which every implementation must support.
type Store interface {
	// Get returns the value for key. The second return value is false when
	// the key does not exist or has expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key. A zero ttl means no expiry; the engine
	// always passes a positive ttl for permission matrices, as a backstop
	// against missed invalidations.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching the pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// SetAdd adds members to the unordered set at key, creating it if
	// needed. Duplicate members are ignored.
	SetAdd(ctx context.Context, key string, members ...string) error

	// SetMembers returns all members of the set at key; nil for a missing
	// or empty set.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// SetRemove removes members from the set at key. Missing members and
	// missing sets are not an error.
	SetRemove(ctx context.Context, key string, members ...string) error
}
