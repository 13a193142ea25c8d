// Package kv defines the key-value cache port used by the authorization
// engine, plus a Redis implementation for production and an in-memory
// implementation for tests and local development.
//
// The port is deliberately small: string values with TTLs, prefix-pattern
// deletion, and unordered string sets. That is exactly the surface the
// permission-matrix cache and its secondary indices need, and nothing more.
// Keeping index maintenance (set add/remove) on the same interface as value
// storage lets the invalidation fabric run against either backend.
//
//	store, err := kv.NewRedisStore(client)
//	...
//	_ = store.Set(ctx, "authz:user-matrix:"+userID, matrix, 15*time.Minute)
//	_ = store.DeletePattern(ctx, "authz:user-matrix:"+userID+"*")
package kv
