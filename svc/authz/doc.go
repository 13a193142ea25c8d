// Package authz is the authorization engine of the platform: given an
// authenticated caller, a required permission code and a scope, it decides
// allow or deny.
//
// Permissions reach a caller through three mechanisms that the engine folds
// into one granted set:
//
//   - role-attached permissions: holding a role grants every permission row
//     attached to it;
//   - explicit assignments: subject-based grants (user, role or group) stored
//     independently of the role→permission link, optionally scoped to a
//     resource node;
//   - group membership: assignments targeting a group apply to every member.
//
// Two evaluation paths exist and must agree. The slow path
// (Service.Authorize) aggregates the granted set from the grant store,
// read-through-caching the computed matrix with a TTL. The fast path
// (AuthorizeClaims) re-derives the decision purely from the permission claim
// embedded in the caller's token at authentication time; it performs no I/O
// and its staleness is bounded by the token lifetime.
//
// Every write to roles, assignments or group membership must go through the
// Invalidator so the next slow-path computation does not see a stale cached
// matrix. Invalidation fans out through secondary indices (role→users,
// group→users) instead of flushing the cache globally.
//
// The engine fails closed everywhere: malformed input, unknown scopes,
// callers outside the tenant and anonymous requests all evaluate to deny,
// never to an error that could bypass the check.
package authz
