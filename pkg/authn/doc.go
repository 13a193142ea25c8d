// Package authn carries the authenticated caller identity through the
// request pipeline.
//
// The engine does not perform logins; it consumes an identity produced by the
// session/refresh flow elsewhere in the platform. That flow computes the
// caller's permission set once (at authentication time) and embeds it as a
// comma-separated claim in the access token. Identity keeps the raw claim
// string so the token fast path can re-derive allow/deny without any store
// access.
//
// Claims defines the JWT claim layout on top of golang-jwt registered claims
// so both the token producer and this engine agree on the wire format.
package authn
