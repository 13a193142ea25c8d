// Package permission implements the permission-code algebra shared by every
// authorization path in the platform.
//
// A permission code is a colon-delimited string of the form "<DOMAIN>:<ACTION>",
// e.g. "MEMBERS:READ" or "GAMING:DRAW_CREATE". Codes are case-insensitive by
// design: the package normalizes both the granted side and the required side
// to trimmed upper-case before any comparison, so callers never have to care
// about the casing a code was stored or transported with.
//
// A grant ending in ":*" is a domain wildcard. "MEMBERS:*" matches any
// required code in the MEMBERS domain ("MEMBERS:READ", "MEMBERS:EXPORT", ...)
// but nothing outside it.
//
// # Usage
//
//	granted := permission.NormalizeAll([]string{"members:read", "gaming:*"})
//
//	permission.HasPermission(granted, "MEMBERS:READ")       // true
//	permission.HasPermission(granted, "GAMING:DRAW_CREATE") // true
//	permission.HasPermission(granted, "REPORTS:EXPORT")     // false
//
// The package also understands the comma-separated claim format used to embed
// a caller's computed permission set into an authentication token:
//
//	codes := permission.ParseClaim("MEMBERS:READ, TICKETS:*")
//	permission.ClaimAllows("MEMBERS:READ,TICKETS:*", "TICKETS:SELL") // true
//
// All functions are pure and allocation-aware; the package has no
// dependencies, which keeps it usable from both the database-backed slow path
// and the token-based fast path without dragging either stack along.
package permission
