package permission

import (
	"slices"
	"strings"
)

const (
	// Delimiter separates the domain from the action inside a code,
	// e.g. "MEMBERS:READ".
	Delimiter = ":"

	// Wildcard, when used as the action segment ("MEMBERS:*"), matches
	// every code in the domain.
	Wildcard = "*"

	// ClaimSeparator separates codes inside a token permission claim.
	ClaimSeparator = ","

	// wildcardSuffix is the tail a granted code must carry to act as a
	// domain wildcard.
	wildcardSuffix = Delimiter + Wildcard
)

// Normalize canonicalizes a single permission code: surrounding whitespace is
// stripped and the result is upper-cased. An all-whitespace input normalizes
// to the empty string.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeAll normalizes every code in the slice, drops empty entries and
// duplicates, and sorts the result for deterministic output. Returns nil for
// empty input.
func NormalizeAll(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(codes))
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		code = Normalize(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		result = append(result, code)
	}

	if len(result) == 0 {
		return nil
	}
	slices.Sort(result)
	return result
}

// Matches reports whether a single granted code satisfies the required code.
// Both sides are expected to be normalized already.
//
// A granted code satisfies the requirement when it is string-equal to it, or
// when it ends in ":*" and the requirement starts with the granted code minus
// the trailing "*" (so "MEMBERS:*" matches "MEMBERS:READ").
func Matches(granted, required string) bool {
	if granted == required {
		return true
	}
	if strings.HasSuffix(granted, wildcardSuffix) {
		prefix := strings.TrimSuffix(granted, Wildcard)
		return strings.HasPrefix(required, prefix)
	}
	return false
}

// HasPermission reports whether any code in the granted set satisfies the
// required code. Both sides are normalized before comparison, so callers may
// pass raw input. An empty granted set or a blank required code never
// matches.
func HasPermission(granted []string, required string) bool {
	if len(granted) == 0 {
		return false
	}
	required = Normalize(required)
	if required == "" {
		return false
	}
	for _, g := range granted {
		if Matches(Normalize(g), required) {
			return true
		}
	}
	return false
}

// ParseClaim splits a comma-separated permission claim into normalized codes.
// Empty entries (including entries that are only whitespace) are treated as
// absent. Returns nil when the claim holds no codes.
func ParseClaim(claim string) []string {
	if strings.TrimSpace(claim) == "" {
		return nil
	}

	parts := strings.Split(claim, ClaimSeparator)
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if code := Normalize(part); code != "" {
			codes = append(codes, code)
		}
	}

	if len(codes) == 0 {
		return nil
	}
	return codes
}

// JoinClaim renders a set of codes as the comma-separated claim value carried
// inside authentication tokens. Codes are normalized on the way out so the
// claim round-trips through ParseClaim unchanged.
func JoinClaim(codes []string) string {
	return strings.Join(NormalizeAll(codes), ClaimSeparator)
}

// ClaimAllows reports whether a raw permission claim contains the required
// code. The claim satisfies the requirement when it lists the code verbatim
// (case-insensitive), or when it lists "<domain>:*" where <domain> is the
// segment of the required code before its first colon.
//
// This is the token fast path: it performs no I/O and never consults a store.
func ClaimAllows(claim, required string) bool {
	required = Normalize(required)
	if required == "" {
		return false
	}

	codes := ParseClaim(claim)
	if len(codes) == 0 {
		return false
	}

	domainWildcard := ""
	if domain, _, found := strings.Cut(required, Delimiter); found {
		domainWildcard = domain + wildcardSuffix
	}

	for _, code := range codes {
		if code == required {
			return true
		}
		if domainWildcard != "" && code == domainWildcard {
			return true
		}
	}
	return false
}
