package authz

import (
	"strings"

	"github.com/drawdeck/authzkit/pkg/authn"
	"github.com/drawdeck/authzkit/pkg/permission"
)

// AuthorizeClaims is the token fast path: it decides allow/deny purely from
// the permission claim embedded in the caller's token, with no store access.
//
// The caller passes when they are authenticated, the claim is present and
// non-blank, and the claim lists the required code verbatim
// (case-insensitive) or a matching "<domain>:*" wildcard entry.
//
// The claim was computed once at authentication time, so it can drift from
// the live aggregator result until the caller re-authenticates; the token
// lifetime bounds the drift. Callers needing the authoritative answer use
// Service.Authorize.
func AuthorizeClaims(caller authn.Identity, requiredCode string) bool {
	if !caller.Authenticated() {
		return false
	}
	if strings.TrimSpace(caller.Permissions) == "" {
		return false
	}
	return permission.ClaimAllows(caller.Permissions, requiredCode)
}
