package authz

import (
	"net/http"

	"github.com/drawdeck/authzkit/pkg/authn"
)

// RequirePermission returns net/http middleware that guards a route with the
// token fast path. It expects an upstream authentication middleware to have
// placed the caller identity in the request context; anonymous requests get
// 401, authenticated callers without the code get 403.
//
// The middleware is framework-agnostic on purpose: routing belongs to the
// application, the engine only supplies the decision.
func RequirePermission(code string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := authn.IdentityFromContext(r.Context())
			if !ok || !caller.Authenticated() {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			if !AuthorizeClaims(caller, code) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
