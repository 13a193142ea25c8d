package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/drawdeck/authzkit/pkg/authn"
	"github.com/drawdeck/authzkit/svc/authz"
)

func TestRequirePermission(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := authz.RequirePermission("TICKETS:SELL")(next)

	tests := []struct {
		name       string
		identity   *authn.Identity
		wantStatus int
	}{
		{
			name:       "anonymous request",
			identity:   nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unauthenticated identity",
			identity:   &authn.Identity{Permissions: "TICKETS:SELL"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing permission",
			identity:   &authn.Identity{UserID: uuid.New(), Permissions: "MEMBERS:READ"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "verbatim permission",
			identity:   &authn.Identity{UserID: uuid.New(), Permissions: "TICKETS:SELL"},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "wildcard permission",
			identity:   &authn.Identity{UserID: uuid.New(), Permissions: "TICKETS:*"},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
			if tt.identity != nil {
				req = req.WithContext(authn.WithIdentity(req.Context(), *tt.identity))
			}

			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
