package authz_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/drawdeck/authzkit/pkg/authn"
	"github.com/drawdeck/authzkit/svc/authz"
)

func TestAuthorizeClaims(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		caller   authn.Identity
		required string
		want     bool
	}{
		{
			name:     "verbatim code in claim",
			caller:   authn.Identity{UserID: userID, Permissions: "MEMBERS:READ,TICKETS:SELL"},
			required: "TICKETS:SELL",
			want:     true,
		},
		{
			name:     "case-insensitive with whitespace",
			caller:   authn.Identity{UserID: userID, Permissions: " members:read , tickets:sell "},
			required: "MEMBERS:READ",
			want:     true,
		},
		{
			name:     "wildcard entry covers domain",
			caller:   authn.Identity{UserID: userID, Permissions: "GAMING:*"},
			required: "GAMING:DRAW_CREATE",
			want:     true,
		},
		{
			name:     "wildcard entry does not cross domains",
			caller:   authn.Identity{UserID: userID, Permissions: "GAMING:*"},
			required: "MEMBERS:READ",
			want:     false,
		},
		{
			name:     "code absent",
			caller:   authn.Identity{UserID: userID, Permissions: "MEMBERS:READ"},
			required: "REPORTS:EXPORT",
			want:     false,
		},
		{
			name:     "blank claim fails closed",
			caller:   authn.Identity{UserID: userID, Permissions: "   "},
			required: "MEMBERS:READ",
			want:     false,
		},
		{
			name:     "missing claim fails closed",
			caller:   authn.Identity{UserID: userID},
			required: "MEMBERS:READ",
			want:     false,
		},
		{
			name:     "unauthenticated caller fails closed",
			caller:   authn.Identity{Permissions: "MEMBERS:READ"},
			required: "MEMBERS:READ",
			want:     false,
		},
		{
			name:     "blank required code fails closed",
			caller:   authn.Identity{UserID: userID, Permissions: "MEMBERS:READ"},
			required: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.AuthorizeClaims(tt.caller, tt.required))
		})
	}
}
