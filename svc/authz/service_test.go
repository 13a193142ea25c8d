package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdeck/authzkit/pkg/authn"
	"github.com/drawdeck/authzkit/pkg/kv"
	"github.com/drawdeck/authzkit/pkg/subject"
	"github.com/drawdeck/authzkit/svc/authz"
)

const (
	platformRoleID int64 = 1
	tenantRoleID   int64 = 2
)

// fixture wires a memory grant store with one platform operator and one
// tenant member holding a tenant role.
type fixture struct {
	store    *authz.MemoryGrantStore
	tenantID uuid.UUID
	operator authn.Identity
	member   authn.Identity
}

func newFixture() *fixture {
	f := &fixture{
		store:    authz.NewMemoryGrantStore(),
		tenantID: uuid.New(),
		operator: authn.Identity{UserID: uuid.New(), Type: authn.UserTypePlatform},
	}
	f.member = authn.Identity{
		UserID:   uuid.New(),
		TenantID: f.tenantID,
		Type:     authn.UserTypeMember,
	}

	f.store.AddRole(authz.Role{ID: platformRoleID, Name: "operator"})
	f.store.AssignRole(f.operator.UserID, platformRoleID)
	f.store.AttachPermission(platformRoleID, "GAMING:*")
	f.store.AttachPermission(platformRoleID, "PROFILE:UPDATE")

	f.store.AddTenantMember(f.tenantID, f.member.UserID)
	f.store.AddRole(authz.Role{ID: tenantRoleID, Name: "clerk", TenantID: f.tenantID})
	f.store.AssignRole(f.member.UserID, tenantRoleID)
	f.store.AttachPermission(tenantRoleID, "TICKETS:READ")

	return f
}

func TestGetPlatformPermissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := authz.NewService(f.store)

	t.Run("platform roles aggregate", func(t *testing.T) {
		granted, err := svc.GetPlatformPermissions(ctx, f.operator.UserID)
		require.NoError(t, err)
		assert.Equal(t, []string{"GAMING:*", "PROFILE:UPDATE"}, granted)
	})

	t.Run("no platform roles means empty set, not error", func(t *testing.T) {
		granted, err := svc.GetPlatformPermissions(ctx, f.member.UserID)
		require.NoError(t, err)
		assert.Empty(t, granted)
	})
}

func TestGetTenantPermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("role-attached codes", func(t *testing.T) {
		f := newFixture()
		svc := authz.NewService(f.store)

		granted, err := svc.GetTenantPermissions(ctx, f.member.UserID, f.tenantID)
		require.NoError(t, err)
		assert.Equal(t, []string{"TICKETS:READ"}, granted)
	})

	t.Run("non-member gets empty set even with grants elsewhere", func(t *testing.T) {
		f := newFixture()
		svc := authz.NewService(f.store)

		otherTenant := uuid.New()
		granted, err := svc.GetTenantPermissions(ctx, f.member.UserID, otherTenant)
		require.NoError(t, err)
		assert.Empty(t, granted)
	})

	t.Run("direct user assignment", func(t *testing.T) {
		f := newFixture()
		f.store.AddAssignment(authz.Assignment{
			ID:       uuid.New(),
			TenantID: f.tenantID,
			Subject:  subject.User(f.member.UserID),
			Decision: authz.DecisionAllow,
			Code:     "reports:view",
		})
		svc := authz.NewService(f.store)

		granted, err := svc.GetTenantPermissions(ctx, f.member.UserID, f.tenantID)
		require.NoError(t, err)
		assert.Contains(t, granted, "REPORTS:VIEW")
	})

	t.Run("role-subject assignment via encoded role id", func(t *testing.T) {
		f := newFixture()
		f.store.AddAssignment(authz.Assignment{
			ID:       uuid.New(),
			TenantID: f.tenantID,
			Subject:  subject.Role(tenantRoleID),
			Decision: authz.DecisionAllow,
			Code:     "TICKETS:REFUND",
		})
		svc := authz.NewService(f.store)

		granted, err := svc.GetTenantPermissions(ctx, f.member.UserID, f.tenantID)
		require.NoError(t, err)
		assert.Contains(t, granted, "TICKETS:REFUND")
	})

	t.Run("group-subject assignment", func(t *testing.T) {
		f := newFixture()
		groupID := uuid.New()
		f.store.AddGroupMember(groupID, f.member.UserID)
		f.store.AddAssignment(authz.Assignment{
			ID:       uuid.New(),
			TenantID: f.tenantID,
			Subject:  subject.Group(groupID),
			Decision: authz.DecisionAllow,
			Code:     "MEMBERS:EXPORT",
		})
		svc := authz.NewService(f.store)

		granted, err := svc.GetTenantPermissions(ctx, f.member.UserID, f.tenantID)
		require.NoError(t, err)
		assert.Contains(t, granted, "MEMBERS:EXPORT")
	})

	t.Run("deny assignment neither adds nor subtracts", func(t *testing.T) {
		// The granted set is additive: deny rows are stored but never
		// folded in, so a deny on a role-granted code leaves it granted.
		f := newFixture()
		groupID := uuid.New()
		f.store.AddGroupMember(groupID, f.member.UserID)
		f.store.AddAssignment(authz.Assignment{
			ID:       uuid.New(),
			TenantID: f.tenantID,
			Subject:  subject.Group(groupID),
			Decision: authz.DecisionDeny,
			Code:     "REPORTS:EXPORT",
		})
		f.store.AddAssignment(authz.Assignment{
			ID:       uuid.New(),
			TenantID: f.tenantID,
			Subject:  subject.Group(groupID),
			Decision: authz.DecisionDeny,
			Code:     "TICKETS:READ",
		})
		svc := authz.NewService(f.store)

		granted, err := svc.GetTenantPermissions(ctx, f.member.UserID, f.tenantID)
		require.NoError(t, err)
		assert.NotContains(t, granted, "REPORTS:EXPORT")
		assert.Contains(t, granted, "TICKETS:READ")
	})
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := authz.NewService(f.store)

	tests := []struct {
		name   string
		caller authn.Identity
		req    authz.Requirement
		want   bool
	}{
		{
			name:   "platform scope allows wildcard grant",
			caller: f.operator,
			req:    authz.Requirement{Code: "GAMING:DRAW_CREATE", Scope: authz.ScopePlatform},
			want:   true,
		},
		{
			name:   "platform wildcard does not cross domains",
			caller: f.operator,
			req:    authz.Requirement{Code: "MEMBERS:READ", Scope: authz.ScopePlatform},
			want:   false,
		},
		{
			name:   "tenant scope allows role grant",
			caller: f.member,
			req:    authz.Requirement{Code: "TICKETS:READ", Scope: authz.ScopeTenant, TenantID: f.tenantID},
			want:   true,
		},
		{
			name:   "tenant scope requires membership",
			caller: f.member,
			req:    authz.Requirement{Code: "TICKETS:READ", Scope: authz.ScopeTenant, TenantID: uuid.New()},
			want:   false,
		},
		{
			name:   "tenant scope without tenant id fails closed",
			caller: f.member,
			req:    authz.Requirement{Code: "TICKETS:READ", Scope: authz.ScopeTenant},
			want:   false,
		},
		{
			name:   "self scope matches own id against platform surface",
			caller: f.operator,
			req:    authz.Requirement{Code: "PROFILE:UPDATE", Scope: authz.ScopeSelf, TargetUserID: f.operator.UserID},
			want:   true,
		},
		{
			name:   "self scope denies other target",
			caller: f.operator,
			req:    authz.Requirement{Code: "PROFILE:UPDATE", Scope: authz.ScopeSelf, TargetUserID: uuid.New()},
			want:   false,
		},
		{
			name:   "self scope without target fails closed",
			caller: f.operator,
			req:    authz.Requirement{Code: "PROFILE:UPDATE", Scope: authz.ScopeSelf},
			want:   false,
		},
		{
			name:   "blank code fails closed",
			caller: f.operator,
			req:    authz.Requirement{Code: "  ", Scope: authz.ScopePlatform},
			want:   false,
		},
		{
			name:   "unknown scope fails closed",
			caller: f.operator,
			req:    authz.Requirement{Code: "GAMING:DRAW_CREATE", Scope: authz.Scope("galaxy")},
			want:   false,
		},
		{
			name:   "unauthenticated caller fails closed",
			caller: authn.Identity{},
			req:    authz.Requirement{Code: "GAMING:DRAW_CREATE", Scope: authz.ScopePlatform},
			want:   false,
		},
		{
			name:   "empty granted set denies everything",
			caller: f.member,
			req:    authz.Requirement{Code: "ANYTHING:AT_ALL", Scope: authz.ScopePlatform},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authorize(ctx, tt.caller, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorizeRecomputesAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	cache := kv.NewMemoryStore()
	svc := authz.NewService(f.store, authz.WithCache(cache, time.Hour))
	inv := authz.NewInvalidator(cache)

	require.NoError(t, inv.TrackRoleUser(ctx, tenantRoleID, f.member.UserID))

	req := authz.Requirement{Code: "TICKETS:READ", Scope: authz.ScopeTenant, TenantID: f.tenantID}

	allowed, err := svc.Authorize(ctx, f.member, req)
	require.NoError(t, err)
	require.True(t, allowed)

	// Revoking the permission alone is not visible: the cached matrix
	// still answers until the role's users are invalidated.
	f.store.DetachPermission(tenantRoleID, "TICKETS:READ")

	allowed, err = svc.Authorize(ctx, f.member, req)
	require.NoError(t, err)
	assert.True(t, allowed, "stale cached matrix still serves until invalidation")

	require.NoError(t, inv.InvalidateRole(ctx, tenantRoleID))

	allowed, err = svc.Authorize(ctx, f.member, req)
	require.NoError(t, err)
	assert.False(t, allowed, "next evaluation recomputes from the store")
}

func TestAuthorizeCacheDegradesToComputation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := authz.NewService(f.store, authz.WithCache(failingStore{}, time.Minute))

	allowed, err := svc.Authorize(ctx, f.member, authz.Requirement{
		Code: "TICKETS:READ", Scope: authz.ScopeTenant, TenantID: f.tenantID,
	})
	require.NoError(t, err)
	assert.True(t, allowed, "cache outage must not change the decision")
}

// failingStore simulates an unavailable cache backend.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, kv.ErrUnavailable
}
func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return kv.ErrUnavailable
}
func (failingStore) Delete(context.Context, ...string) error        { return kv.ErrUnavailable }
func (failingStore) DeletePattern(context.Context, string) error    { return kv.ErrUnavailable }
func (failingStore) SetAdd(context.Context, string, ...string) error { return kv.ErrUnavailable }
func (failingStore) SetMembers(context.Context, string) ([]string, error) {
	return nil, kv.ErrUnavailable
}
func (failingStore) SetRemove(context.Context, string, ...string) error { return kv.ErrUnavailable }
