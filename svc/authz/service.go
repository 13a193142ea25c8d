package authz

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/drawdeck/authzkit/pkg/authn"
	"github.com/drawdeck/authzkit/pkg/kv"
	"github.com/drawdeck/authzkit/pkg/permission"
	"github.com/drawdeck/authzkit/pkg/subject"
)

// DefaultMatrixTTL bounds how long a cached permission matrix can outlive a
// missed invalidation. The TTL is a correctness backstop, not a tuning knob:
// without it, a lost invalidation would serve stale grants forever.
const DefaultMatrixTTL = 15 * time.Minute

// Service is the database-backed evaluation path: it aggregates the caller's
// granted permission set from the grant store and matches it against the
// requirement. Evaluation is stateless and safe for concurrent use.
type Service struct {
	store  GrantStore
	cache  kv.Store
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables read-through caching of computed matrices in the given
// store. A non-positive ttl falls back to DefaultMatrixTTL.
func WithCache(cache kv.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for cache degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an evaluator over the given grant store. Without
// WithCache every call recomputes the granted set from the store.
func NewService(store GrantStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ttl:    DefaultMatrixTTL,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPlatformPermissions computes the caller's platform-wide granted set:
// the normalized codes of every permission attached to the caller's
// platform roles. A caller without platform roles gets an empty set, not an
// error.
func (s *Service) GetPlatformPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.cached(ctx, UserMatrixKey(userID), func(ctx context.Context) ([]string, error) {
		roleIDs, err := s.store.PlatformRoleIDs(ctx, userID)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		if len(roleIDs) == 0 {
			return nil, nil
		}

		codes, err := s.store.RolePermissionCodes(ctx, roleIDs)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		return permission.NormalizeAll(codes), nil
	})
}

// GetTenantPermissions computes the caller's granted set inside one tenant,
// folding together tenant-role permissions, direct assignments, role-subject
// assignments and group-subject assignments. A caller who does not belong to
// the tenant gets an empty set (fail closed, not an error).
func (s *Service) GetTenantPermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	return s.cached(ctx, TenantMatrixKey(userID, tenantID), func(ctx context.Context) ([]string, error) {
		member, err := s.store.IsTenantMember(ctx, userID, tenantID)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		if !member {
			return nil, nil
		}

		roleIDs, err := s.store.TenantRoleIDs(ctx, userID, tenantID)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}

		roleSubjectIDs := make([]uuid.UUID, len(roleIDs))
		for i, roleID := range roleIDs {
			roleSubjectIDs[i] = subject.EncodeRoleID(roleID)
		}

		groupIDs, err := s.store.GroupIDs(ctx, userID)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}

		assigned, err := s.store.AssignmentCodes(ctx, tenantID, userID, roleSubjectIDs, groupIDs)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}

		codes := assigned
		if len(roleIDs) > 0 {
			roleCodes, err := s.store.RolePermissionCodes(ctx, roleIDs)
			if err != nil {
				return nil, errors.Join(ErrStoreFailure, err)
			}
			codes = append(codes, roleCodes...)
		}

		return permission.NormalizeAll(codes), nil
	})
}

// Authorize decides whether the caller satisfies the requirement. The bool
// is the decision; the error reports infrastructure failures only, and any
// error always comes with a deny.
func (s *Service) Authorize(ctx context.Context, caller authn.Identity, req Requirement) (bool, error) {
	if !caller.Authenticated() {
		return false, nil
	}
	if permission.Normalize(req.Code) == "" {
		return false, nil
	}

	switch req.Scope {
	case ScopePlatform:
		granted, err := s.GetPlatformPermissions(ctx, caller.UserID)
		if err != nil {
			return false, err
		}
		return permission.HasPermission(granted, req.Code), nil

	case ScopeTenant:
		if req.TenantID == uuid.Nil {
			return false, nil
		}
		granted, err := s.GetTenantPermissions(ctx, caller.UserID, req.TenantID)
		if err != nil {
			return false, err
		}
		return permission.HasPermission(granted, req.Code), nil

	case ScopeSelf:
		if req.TargetUserID == uuid.Nil || caller.UserID != req.TargetUserID {
			return false, nil
		}
		// Self-scoped permissions are drawn from the platform grant
		// surface.
		granted, err := s.GetPlatformPermissions(ctx, caller.UserID)
		if err != nil {
			return false, err
		}
		return permission.HasPermission(granted, req.Code), nil

	default:
		return false, nil
	}
}

// cached wraps a matrix computation with read-through caching. Cache
// failures degrade to a direct computation; they are logged and never turn
// into an authorization outcome.
func (s *Service) cached(ctx context.Context, key string, compute func(context.Context) ([]string, error)) ([]string, error) {
	if s.cache == nil {
		return compute(ctx)
	}

	if value, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "permission matrix cache read failed", "key", key, "error", err)
	} else if ok {
		return permission.ParseClaim(value), nil
	}

	codes, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, permission.JoinClaim(codes), s.ttl); err != nil {
		s.logger.WarnContext(ctx, "permission matrix cache write failed", "key", key, "error", err)
	}
	return codes, nil
}
