package authz

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/drawdeck/authzkit/pkg/kv"
	"github.com/drawdeck/authzkit/pkg/subject"
)

// invalidateConcurrency caps the fan-out of concurrent per-user deletions so
// a change to a widely held role cannot flood the cache store.
const invalidateConcurrency = 16

// Invalidator keeps the cached permission matrices coherent with the grant
// stores. Grant-mutating modules call it after a successful commit of the
// underlying change; invalidating before commit races with concurrent reads
// that would recompute and re-cache the pre-change grant set.
//
// All operations are best-effort: a failure leaves some users with a stale
// matrix until its TTL expires. Errors are logged and returned, but callers
// must not let them block the mutation that triggered the invalidation.
type Invalidator struct {
	cache  kv.Store
	logger *slog.Logger
}

// InvalidatorOption configures an Invalidator.
type InvalidatorOption func(*Invalidator)

// WithInvalidatorLogger sets the logger for best-effort failure reporting.
func WithInvalidatorLogger(logger *slog.Logger) InvalidatorOption {
	return func(inv *Invalidator) {
		inv.logger = logger
	}
}

// NewInvalidator creates an invalidation fabric over the given cache store.
func NewInvalidator(cache kv.Store, opts ...InvalidatorOption) *Invalidator {
	inv := &Invalidator{
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// InvalidateUser deletes every cached matrix belonging to the user: the
// platform matrix and all per-tenant sub-keys, via one prefix pattern.
func (inv *Invalidator) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if err := inv.cache.DeletePattern(ctx, UserMatrixPattern(userID)); err != nil {
		inv.logger.WarnContext(ctx, "user matrix invalidation failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}

// InvalidateUsers invalidates the matrices of every listed user. The ids are
// deduplicated and the deletions run concurrently; the call returns after
// all of them finish. A partial failure leaves a strict subset of stale
// entries and reports the first error.
func (inv *Invalidator) InvalidateUsers(ctx context.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(invalidateConcurrency)

	for _, userID := range userIDs {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		userID := userID
		g.Go(func() error {
			return inv.InvalidateUser(ctx, userID)
		})
	}

	return g.Wait()
}

// InvalidateRole invalidates every user whose grant set depends on the role,
// found through the role→users index set. A missing or empty index is a
// no-op.
func (inv *Invalidator) InvalidateRole(ctx context.Context, roleID int64) error {
	members, err := inv.cache.SetMembers(ctx, RoleUsersKey(roleID))
	if err != nil {
		inv.logger.WarnContext(ctx, "role index read failed", "role_id", roleID, "error", err)
		return err
	}
	return inv.InvalidateUsers(ctx, parseUserIDs(members))
}

// InvalidateGroup invalidates every user whose grant set depends on the
// group, found through the group→users index set.
func (inv *Invalidator) InvalidateGroup(ctx context.Context, groupID uuid.UUID) error {
	members, err := inv.cache.SetMembers(ctx, GroupUsersKey(groupID))
	if err != nil {
		inv.logger.WarnContext(ctx, "group index read failed", "group_id", groupID, "error", err)
		return err
	}
	return inv.InvalidateUsers(ctx, parseUserIDs(members))
}

// InvalidateSubject dispatches on the subject of a changed assignment. A
// subject type the fabric cannot map to an exact user set falls back to a
// global matrix sweep.
func (inv *Invalidator) InvalidateSubject(ctx context.Context, sub subject.Subject) error {
	switch sub.Type {
	case subject.TypeUser:
		return inv.InvalidateUser(ctx, sub.ID)
	case subject.TypeRole:
		roleID, err := subject.DecodeRoleID(sub.ID)
		if err != nil {
			inv.logger.WarnContext(ctx, "undecodable role subject, sweeping all matrices", "subject_id", sub.ID, "error", err)
			return inv.InvalidateAllMatrices(ctx)
		}
		return inv.InvalidateRole(ctx, roleID)
	case subject.TypeGroup:
		return inv.InvalidateGroup(ctx, sub.ID)
	default:
		return inv.InvalidateAllMatrices(ctx)
	}
}

// InvalidateAllMatrices deletes every cached user matrix. Used for
// model-wide changes (bulk permission edits) where computing the exact
// affected-user set is not worth it.
func (inv *Invalidator) InvalidateAllMatrices(ctx context.Context) error {
	if err := inv.cache.DeletePattern(ctx, AllMatricesPattern()); err != nil {
		inv.logger.WarnContext(ctx, "global matrix sweep failed", "error", err)
		return err
	}
	return nil
}

// TrackRoleUser records that the user's grant set now depends on the role.
// Role-assignment operations must call this whenever a user gains the role,
// or a later role change cannot find the user to invalidate.
func (inv *Invalidator) TrackRoleUser(ctx context.Context, roleID int64, userID uuid.UUID) error {
	if err := inv.cache.SetAdd(ctx, RoleUsersKey(roleID), userID.String()); err != nil {
		inv.logger.WarnContext(ctx, "role index update failed", "role_id", roleID, "user_id", userID, "error", err)
		return err
	}
	return nil
}

// TrackGroupUser records that the user's grant set now depends on the group.
func (inv *Invalidator) TrackGroupUser(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := inv.cache.SetAdd(ctx, GroupUsersKey(groupID), userID.String()); err != nil {
		inv.logger.WarnContext(ctx, "group index update failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	return nil
}

// UntrackGroupUser removes the user from the group index when membership
// ends.
func (inv *Invalidator) UntrackGroupUser(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := inv.cache.SetRemove(ctx, GroupUsersKey(groupID), userID.String()); err != nil {
		inv.logger.WarnContext(ctx, "group index removal failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}
	return nil
}

// RemoveRoleIndex drops the whole role→users index, for when the role itself
// is deleted.
func (inv *Invalidator) RemoveRoleIndex(ctx context.Context, roleID int64) error {
	if err := inv.cache.Delete(ctx, RoleUsersKey(roleID)); err != nil {
		inv.logger.WarnContext(ctx, "role index delete failed", "role_id", roleID, "error", err)
		return err
	}
	return nil
}

// RemoveGroupIndex drops the whole group→users index, for when the group
// itself is deleted.
func (inv *Invalidator) RemoveGroupIndex(ctx context.Context, groupID uuid.UUID) error {
	if err := inv.cache.Delete(ctx, GroupUsersKey(groupID)); err != nil {
		inv.logger.WarnContext(ctx, "group index delete failed", "group_id", groupID, "error", err)
		return err
	}
	return nil
}

// parseUserIDs converts index set members back to user ids, skipping
// malformed entries rather than aborting the whole fan-out.
func parseUserIDs(members []string) []uuid.UUID {
	if len(members) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if id, err := uuid.Parse(m); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
