package authz

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGGrantStore is the production GrantStore backed by the platform's
// Postgres schema. All methods are plain read-committed reads; the
// administrative module owns every write to these tables.
type PGGrantStore struct {
	pool *pgxpool.Pool
}

// NewPGGrantStore wraps an already-connected pool.
func NewPGGrantStore(pool *pgxpool.Pool) *PGGrantStore {
	return &PGGrantStore{pool: pool}
}

func (s *PGGrantStore) IsTenantMember(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND tenant_id = $2)`

	var member bool
	if err := s.pool.QueryRow(ctx, query, userID, tenantID).Scan(&member); err != nil {
		return false, err
	}
	return member, nil
}

func (s *PGGrantStore) PlatformRoleIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	const query = `
		SELECT r.id
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND r.tenant_id IS NULL`

	return s.roleIDs(ctx, query, userID)
}

func (s *PGGrantStore) TenantRoleIDs(ctx context.Context, userID, tenantID uuid.UUID) ([]int64, error) {
	const query = `
		SELECT r.id
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND r.tenant_id = $2`

	return s.roleIDs(ctx, query, userID, tenantID)
}

func (s *PGGrantStore) roleIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PGGrantStore) RolePermissionCodes(ctx context.Context, roleIDs []int64) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	const query = `SELECT name FROM permissions WHERE role_id = ANY($1)`

	return s.codes(ctx, query, roleIDs)
}

func (s *PGGrantStore) GroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const query = `SELECT group_id FROM user_groups WHERE user_id = $1`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PGGrantStore) AssignmentCodes(ctx context.Context, tenantID, userID uuid.UUID, roleSubjectIDs, groupIDs []uuid.UUID) ([]string, error) {
	// Deny rows are filtered out here on purpose; see GrantStore docs.
	const query = `
		SELECT permission_code
		FROM permission_assignments
		WHERE tenant_id = $1
		  AND decision = 'allow'
		  AND (
		        (subject_type = 'user'  AND subject_id = $2)
		     OR (subject_type = 'role'  AND subject_id = ANY($3))
		     OR (subject_type = 'group' AND subject_id = ANY($4))
		  )`

	// Empty arrays are valid ANY() operands, so a caller without roles or
	// groups still matches their direct assignments.
	if roleSubjectIDs == nil {
		roleSubjectIDs = []uuid.UUID{}
	}
	if groupIDs == nil {
		groupIDs = []uuid.UUID{}
	}

	return s.codes(ctx, query, tenantID, userID, roleSubjectIDs, groupIDs)
}

func (s *PGGrantStore) codes(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
