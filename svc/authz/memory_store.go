package authz

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/drawdeck/authzkit/pkg/subject"
)

// MemoryGrantStore is an in-memory GrantStore for tests and local
// development. It is safe for concurrent use; mutators exist so fixtures can
// evolve mid-test (grant, revoke) the way administrative operations would.
type MemoryGrantStore struct {
	mu            sync.RWMutex
	tenantMembers map[uuid.UUID]map[uuid.UUID]struct{} // tenant -> users
	roles         map[int64]Role
	userRoles     map[uuid.UUID][]int64
	rolePerms     map[int64][]string
	userGroups    map[uuid.UUID][]uuid.UUID
	assignments   []Assignment
}

// NewMemoryGrantStore creates an empty in-memory grant store.
func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{
		tenantMembers: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		roles:         make(map[int64]Role),
		userRoles:     make(map[uuid.UUID][]int64),
		rolePerms:     make(map[int64][]string),
		userGroups:    make(map[uuid.UUID][]uuid.UUID),
	}
}

// AddTenantMember records that the user belongs to the tenant.
func (s *MemoryGrantStore) AddTenantMember(tenantID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.tenantMembers[tenantID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		s.tenantMembers[tenantID] = members
	}
	members[userID] = struct{}{}
}

// AddRole registers a role definition.
func (s *MemoryGrantStore) AddRole(role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role.ID] = role
}

// AssignRole gives the user a role.
func (s *MemoryGrantStore) AssignRole(userID uuid.UUID, roleID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.userRoles[userID], roleID) {
		s.userRoles[userID] = append(s.userRoles[userID], roleID)
	}
}

// AttachPermission attaches a permission code to a role.
func (s *MemoryGrantStore) AttachPermission(roleID int64, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolePerms[roleID] = append(s.rolePerms[roleID], code)
}

// DetachPermission removes a permission code from a role.
func (s *MemoryGrantStore) DetachPermission(roleID int64, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolePerms[roleID] = slices.DeleteFunc(s.rolePerms[roleID], func(c string) bool {
		return c == code
	})
}

// AddGroupMember records the user's membership in a group.
func (s *MemoryGrantStore) AddGroupMember(groupID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.userGroups[userID], groupID) {
		s.userGroups[userID] = append(s.userGroups[userID], groupID)
	}
}

// AddAssignment stores an explicit permission assignment.
func (s *MemoryGrantStore) AddAssignment(a Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, a)
}

func (s *MemoryGrantStore) IsTenantMember(_ context.Context, userID, tenantID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tenantMembers[tenantID][userID]
	return ok, nil
}

func (s *MemoryGrantStore) PlatformRoleIDs(_ context.Context, userID uuid.UUID) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for _, roleID := range s.userRoles[userID] {
		if role, ok := s.roles[roleID]; ok && role.TenantID == uuid.Nil {
			ids = append(ids, roleID)
		}
	}
	return ids, nil
}

func (s *MemoryGrantStore) TenantRoleIDs(_ context.Context, userID, tenantID uuid.UUID) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for _, roleID := range s.userRoles[userID] {
		if role, ok := s.roles[roleID]; ok && role.TenantID == tenantID {
			ids = append(ids, roleID)
		}
	}
	return ids, nil
}

func (s *MemoryGrantStore) RolePermissionCodes(_ context.Context, roleIDs []int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var codes []string
	for _, roleID := range roleIDs {
		codes = append(codes, s.rolePerms[roleID]...)
	}
	return codes, nil
}

func (s *MemoryGrantStore) GroupIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.userGroups[userID]), nil
}

func (s *MemoryGrantStore) AssignmentCodes(_ context.Context, tenantID, userID uuid.UUID, roleSubjectIDs, groupIDs []uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var codes []string
	for _, a := range s.assignments {
		if a.TenantID != tenantID || a.Decision != DecisionAllow {
			continue
		}
		switch a.Subject.Type {
		case subject.TypeUser:
			if a.Subject.ID == userID {
				codes = append(codes, a.Code)
			}
		case subject.TypeRole:
			if slices.Contains(roleSubjectIDs, a.Subject.ID) {
				codes = append(codes, a.Code)
			}
		case subject.TypeGroup:
			if slices.Contains(groupIDs, a.Subject.ID) {
				codes = append(codes, a.Code)
			}
		}
	}
	return codes, nil
}
