package subject_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdeck/authzkit/pkg/subject"
)

func TestRoleIDRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		roleID int64
	}{
		{name: "zero", roleID: 0},
		{name: "small", roleID: 42},
		{name: "large", roleID: 1<<40 + 7},
		{name: "max int64", roleID: 1<<63 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := subject.EncodeRoleID(tt.roleID)
			decoded, err := subject.DecodeRoleID(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.roleID, decoded)
		})
	}
}

func TestEncodeRoleIDIsDeterministic(t *testing.T) {
	assert.Equal(t, subject.EncodeRoleID(7), subject.EncodeRoleID(7))
	assert.NotEqual(t, subject.EncodeRoleID(7), subject.EncodeRoleID(8))
}

func TestDecodeRoleIDRejectsForeignIDs(t *testing.T) {
	// Random v4 UUIDs have version/variant bits set in the first half, so
	// they can never be mistaken for an encoded role id.
	_, err := subject.DecodeRoleID(uuid.New())
	assert.ErrorIs(t, err, subject.ErrNotRoleSubject)
}

func TestSubjectConstructors(t *testing.T) {
	userID := uuid.New()
	groupID := uuid.New()

	u := subject.User(userID)
	assert.Equal(t, subject.TypeUser, u.Type)
	assert.Equal(t, userID, u.ID)

	g := subject.Group(groupID)
	assert.Equal(t, subject.TypeGroup, g.Type)
	assert.Equal(t, groupID, g.ID)

	r := subject.Role(99)
	assert.Equal(t, subject.TypeRole, r.Type)
	roleID, err := r.RoleID()
	require.NoError(t, err)
	assert.Equal(t, int64(99), roleID)
}

func TestRoleIDOnNonRoleSubject(t *testing.T) {
	// Even an all-zero user id must not decode as a role.
	s := subject.User(uuid.Nil)
	_, err := s.RoleID()
	assert.ErrorIs(t, err, subject.ErrNotRoleSubject)
}
