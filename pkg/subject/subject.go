// Package subject models the uniform subject-id space used by explicit
// permission assignments.
//
// An assignment can target a user, a role, or a group. Users and groups are
// identified by UUIDs; roles carry integer ids. To let all three share one
// comparable identifier column in storage, a role's integer id is embedded
// into a 16-byte identifier with a fixed, reversible layout: the first eight
// bytes are zero and the last eight hold the id in big-endian order. The
// encoding lives only at the storage boundary; evaluation logic works with
// the tagged Subject type and never inspects the raw bytes.
package subject

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Type discriminates what kind of entity a subject identifier refers to.
type Type string

const (
	TypeUser  Type = "user"
	TypeRole  Type = "role"
	TypeGroup Type = "group"
	TypeOther Type = "other"
)

// ErrNotRoleSubject is returned when decoding a subject id that was not
// produced by EncodeRoleID.
var ErrNotRoleSubject = errors.New("subject: identifier does not encode a role id")

// Subject is a tagged reference to the entity an assignment applies to. The
// ID is always UUID-shaped; for roles it carries the encoded integer id.
type Subject struct {
	Type Type
	ID   uuid.UUID
}

// User builds a subject referring to a user by id.
func User(id uuid.UUID) Subject {
	return Subject{Type: TypeUser, ID: id}
}

// Group builds a subject referring to a group by id.
func Group(id uuid.UUID) Subject {
	return Subject{Type: TypeGroup, ID: id}
}

// Role builds a subject referring to a role, embedding the integer role id
// into the uniform identifier space.
func Role(roleID int64) Subject {
	return Subject{Type: TypeRole, ID: EncodeRoleID(roleID)}
}

// String renders the subject as "<type>:<id>" for logs and cache keys.
func (s Subject) String() string {
	return fmt.Sprintf("%s:%s", s.Type, s.ID)
}

// EncodeRoleID embeds an integer role id into a 16-byte identifier. The
// layout is fixed: bytes 0..7 are zero, bytes 8..15 hold the id big-endian.
func EncodeRoleID(roleID int64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], uint64(roleID))
	return id
}

// DecodeRoleID extracts the integer role id from an identifier produced by
// EncodeRoleID. It fails with ErrNotRoleSubject when the leading bytes are
// not zero, which catches user or group ids passed in by mistake.
func DecodeRoleID(id uuid.UUID) (int64, error) {
	for _, b := range id[:8] {
		if b != 0 {
			return 0, ErrNotRoleSubject
		}
	}
	return int64(binary.BigEndian.Uint64(id[8:])), nil
}

// RoleID is a convenience accessor for role subjects. Non-role subjects fail
// with ErrNotRoleSubject regardless of their id bytes.
func (s Subject) RoleID() (int64, error) {
	if s.Type != TypeRole {
		return 0, ErrNotRoleSubject
	}
	return DecodeRoleID(s.ID)
}
