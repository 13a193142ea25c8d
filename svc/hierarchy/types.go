package hierarchy

import "github.com/google/uuid"

// Node is one resource in a tenant's tree. ExternalKey is the stable
// business identifier, unique within the tenant; the root node has a nil
// ParentID.
type Node struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Name        string
	ExternalKey string
	ParentID    *uuid.UUID
}

// Relation is one closure row: Ancestor reaches Descendant in Depth steps.
// Depth 0 is the mandatory self pair.
type Relation struct {
	AncestorID   uuid.UUID
	DescendantID uuid.UUID
	Depth        int
}
