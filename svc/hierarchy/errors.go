package hierarchy

import "errors"

var (
	// ErrNodeNotFound is returned when the referenced node does not exist.
	ErrNodeNotFound = errors.New("hierarchy: node not found")

	// ErrInvalidNode is returned when a node is missing required fields.
	ErrInvalidNode = errors.New("hierarchy: invalid node")

	// ErrMoveIntoSubtree is returned when a move would make a node its own
	// ancestor.
	ErrMoveIntoSubtree = errors.New("hierarchy: cannot move a node under its own subtree")

	// ErrCrossTenantMove is returned when a move would reparent a node
	// under a different tenant's tree.
	ErrCrossTenantMove = errors.New("hierarchy: cannot move a node across tenants")
)
