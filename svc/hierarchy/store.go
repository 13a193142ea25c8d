package hierarchy

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence port for nodes and closure rows. It carries only
// the primitives the Service composes into structural changes; nothing else
// in the codebase may write the closure table.
type Store interface {
	// WithinTx runs fn against a transactional view of the store and
	// commits iff fn returns nil. Nested calls reuse the ambient
	// transaction.
	WithinTx(ctx context.Context, fn func(Store) error) error

	// InsertNode persists a node row. The closure rows are the Service's
	// responsibility.
	InsertNode(ctx context.Context, node Node) error

	// UpdateParent rewrites a node's parent pointer.
	UpdateParent(ctx context.Context, nodeID uuid.UUID, parentID *uuid.UUID) error

	// DeleteNodes removes the node rows; closure rows referencing them go
	// with them.
	DeleteNodes(ctx context.Context, ids []uuid.UUID) error

	// GetNode fetches a node by id, ErrNodeNotFound if absent.
	GetNode(ctx context.Context, id uuid.UUID) (Node, error)

	// GetNodeByExternalKey fetches a node by its per-tenant business key.
	GetNodeByExternalKey(ctx context.Context, tenantID uuid.UUID, externalKey string) (Node, error)

	// SelfAndAncestors returns every closure row in which the node is the
	// descendant, self pair included, ordered by depth ascending.
	SelfAndAncestors(ctx context.Context, nodeID uuid.UUID) ([]Relation, error)

	// SubtreeRelations returns every closure row in which the node is the
	// ancestor, self pair included, ordered by depth ascending.
	SubtreeRelations(ctx context.Context, nodeID uuid.UUID) ([]Relation, error)

	// RelationExists reports whether ancestor reaches descendant.
	RelationExists(ctx context.Context, ancestorID, descendantID uuid.UUID) (bool, error)

	// InsertRelations persists a batch of closure rows.
	InsertRelations(ctx context.Context, rels []Relation) error

	// DeleteRelations removes every closure row pairing one of the
	// descendants with one of the ancestors.
	DeleteRelations(ctx context.Context, descendantIDs, ancestorIDs []uuid.UUID) error
}
