package hierarchy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service owns all structural changes to the resource tree. Reads are plain
// store queries; every mutation runs inside one transaction so the closure
// index can never be observed half-updated.
type Service struct {
	store Store
}

// NewService creates a hierarchy service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateNode inserts a node and its closure rows: the depth-0 self pair plus
// one row per ancestor of the parent (parent included) at that ancestor's
// depth plus one. A nil ParentID creates a root.
func (s *Service) CreateNode(ctx context.Context, node Node) error {
	if node.ID == uuid.Nil || node.TenantID == uuid.Nil || strings.TrimSpace(node.Name) == "" {
		return ErrInvalidNode
	}

	return s.store.WithinTx(ctx, func(tx Store) error {
		if node.ParentID != nil {
			parent, err := tx.GetNode(ctx, *node.ParentID)
			if err != nil {
				return err
			}
			if parent.TenantID != node.TenantID {
				return ErrCrossTenantMove
			}
		}

		if err := tx.InsertNode(ctx, node); err != nil {
			return err
		}

		rels := []Relation{{AncestorID: node.ID, DescendantID: node.ID, Depth: 0}}
		if node.ParentID != nil {
			ancestors, err := tx.SelfAndAncestors(ctx, *node.ParentID)
			if err != nil {
				return err
			}
			for _, a := range ancestors {
				rels = append(rels, Relation{
					AncestorID:   a.AncestorID,
					DescendantID: node.ID,
					Depth:        a.Depth + 1,
				})
			}
		}
		return tx.InsertRelations(ctx, rels)
	})
}

// DeleteSubtree removes the node and every node below it, together with all
// closure rows in which any of them appears on either side.
func (s *Service) DeleteSubtree(ctx context.Context, nodeID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx Store) error {
		subtree, err := tx.SubtreeRelations(ctx, nodeID)
		if err != nil {
			return err
		}
		if len(subtree) == 0 {
			return ErrNodeNotFound
		}

		ids := make([]uuid.UUID, len(subtree))
		for i, r := range subtree {
			ids[i] = r.DescendantID
		}
		return tx.DeleteNodes(ctx, ids)
	})
}

// MoveSubtree reparents the node (and implicitly its whole subtree) under
// newParentID, or to the root when newParentID is uuid.Nil. The closure
// rewrite drops every row pairing a subtree node with an old ancestor and
// inserts rows for each new ancestor at the recombined depth, all in one
// transaction; any failure rolls the whole move back.
func (s *Service) MoveSubtree(ctx context.Context, nodeID, newParentID uuid.UUID) error {
	if nodeID == newParentID {
		return ErrMoveIntoSubtree
	}

	return s.store.WithinTx(ctx, func(tx Store) error {
		node, err := tx.GetNode(ctx, nodeID)
		if err != nil {
			return err
		}

		subtree, err := tx.SubtreeRelations(ctx, nodeID)
		if err != nil {
			return err
		}

		subtreeIDs := make([]uuid.UUID, len(subtree))
		for i, r := range subtree {
			if r.DescendantID == newParentID {
				return ErrMoveIntoSubtree
			}
			subtreeIDs[i] = r.DescendantID
		}

		var newAncestors []Relation
		var parentID *uuid.UUID
		if newParentID != uuid.Nil {
			parent, err := tx.GetNode(ctx, newParentID)
			if err != nil {
				return err
			}
			if parent.TenantID != node.TenantID {
				return ErrCrossTenantMove
			}
			newAncestors, err = tx.SelfAndAncestors(ctx, newParentID)
			if err != nil {
				return err
			}
			parentID = &newParentID
		}

		old, err := tx.SelfAndAncestors(ctx, nodeID)
		if err != nil {
			return err
		}
		oldAncestorIDs := make([]uuid.UUID, 0, len(old))
		for _, r := range old {
			if r.Depth > 0 {
				oldAncestorIDs = append(oldAncestorIDs, r.AncestorID)
			}
		}

		if len(oldAncestorIDs) > 0 {
			if err := tx.DeleteRelations(ctx, subtreeIDs, oldAncestorIDs); err != nil {
				return fmt.Errorf("detach subtree: %w", err)
			}
		}

		if len(newAncestors) > 0 {
			rels := make([]Relation, 0, len(newAncestors)*len(subtree))
			for _, a := range newAncestors {
				for _, d := range subtree {
					rels = append(rels, Relation{
						AncestorID:   a.AncestorID,
						DescendantID: d.DescendantID,
						Depth:        a.Depth + 1 + d.Depth,
					})
				}
			}
			if err := tx.InsertRelations(ctx, rels); err != nil {
				return fmt.Errorf("attach subtree: %w", err)
			}
		}

		return tx.UpdateParent(ctx, nodeID, parentID)
	})
}

// GetNode fetches a node by id.
func (s *Service) GetNode(ctx context.Context, id uuid.UUID) (Node, error) {
	return s.store.GetNode(ctx, id)
}

// GetNodeByExternalKey fetches a node by its per-tenant business key.
func (s *Service) GetNodeByExternalKey(ctx context.Context, tenantID uuid.UUID, externalKey string) (Node, error) {
	return s.store.GetNodeByExternalKey(ctx, tenantID, externalKey)
}

// Ancestors returns the node's proper ancestors ordered nearest-first.
func (s *Service) Ancestors(ctx context.Context, nodeID uuid.UUID) ([]Relation, error) {
	rels, err := s.store.SelfAndAncestors(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return withoutSelf(rels), nil
}

// Descendants returns the node's proper descendants ordered nearest-first.
func (s *Service) Descendants(ctx context.Context, nodeID uuid.UUID) ([]Relation, error) {
	rels, err := s.store.SubtreeRelations(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return withoutSelf(rels), nil
}

// IsDescendant reports whether candidate sits inside the node's subtree
// (self included: every node is a descendant of itself at depth 0).
func (s *Service) IsDescendant(ctx context.Context, nodeID, candidate uuid.UUID) (bool, error) {
	return s.store.RelationExists(ctx, nodeID, candidate)
}

func withoutSelf(rels []Relation) []Relation {
	out := rels[:0:0]
	for _, r := range rels {
		if r.Depth > 0 {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
