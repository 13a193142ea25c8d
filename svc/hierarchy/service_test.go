package hierarchy_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdeck/authzkit/svc/hierarchy"
)

type tree struct {
	svc      *hierarchy.Service
	store    *hierarchy.MemoryStore
	tenantID uuid.UUID
}

func newTree(t *testing.T) *tree {
	t.Helper()
	store := hierarchy.NewMemoryStore()
	return &tree{
		svc:      hierarchy.NewService(store),
		store:    store,
		tenantID: uuid.New(),
	}
}

func (tr *tree) mustCreate(t *testing.T, name string, parentID *uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, tr.svc.CreateNode(context.Background(), hierarchy.Node{
		ID:          id,
		TenantID:    tr.tenantID,
		Name:        name,
		ExternalKey: name,
		ParentID:    parentID,
	}))
	return id
}

func ancestorDepths(t *testing.T, tr *tree, nodeID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	rels, err := tr.svc.Ancestors(context.Background(), nodeID)
	require.NoError(t, err)
	out := make(map[uuid.UUID]int, len(rels))
	for _, r := range rels {
		out[r.AncestorID] = r.Depth
	}
	return out
}

func TestCreateNode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("root has only its self pair", func(t *testing.T) {
		t.Parallel()
		tr := newTree(t)
		root := tr.mustCreate(t, "venue", nil)

		self, err := tr.svc.IsDescendant(ctx, root, root)
		require.NoError(t, err)
		assert.True(t, self)

		anc, err := tr.svc.Ancestors(ctx, root)
		require.NoError(t, err)
		assert.Empty(t, anc)
	})

	t.Run("child gains one row per ancestor at depth plus one", func(t *testing.T) {
		t.Parallel()
		tr := newTree(t)
		root := tr.mustCreate(t, "venue", nil)
		hall := tr.mustCreate(t, "hall", &root)
		booth := tr.mustCreate(t, "booth", &hall)

		depths := ancestorDepths(t, tr, booth)
		assert.Equal(t, map[uuid.UUID]int{hall: 1, root: 2}, depths)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		t.Parallel()
		tr := newTree(t)
		err := tr.svc.CreateNode(ctx, hierarchy.Node{ID: uuid.New(), TenantID: tr.tenantID})
		assert.ErrorIs(t, err, hierarchy.ErrInvalidNode)
	})

	t.Run("rejects parent from another tenant", func(t *testing.T) {
		t.Parallel()
		tr := newTree(t)
		root := tr.mustCreate(t, "venue", nil)

		err := tr.svc.CreateNode(ctx, hierarchy.Node{
			ID:          uuid.New(),
			TenantID:    uuid.New(),
			Name:        "intruder",
			ExternalKey: "intruder",
			ParentID:    &root,
		})
		assert.ErrorIs(t, err, hierarchy.ErrCrossTenantMove)
	})

	t.Run("rejects unknown parent and leaves no trace", func(t *testing.T) {
		t.Parallel()
		tr := newTree(t)
		missing := uuid.New()
		id := uuid.New()
		err := tr.svc.CreateNode(ctx, hierarchy.Node{
			ID:          id,
			TenantID:    tr.tenantID,
			Name:        "orphan",
			ExternalKey: "orphan",
			ParentID:    &missing,
		})
		require.ErrorIs(t, err, hierarchy.ErrNodeNotFound)

		_, err = tr.svc.GetNode(ctx, id)
		assert.ErrorIs(t, err, hierarchy.ErrNodeNotFound)
	})
}

func TestDeleteSubtree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes the node and everything below it", func(t *testing.T) {
		t.Parallel()
		tr := newTree(t)
		root := tr.mustCreate(t, "venue", nil)
		hall := tr.mustCreate(t, "hall", &root)
		booth := tr.mustCreate(t, "booth", &hall)
		other := tr.mustCreate(t, "annex", &root)

		require.NoError(t, tr.svc.DeleteSubtree(ctx, hall))

		for _, id := range []uuid.UUID{hall, booth} {
			_, err := tr.svc.GetNode(ctx, id)
			assert.ErrorIs(t, err, hierarchy.ErrNodeNotFound)
		}

		desc, err := tr.svc.Descendants(ctx, root)
		require.NoError(t, err)
		require.Len(t, desc, 1)
		assert.Equal(t, other, desc[0].DescendantID)
	})

	t.Run("unknown node", func(t *testing.T) {
		t.Parallel()
		tr := newTree(t)
		assert.ErrorIs(t, tr.svc.DeleteSubtree(ctx, uuid.New()), hierarchy.ErrNodeNotFound)
	})
}

func TestMoveSubtree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// venue
	// ├── east ── gate ── turnstile
	// └── west
	build := func(t *testing.T) (*tree, map[string]uuid.UUID) {
		tr := newTree(t)
		ids := map[string]uuid.UUID{}
		ids["venue"] = tr.mustCreate(t, "venue", nil)
		venue := ids["venue"]
		ids["east"] = tr.mustCreate(t, "east", &venue)
		east := ids["east"]
		ids["gate"] = tr.mustCreate(t, "gate", &east)
		gate := ids["gate"]
		ids["turnstile"] = tr.mustCreate(t, "turnstile", &gate)
		ids["west"] = tr.mustCreate(t, "west", &venue)
		return tr, ids
	}

	t.Run("rewrites closure for the whole subtree", func(t *testing.T) {
		t.Parallel()
		tr, ids := build(t)
		require.NoError(t, tr.svc.MoveSubtree(ctx, ids["gate"], ids["west"]))

		assert.Equal(t, map[uuid.UUID]int{
			ids["west"]:  1,
			ids["venue"]: 2,
		}, ancestorDepths(t, tr, ids["gate"]))

		assert.Equal(t, map[uuid.UUID]int{
			ids["gate"]:  1,
			ids["west"]:  2,
			ids["venue"]: 3,
		}, ancestorDepths(t, tr, ids["turnstile"]))

		under, err := tr.svc.IsDescendant(ctx, ids["east"], ids["gate"])
		require.NoError(t, err)
		assert.False(t, under)

		node, err := tr.svc.GetNode(ctx, ids["gate"])
		require.NoError(t, err)
		require.NotNil(t, node.ParentID)
		assert.Equal(t, ids["west"], *node.ParentID)
	})

	t.Run("move to root clears ancestors", func(t *testing.T) {
		t.Parallel()
		tr, ids := build(t)
		require.NoError(t, tr.svc.MoveSubtree(ctx, ids["gate"], uuid.Nil))

		anc, err := tr.svc.Ancestors(ctx, ids["gate"])
		require.NoError(t, err)
		assert.Empty(t, anc)

		assert.Equal(t, map[uuid.UUID]int{ids["gate"]: 1}, ancestorDepths(t, tr, ids["turnstile"]))

		node, err := tr.svc.GetNode(ctx, ids["gate"])
		require.NoError(t, err)
		assert.Nil(t, node.ParentID)
	})

	t.Run("refuses to move under own subtree", func(t *testing.T) {
		t.Parallel()
		tr, ids := build(t)
		err := tr.svc.MoveSubtree(ctx, ids["east"], ids["turnstile"])
		require.ErrorIs(t, err, hierarchy.ErrMoveIntoSubtree)

		// nothing changed
		assert.Equal(t, map[uuid.UUID]int{ids["venue"]: 1}, ancestorDepths(t, tr, ids["east"]))
	})

	t.Run("refuses to move onto itself", func(t *testing.T) {
		t.Parallel()
		tr, ids := build(t)
		assert.ErrorIs(t, tr.svc.MoveSubtree(ctx, ids["east"], ids["east"]), hierarchy.ErrMoveIntoSubtree)
	})

	t.Run("refuses cross tenant parent", func(t *testing.T) {
		t.Parallel()
		tr, ids := build(t)

		// a root created under a different tenant in the same store
		stranger := uuid.New()
		require.NoError(t, tr.svc.CreateNode(ctx, hierarchy.Node{
			ID:          stranger,
			TenantID:    uuid.New(),
			Name:        "stranger",
			ExternalKey: "stranger",
		}))

		err := tr.svc.MoveSubtree(ctx, ids["gate"], stranger)
		assert.ErrorIs(t, err, hierarchy.ErrCrossTenantMove)
	})

	t.Run("unknown node", func(t *testing.T) {
		t.Parallel()
		tr, ids := build(t)
		assert.ErrorIs(t, tr.svc.MoveSubtree(ctx, uuid.New(), ids["west"]), hierarchy.ErrNodeNotFound)
	})
}

func TestLookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tr := newTree(t)
	root := tr.mustCreate(t, "venue", nil)
	hall := tr.mustCreate(t, "hall", &root)

	t.Run("by external key", func(t *testing.T) {
		t.Parallel()
		node, err := tr.svc.GetNodeByExternalKey(ctx, tr.tenantID, "hall")
		require.NoError(t, err)
		assert.Equal(t, hall, node.ID)

		_, err = tr.svc.GetNodeByExternalKey(ctx, uuid.New(), "hall")
		assert.ErrorIs(t, err, hierarchy.ErrNodeNotFound)
	})

	t.Run("descendants exclude self", func(t *testing.T) {
		t.Parallel()
		desc, err := tr.svc.Descendants(ctx, root)
		require.NoError(t, err)
		require.Len(t, desc, 1)
		assert.Equal(t, hall, desc[0].DescendantID)
		assert.Equal(t, 1, desc[0].Depth)
	})

	t.Run("is descendant", func(t *testing.T) {
		t.Parallel()
		ok, err := tr.svc.IsDescendant(ctx, root, hall)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = tr.svc.IsDescendant(ctx, hall, root)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
