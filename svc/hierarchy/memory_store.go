package hierarchy

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local development. It
// mirrors the transactional contract of the SQL store: WithinTx snapshots the
// state and restores it when fn fails.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (m *MemoryStore) WithinTx(_ context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&memoryTx{state: m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) InsertNode(_ context.Context, node Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.insertNode(node)
}

func (m *MemoryStore) UpdateParent(_ context.Context, nodeID uuid.UUID, parentID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.updateParent(nodeID, parentID)
}

func (m *MemoryStore) DeleteNodes(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.deleteNodes(ids)
	return nil
}

func (m *MemoryStore) GetNode(_ context.Context, id uuid.UUID) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.getNode(id)
}

func (m *MemoryStore) GetNodeByExternalKey(_ context.Context, tenantID uuid.UUID, externalKey string) (Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.getNodeByExternalKey(tenantID, externalKey)
}

func (m *MemoryStore) SelfAndAncestors(_ context.Context, nodeID uuid.UUID) ([]Relation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.selfAndAncestors(nodeID), nil
}

func (m *MemoryStore) SubtreeRelations(_ context.Context, nodeID uuid.UUID) ([]Relation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.subtreeRelations(nodeID), nil
}

func (m *MemoryStore) RelationExists(_ context.Context, ancestorID, descendantID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.relationExists(ancestorID, descendantID), nil
}

func (m *MemoryStore) InsertRelations(_ context.Context, rels []Relation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.insertRelations(rels)
	return nil
}

func (m *MemoryStore) DeleteRelations(_ context.Context, descendantIDs, ancestorIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.deleteRelations(descendantIDs, ancestorIDs)
	return nil
}

// memoryTx is the transactional view handed to WithinTx callbacks. It works
// on the already-locked state directly, so nested calls never deadlock.
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) WithinTx(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

func (t *memoryTx) InsertNode(_ context.Context, node Node) error {
	return t.state.insertNode(node)
}

func (t *memoryTx) UpdateParent(_ context.Context, nodeID uuid.UUID, parentID *uuid.UUID) error {
	return t.state.updateParent(nodeID, parentID)
}

func (t *memoryTx) DeleteNodes(_ context.Context, ids []uuid.UUID) error {
	t.state.deleteNodes(ids)
	return nil
}

func (t *memoryTx) GetNode(_ context.Context, id uuid.UUID) (Node, error) {
	return t.state.getNode(id)
}

func (t *memoryTx) GetNodeByExternalKey(_ context.Context, tenantID uuid.UUID, externalKey string) (Node, error) {
	return t.state.getNodeByExternalKey(tenantID, externalKey)
}

func (t *memoryTx) SelfAndAncestors(_ context.Context, nodeID uuid.UUID) ([]Relation, error) {
	return t.state.selfAndAncestors(nodeID), nil
}

func (t *memoryTx) SubtreeRelations(_ context.Context, nodeID uuid.UUID) ([]Relation, error) {
	return t.state.subtreeRelations(nodeID), nil
}

func (t *memoryTx) RelationExists(_ context.Context, ancestorID, descendantID uuid.UUID) (bool, error) {
	return t.state.relationExists(ancestorID, descendantID), nil
}

func (t *memoryTx) InsertRelations(_ context.Context, rels []Relation) error {
	t.state.insertRelations(rels)
	return nil
}

func (t *memoryTx) DeleteRelations(_ context.Context, descendantIDs, ancestorIDs []uuid.UUID) error {
	t.state.deleteRelations(descendantIDs, ancestorIDs)
	return nil
}

type relationKey struct {
	ancestor   uuid.UUID
	descendant uuid.UUID
}

// memoryState holds the raw node and closure maps. Callers are responsible
// for locking; the methods never block.
type memoryState struct {
	nodes     map[uuid.UUID]Node
	relations map[relationKey]int
}

func newMemoryState() *memoryState {
	return &memoryState{
		nodes:     make(map[uuid.UUID]Node),
		relations: make(map[relationKey]int),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for id, n := range s.nodes {
		c.nodes[id] = n
	}
	for k, d := range s.relations {
		c.relations[k] = d
	}
	return c
}

func (s *memoryState) insertNode(node Node) error {
	if _, exists := s.nodes[node.ID]; exists {
		return ErrInvalidNode
	}
	s.nodes[node.ID] = node
	return nil
}

func (s *memoryState) updateParent(nodeID uuid.UUID, parentID *uuid.UUID) error {
	node, ok := s.nodes[nodeID]
	if !ok {
		return ErrNodeNotFound
	}
	node.ParentID = parentID
	s.nodes[nodeID] = node
	return nil
}

func (s *memoryState) deleteNodes(ids []uuid.UUID) {
	doomed := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
		delete(s.nodes, id)
	}
	for k := range s.relations {
		if _, gone := doomed[k.ancestor]; gone {
			delete(s.relations, k)
			continue
		}
		if _, gone := doomed[k.descendant]; gone {
			delete(s.relations, k)
		}
	}
}

func (s *memoryState) getNode(id uuid.UUID) (Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return Node{}, ErrNodeNotFound
	}
	return node, nil
}

func (s *memoryState) getNodeByExternalKey(tenantID uuid.UUID, externalKey string) (Node, error) {
	for _, n := range s.nodes {
		if n.TenantID == tenantID && n.ExternalKey == externalKey {
			return n, nil
		}
	}
	return Node{}, ErrNodeNotFound
}

func (s *memoryState) selfAndAncestors(nodeID uuid.UUID) []Relation {
	var out []Relation
	for k, d := range s.relations {
		if k.descendant == nodeID {
			out = append(out, Relation{AncestorID: k.ancestor, DescendantID: k.descendant, Depth: d})
		}
	}
	sortByDepth(out)
	return out
}

func (s *memoryState) subtreeRelations(nodeID uuid.UUID) []Relation {
	var out []Relation
	for k, d := range s.relations {
		if k.ancestor == nodeID {
			out = append(out, Relation{AncestorID: k.ancestor, DescendantID: k.descendant, Depth: d})
		}
	}
	sortByDepth(out)
	return out
}

func (s *memoryState) relationExists(ancestorID, descendantID uuid.UUID) bool {
	_, ok := s.relations[relationKey{ancestor: ancestorID, descendant: descendantID}]
	return ok
}

func (s *memoryState) insertRelations(rels []Relation) {
	for _, r := range rels {
		s.relations[relationKey{ancestor: r.AncestorID, descendant: r.DescendantID}] = r.Depth
	}
}

func (s *memoryState) deleteRelations(descendantIDs, ancestorIDs []uuid.UUID) {
	ancestors := make(map[uuid.UUID]struct{}, len(ancestorIDs))
	for _, id := range ancestorIDs {
		ancestors[id] = struct{}{}
	}
	for _, did := range descendantIDs {
		for aid := range ancestors {
			delete(s.relations, relationKey{ancestor: aid, descendant: did})
		}
	}
}

func sortByDepth(rels []Relation) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Depth != rels[j].Depth {
			return rels[i].Depth < rels[j].Depth
		}
		return rels[i].DescendantID.String() < rels[j].DescendantID.String()
	})
}
