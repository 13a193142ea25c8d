package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// methods serve both the pooled and the transactional store.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the Postgres-backed Store. Mutations go through WithinTx, which
// opens a pgx transaction; nested WithinTx calls reuse the ambient one.
type PGStore struct {
	pool *pgxpool.Pool
	db   dbtx
}

// NewPGStore creates a Store over the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

func (s *PGStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, inTx := s.db.(pgx.Tx); inTx {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PGStore{pool: s.pool, db: tx})
	})
}

func (s *PGStore) InsertNode(ctx context.Context, node Node) error {
	var parentID uuid.NullUUID
	if node.ParentID != nil {
		parentID = uuid.NullUUID{UUID: *node.ParentID, Valid: true}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO resource_nodes (id, tenant_id, name, external_key, parent_id)
		VALUES ($1, $2, $3, $4, $5)`,
		node.ID, node.TenantID, node.Name, node.ExternalKey, parentID)
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

func (s *PGStore) UpdateParent(ctx context.Context, nodeID uuid.UUID, parentID *uuid.UUID) error {
	var parent uuid.NullUUID
	if parentID != nil {
		parent = uuid.NullUUID{UUID: *parentID, Valid: true}
	}
	tag, err := s.db.Exec(ctx, `UPDATE resource_nodes SET parent_id = $2 WHERE id = $1`, nodeID, parent)
	if err != nil {
		return fmt.Errorf("update parent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNodeNotFound
	}
	return nil
}

func (s *PGStore) DeleteNodes(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `DELETE FROM resource_nodes WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}
	return nil
}

func (s *PGStore) GetNode(ctx context.Context, id uuid.UUID) (Node, error) {
	return scanNode(s.db.QueryRow(ctx, `
		SELECT id, tenant_id, name, external_key, parent_id
		FROM resource_nodes
		WHERE id = $1`, id))
}

func (s *PGStore) GetNodeByExternalKey(ctx context.Context, tenantID uuid.UUID, externalKey string) (Node, error) {
	return scanNode(s.db.QueryRow(ctx, `
		SELECT id, tenant_id, name, external_key, parent_id
		FROM resource_nodes
		WHERE tenant_id = $1 AND external_key = $2`, tenantID, externalKey))
}

func (s *PGStore) SelfAndAncestors(ctx context.Context, nodeID uuid.UUID) ([]Relation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ancestor_id, descendant_id, depth
		FROM node_relations
		WHERE descendant_id = $1
		ORDER BY depth`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("query ancestors: %w", err)
	}
	return scanRelations(rows)
}

func (s *PGStore) SubtreeRelations(ctx context.Context, nodeID uuid.UUID) ([]Relation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ancestor_id, descendant_id, depth
		FROM node_relations
		WHERE ancestor_id = $1
		ORDER BY depth`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("query subtree: %w", err)
	}
	return scanRelations(rows)
}

func (s *PGStore) RelationExists(ctx context.Context, ancestorID, descendantID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM node_relations
			WHERE ancestor_id = $1 AND descendant_id = $2
		)`, ancestorID, descendantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query relation: %w", err)
	}
	return exists, nil
}

func (s *PGStore) InsertRelations(ctx context.Context, rels []Relation) error {
	if len(rels) == 0 {
		return nil
	}
	ancestors := make([]uuid.UUID, len(rels))
	descendants := make([]uuid.UUID, len(rels))
	depths := make([]int32, len(rels))
	for i, r := range rels {
		ancestors[i] = r.AncestorID
		descendants[i] = r.DescendantID
		depths[i] = int32(r.Depth)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO node_relations (ancestor_id, descendant_id, depth)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::int[])`,
		ancestors, descendants, depths)
	if err != nil {
		return fmt.Errorf("insert relations: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteRelations(ctx context.Context, descendantIDs, ancestorIDs []uuid.UUID) error {
	if len(descendantIDs) == 0 || len(ancestorIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, `
		DELETE FROM node_relations
		WHERE descendant_id = ANY($1) AND ancestor_id = ANY($2)`,
		descendantIDs, ancestorIDs)
	if err != nil {
		return fmt.Errorf("delete relations: %w", err)
	}
	return nil
}

func scanNode(row pgx.Row) (Node, error) {
	var node Node
	var parentID uuid.NullUUID
	err := row.Scan(&node.ID, &node.TenantID, &node.Name, &node.ExternalKey, &parentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Node{}, ErrNodeNotFound
	}
	if err != nil {
		return Node{}, fmt.Errorf("scan node: %w", err)
	}
	if parentID.Valid {
		node.ParentID = &parentID.UUID
	}
	return node, nil
}

func scanRelations(rows pgx.Rows) ([]Relation, error) {
	defer rows.Close()
	var out []Relation
	for rows.Next() {
		var r Relation
		if err := rows.Scan(&r.AncestorID, &r.DescendantID, &r.Depth); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relations: %w", err)
	}
	return out, nil
}
