package postgres

import (
	"context"
	"errors"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/jackc/pgx/v5"
)

// SpaceRepo implements SpaceRepository using PostgreSQL.
type SpaceRepo struct{ db *DB }

// NewSpaceRepo constructs a space repository.
func NewSpaceRepo(db *DB) *SpaceRepo { return &SpaceRepo{db: db} }

// Create inserts a space row.
func (r *SpaceRepo) Create(ctx context.Context, name string, parentID *int64, spaceType *string) (*model.Space, error) {
	const q = `
INSERT INTO spaces (name, parent_id, space_type)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	s := model.Space{Name: name, ParentID: parentID, SpaceType: spaceType}
	if err := r.db.Pool.QueryRow(ctx, q, name, parentID, spaceType).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID selects a live space.
func (r *SpaceRepo) GetByID(ctx context.Context, id int64) (*model.Space, error) {
	const q = `
SELECT id, name, parent_id, space_type, created_at, updated_at
FROM spaces WHERE id=$1 AND ` + liveOnly
	var s model.Space
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&s.ID, &s.Name, &s.ParentID, &s.SpaceType, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// SoftDelete stamps deleted_at on a live space.
func (r *SpaceRepo) SoftDelete(ctx context.Context, id int64) error {
	const q = `UPDATE spaces SET deleted_at=now(), updated_at=now() WHERE id=$1 AND ` + liveOnly
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// FindChildrenIDs walks parent_id links downwards from spaceID. The path
// array stops the walk when a parent link loops back onto a visited node,
// and the root is never re-entered. Deleted spaces cut their subtree off.
func (r *SpaceRepo) FindChildrenIDs(ctx context.Context, spaceID int64) ([]int64, error) {
	const q = `
WITH RECURSIVE tree (id, path) AS (
    SELECT id, ARRAY[id]
    FROM spaces
    WHERE parent_id=$1 AND id<>$1 AND ` + liveOnly + `
  UNION ALL
    SELECT s.id, t.path || s.id
    FROM spaces s
    JOIN tree t ON s.parent_id = t.id
    WHERE s.id<>$1 AND NOT s.id = ANY(t.path) AND s.` + liveOnly + `
)
SELECT DISTINCT id FROM tree`
	rows, err := r.db.Pool.Query(ctx, q, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
