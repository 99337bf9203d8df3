package postgres

import (
	"context"
	"errors"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/jackc/pgx/v5"
)

// ItemRepo implements ItemRepository using PostgreSQL.
type ItemRepo struct{ db *DB }

// NewItemRepo constructs an item repository.
func NewItemRepo(db *DB) *ItemRepo { return &ItemRepo{db: db} }

const itemColumns = `id, name, code, sku, cost::text, status, notes, space_id, created_at, updated_at`

func scanItem(row pgx.Row) (*model.Item, error) {
	var it model.Item
	err := row.Scan(&it.ID, &it.Name, &it.Code, &it.SKU, &it.Cost, &it.Status, &it.Notes,
		&it.SpaceID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Create inserts an item row.
func (r *ItemRepo) Create(ctx context.Context, in model.ItemInput) (*model.Item, error) {
	const q = `
INSERT INTO items (name, code, sku, cost, status, notes, space_id)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
RETURNING ` + itemColumns
	return scanItem(r.db.Pool.QueryRow(ctx, q,
		in.Name, in.Code, in.SKU, in.Cost, in.Status, in.Notes, in.SpaceID))
}

// GetByID selects a live item.
func (r *ItemRepo) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE id=$1 AND ` + liveOnly
	return scanItem(r.db.Pool.QueryRow(ctx, q, id))
}

// Update overwrites the mutable fields of a live item.
func (r *ItemRepo) Update(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error) {
	const q = `
UPDATE items
SET name=$2, code=$3, sku=$4, cost=$5::numeric, status=$6, notes=$7, space_id=$8, updated_at=now()
WHERE id=$1 AND ` + liveOnly + `
RETURNING ` + itemColumns
	return scanItem(r.db.Pool.QueryRow(ctx, q,
		id, in.Name, in.Code, in.SKU, in.Cost, in.Status, in.Notes, in.SpaceID))
}

// SoftDelete stamps deleted_at on a live item.
func (r *ItemRepo) SoftDelete(ctx context.Context, id int64) error {
	const q = `UPDATE items SET deleted_at=now(), updated_at=now() WHERE id=$1 AND ` + liveOnly
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetForPropagation selects an item with the type of its (live) space.
func (r *ItemRepo) GetForPropagation(ctx context.Context, id int64) (*model.ItemForPropagation, error) {
	const q = `
SELECT i.id, i.name, i.code, i.sku, i.cost::text, i.status, i.notes, i.space_id, s.space_type
FROM items i
LEFT JOIN spaces s ON s.id = i.space_id AND s.` + liveOnly + `
WHERE i.id=$1 AND i.` + liveOnly
	var it model.ItemForPropagation
	err := r.db.Pool.QueryRow(ctx, q, id).
		Scan(&it.ID, &it.Name, &it.Code, &it.SKU, &it.Cost, &it.Status, &it.Notes, &it.SpaceID, &it.SpaceType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}
