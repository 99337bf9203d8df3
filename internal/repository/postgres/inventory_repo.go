package postgres

import (
	"context"

	"github.com/and161185/stockroom/internal/model"
)

// InventoryRepo implements InventoryRepository using PostgreSQL.
type InventoryRepo struct{ db *DB }

// NewInventoryRepo constructs an inventory repository.
func NewInventoryRepo(db *DB) *InventoryRepo { return &InventoryRepo{db: db} }

// ExistingSpaceIDs returns which of spaceIDs already stock itemID.
func (r *InventoryRepo) ExistingSpaceIDs(ctx context.Context, itemID int64, spaceIDs []int64) ([]int64, error) {
	const q = `
SELECT space_id
FROM inventories
WHERE item_id=$1 AND space_id = ANY($2) AND ` + liveOnly
	rows, err := r.db.Pool.Query(ctx, q, itemID, spaceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CreateBatch inserts all records with a single statement. Pairs that
// already hold a live record are skipped by the partial unique index, so a
// concurrent propagation of the same item can never produce duplicates.
func (r *InventoryRepo) CreateBatch(ctx context.Context, records []model.NewInventory) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	const q = `
INSERT INTO inventories
    (item_id, space_id, name, code, sku, status, notes, balance, cost_per_unit, source_type, target_type)
SELECT * FROM unnest(
    $1::bigint[], $2::bigint[], $3::text[], $4::text[], $5::text[], $6::text[], $7::text[],
    $8::text[]::numeric[], $9::text[]::numeric[], $10::text[], $11::text[])
ON CONFLICT (item_id, space_id) WHERE deleted_at IS NULL DO NOTHING`

	n := len(records)
	var (
		itemIDs  = make([]int64, 0, n)
		spaceIDs = make([]int64, 0, n)
		names    = make([]string, 0, n)
		codes    = make([]string, 0, n)
		skus     = make([]string, 0, n)
		statuses = make([]string, 0, n)
		notes    = make([]string, 0, n)
		balances = make([]string, 0, n)
		costs    = make([]string, 0, n)
		sources  = make([]string, 0, n)
		targets  = make([]string, 0, n)
	)
	for _, rec := range records {
		itemIDs = append(itemIDs, rec.ItemID)
		spaceIDs = append(spaceIDs, rec.SpaceID)
		names = append(names, rec.Name)
		codes = append(codes, rec.Code)
		skus = append(skus, rec.SKU)
		statuses = append(statuses, rec.Status)
		notes = append(notes, rec.Notes)
		balances = append(balances, rec.Balance)
		costs = append(costs, rec.CostPerUnit)
		sources = append(sources, rec.SourceType)
		targets = append(targets, rec.TargetType)
	}

	tag, err := r.db.Pool.Exec(ctx, q,
		itemIDs, spaceIDs, names, codes, skus, statuses, notes, balances, costs, sources, targets)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByItem returns live inventory records of the item ordered by space.
func (r *InventoryRepo) ListByItem(ctx context.Context, itemID int64) ([]model.Inventory, error) {
	const q = `
SELECT id, item_id, space_id, name, code, sku, status, notes, balance::text, cost_per_unit::text,
       source_type, target_type, created_at, updated_at
FROM inventories
WHERE item_id=$1 AND ` + liveOnly + `
ORDER BY space_id`
	rows, err := r.db.Pool.Query(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Inventory{}
	for rows.Next() {
		var inv model.Inventory
		if err = rows.Scan(&inv.ID, &inv.ItemID, &inv.SpaceID, &inv.Name, &inv.Code, &inv.SKU,
			&inv.Status, &inv.Notes, &inv.Balance, &inv.CostPerUnit, &inv.SourceType, &inv.TargetType,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
