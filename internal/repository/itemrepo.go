package repository

import (
	"context"

	"github.com/and161185/stockroom/internal/model"
)

// ItemRepository provides access to items.
type ItemRepository interface {
	// Create inserts an item.
	Create(ctx context.Context, in model.ItemInput) (*model.Item, error)
	// GetByID returns a live item or errs.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.Item, error)
	// Update overwrites the mutable fields of a live item or returns errs.ErrNotFound.
	Update(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error)
	// SoftDelete marks a live item deleted or returns errs.ErrNotFound.
	SoftDelete(ctx context.Context, id int64) error
	// GetForPropagation returns the propagation projection of a live item
	// (joined with its space type) or errs.ErrNotFound.
	GetForPropagation(ctx context.Context, id int64) (*model.ItemForPropagation, error)
}

// SpaceRepository provides access to the space forest.
type SpaceRepository interface {
	// Create inserts a space.
	Create(ctx context.Context, name string, parentID *int64, spaceType *string) (*model.Space, error)
	// GetByID returns a live space or errs.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.Space, error)
	// SoftDelete marks a live space deleted or returns errs.ErrNotFound.
	SoftDelete(ctx context.Context, id int64) error
	// FindChildrenIDs returns the ids of all live descendants of spaceID,
	// excluding spaceID itself. Cycles in parent links terminate.
	FindChildrenIDs(ctx context.Context, spaceID int64) ([]int64, error)
}

// InventoryRepository provides access to inventory records.
type InventoryRepository interface {
	// ExistingSpaceIDs returns the subset of spaceIDs holding a live record for itemID.
	ExistingSpaceIDs(ctx context.Context, itemID int64, spaceIDs []int64) ([]int64, error)
	// CreateBatch inserts records in one statement, skipping any (item, space)
	// pair that already has a live record, and returns how many were inserted.
	CreateBatch(ctx context.Context, records []model.NewInventory) (int64, error)
	// ListByItem returns the live records of an item.
	ListByItem(ctx context.Context, itemID int64) ([]model.Inventory, error)
}
