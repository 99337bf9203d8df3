package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

// PropagationService replicates an item's inventory presence into the
// descendants of its space.
type PropagationService interface {
	// PropagateToChildSpaces creates the missing inventory records of item
	// in every descendant of its space and reports how many were created.
	PropagateToChildSpaces(ctx context.Context, item model.ItemForPropagation) (model.PropagationResult, error)
	// PropagateItem loads a live item and propagates it.
	PropagateItem(ctx context.Context, itemID int64) (model.PropagationResult, error)
}

type PropagationServiceImpl struct {
	items       repository.ItemRepository
	inventories repository.InventoryRepository
	resolver    ChildResolver
	rec         Recorder
	log         *zap.Logger
}

// NewPropagationService constructs PropagationService. rec may be nil.
func NewPropagationService(items repository.ItemRepository, inventories repository.InventoryRepository, resolver ChildResolver, rec Recorder, log *zap.Logger) *PropagationServiceImpl {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &PropagationServiceImpl{items: items, inventories: inventories, resolver: resolver, rec: rec, log: log}
}

// PropagateToChildSpaces skips the write when nothing is missing. The
// existence check and the insert are separate round-trips; concurrent
// callers are kept from duplicating records by the batch insert ignoring
// pairs that already have a live record, so the count reports only rows
// this call created.
func (s *PropagationServiceImpl) PropagateToChildSpaces(ctx context.Context, item model.ItemForPropagation) (model.PropagationResult, error) {
	if item.SpaceID == nil {
		return model.PropagationResult{}, nil
	}

	children, err := s.resolver.FindChildrenIDs(ctx, *item.SpaceID)
	if err != nil {
		return model.PropagationResult{}, storeErr(s.log, "resolve child spaces", err)
	}
	if len(children) == 0 {
		return model.PropagationResult{}, nil
	}

	existing, err := s.inventories.ExistingSpaceIDs(ctx, item.ID, children)
	if err != nil {
		return model.PropagationResult{}, storeErr(s.log, "load existing inventories", err)
	}
	have := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}

	batch := make([]model.NewInventory, 0, len(children))
	for _, spaceID := range children {
		if _, ok := have[spaceID]; ok {
			continue
		}
		batch = append(batch, newInventoryFor(item, spaceID))
	}
	if len(batch) == 0 {
		return model.PropagationResult{}, nil
	}

	n, err := s.inventories.CreateBatch(ctx, batch)
	if err != nil {
		return model.PropagationResult{}, storeErr(s.log, "create inventories", err)
	}
	s.rec.Propagated(int(n))
	s.log.Debug("inventory propagated",
		zap.Int64("item_id", item.ID),
		zap.Int64("space_id", *item.SpaceID),
		zap.Int("missing", len(batch)),
		zap.Int64("created", n),
	)
	return model.PropagationResult{UpdatedCount: int(n)}, nil
}

// PropagateItem returns NOT_FOUND for a missing or deleted item.
func (s *PropagationServiceImpl) PropagateItem(ctx context.Context, itemID int64) (model.PropagationResult, error) {
	item, err := s.items.GetForPropagation(ctx, itemID)
	if err != nil {
		return model.PropagationResult{}, lookupErr(s.log, "load item", "item", itemID, err)
	}
	return s.PropagateToChildSpaces(ctx, *item)
}

func newInventoryFor(item model.ItemForPropagation, spaceID int64) model.NewInventory {
	return model.NewInventory{
		ItemID:      item.ID,
		SpaceID:     spaceID,
		Name:        item.Name,
		Code:        item.Code,
		SKU:         item.SKU,
		Status:      item.Status,
		Notes:       item.Notes,
		Balance:     model.InitialBalance,
		CostPerUnit: item.Cost,
		SourceType:  model.InventorySourceItem,
		TargetType:  model.InventoryTargetSpace,
	}
}
