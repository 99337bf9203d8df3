package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

// ItemService defines operations over catalogue items. Writes that leave an
// item in a space propagate it to the space's descendants.
type ItemService interface {
	Create(ctx context.Context, in model.ItemInput) (model.Item, error)
	Get(ctx context.Context, id int64) (model.Item, error)
	Update(ctx context.Context, id int64, in model.ItemInput) (model.Item, error)
	Delete(ctx context.Context, id int64) error
}

type ItemServiceImpl struct {
	items       repository.ItemRepository
	spaces      repository.SpaceRepository
	propagation PropagationService
	log         *zap.Logger
}

// NewItemService constructs ItemService.
func NewItemService(items repository.ItemRepository, spaces repository.SpaceRepository, propagation PropagationService, log *zap.Logger) *ItemServiceImpl {
	return &ItemServiceImpl{items: items, spaces: spaces, propagation: propagation, log: log}
}

func (s *ItemServiceImpl) validate(ctx context.Context, in *model.ItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errs.Validation("", map[string][]string{"name": {"is required"}})
	}
	if in.Cost == "" {
		in.Cost = "0"
	}
	if in.SpaceID != nil {
		if _, err := s.spaces.GetByID(ctx, *in.SpaceID); err != nil {
			return lookupErr(s.log, "load space", "space", *in.SpaceID, err)
		}
	}
	return nil
}

// Create inserts an item and propagates it if it has a space.
func (s *ItemServiceImpl) Create(ctx context.Context, in model.ItemInput) (model.Item, error) {
	if err := s.validate(ctx, &in); err != nil {
		return model.Item{}, err
	}
	it, err := s.items.Create(ctx, in)
	if err != nil {
		return model.Item{}, storeErr(s.log, "create item", err)
	}
	if err := s.propagate(ctx, it); err != nil {
		return model.Item{}, err
	}
	return *it, nil
}

// Get returns a live item.
func (s *ItemServiceImpl) Get(ctx context.Context, id int64) (model.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return model.Item{}, lookupErr(s.log, "load item", "item", id, err)
	}
	return *it, nil
}

// Update overwrites an item and propagates it if it has a space.
func (s *ItemServiceImpl) Update(ctx context.Context, id int64, in model.ItemInput) (model.Item, error) {
	if err := s.validate(ctx, &in); err != nil {
		return model.Item{}, err
	}
	it, err := s.items.Update(ctx, id, in)
	if err != nil {
		return model.Item{}, lookupErr(s.log, "update item", "item", id, err)
	}
	if err := s.propagate(ctx, it); err != nil {
		return model.Item{}, err
	}
	return *it, nil
}

// Delete soft-deletes an item. Its inventory records are kept.
func (s *ItemServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.items.SoftDelete(ctx, id); err != nil {
		return lookupErr(s.log, "delete item", "item", id, err)
	}
	return nil
}

// propagate runs after the item write; the item row stays written if it fails.
func (s *ItemServiceImpl) propagate(ctx context.Context, it *model.Item) error {
	if it.SpaceID == nil {
		return nil
	}
	if _, err := s.propagation.PropagateItem(ctx, it.ID); err != nil {
		s.log.Error("propagate item after write", zap.Int64("item_id", it.ID), zap.Error(err))
		return err
	}
	return nil
}

// InventoryService exposes inventory records.
type InventoryService interface {
	ListByItem(ctx context.Context, itemID int64) ([]model.Inventory, error)
}

type InventoryServiceImpl struct {
	items       repository.ItemRepository
	inventories repository.InventoryRepository
	log         *zap.Logger
}

// NewInventoryService constructs InventoryService.
func NewInventoryService(items repository.ItemRepository, inventories repository.InventoryRepository, log *zap.Logger) *InventoryServiceImpl {
	return &InventoryServiceImpl{items: items, inventories: inventories, log: log}
}

// ListByItem returns the live records of a live item.
func (s *InventoryServiceImpl) ListByItem(ctx context.Context, itemID int64) ([]model.Inventory, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, lookupErr(s.log, "load item", "item", itemID, err)
	}
	list, err := s.inventories.ListByItem(ctx, itemID)
	if err != nil {
		return nil, storeErr(s.log, "list inventories", err)
	}
	return list, nil
}
