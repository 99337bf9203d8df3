package httpserver

import (
	"time"

	"github.com/and161185/stockroom/internal/model"
)

type signUpRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type spaceRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	ParentID  *int64  `json:"parentId" validate:"omitempty,gt=0"`
	SpaceType *string `json:"spaceType" validate:"omitempty,max=50"`
}

type childrenResponse struct {
	SpaceID     int64   `json:"spaceId"`
	ChildrenIDs []int64 `json:"childrenIds"`
}

type itemRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Code    string `json:"code" validate:"max=100"`
	SKU     string `json:"sku" validate:"max=100"`
	Cost    string `json:"cost" validate:"omitempty,numeric"`
	Status  string `json:"status" validate:"max=50"`
	Notes   string `json:"notes" validate:"max=2000"`
	SpaceID *int64 `json:"spaceId" validate:"omitempty,gt=0"`
}

func (r itemRequest) input() model.ItemInput {
	return model.ItemInput{
		Name: r.Name, Code: r.Code, SKU: r.SKU, Cost: r.Cost,
		Status: r.Status, Notes: r.Notes, SpaceID: r.SpaceID,
	}
}

type itemResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	SKU       string    `json:"sku"`
	Cost      string    `json:"cost"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	SpaceID   *int64    `json:"spaceId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toItem(it model.Item) itemResponse {
	return itemResponse{
		ID: it.ID, Name: it.Name, Code: it.Code, SKU: it.SKU, Cost: it.Cost,
		Status: it.Status, Notes: it.Notes, SpaceID: it.SpaceID,
		CreatedAt: it.CreatedAt, UpdatedAt: it.UpdatedAt,
	}
}

type inventoryResponse struct {
	ID          int64  `json:"id"`
	ItemID      int64  `json:"itemId"`
	SpaceID     int64  `json:"spaceId"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	SKU         string `json:"sku"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	Balance     string `json:"balance"`
	CostPerUnit string `json:"costPerUnit"`
	SourceType  string `json:"sourceType"`
	TargetType  string `json:"targetType"`
}

func toInventories(list []model.Inventory) []inventoryResponse {
	out := make([]inventoryResponse, 0, len(list))
	for _, in := range list {
		out = append(out, inventoryResponse{
			ID: in.ID, ItemID: in.ItemID, SpaceID: in.SpaceID,
			Name: in.Name, Code: in.Code, SKU: in.SKU, Status: in.Status, Notes: in.Notes,
			Balance: in.Balance, CostPerUnit: in.CostPerUnit,
			SourceType: in.SourceType, TargetType: in.TargetType,
		})
	}
	return out
}
