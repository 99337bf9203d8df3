// Package model defines domain entities used by services and repositories.
package model

import (
	"time"
)

// Audit carries the bookkeeping fields shared by every persisted entity.
// A non-nil DeletedAt marks the row as soft-deleted.
type Audit struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Deleted reports whether the entity is soft-deleted.
func (a Audit) Deleted() bool { return a.DeletedAt != nil }

// TokenPair collects an access/refresh token pair issued for one session.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenPayload is the decoded content of an access or refresh token.
type TokenPayload struct {
	UserID    int64
	SessionID string
	IssuedAt  int64 // epoch seconds
	ExpiresAt int64 // epoch seconds
}

// UserInfo is the public projection of a user.
type UserInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthUser is a user row including the password hash. It never leaves the
// authentication service.
type AuthUser struct {
	ID           int64
	Name         string
	Email        string // unique among live users
	PasswordHash string // encoded argon2id hash
	Audit
}

// NewAuthUser is the insert intent for a user.
type NewAuthUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// Space is a node of the space forest.
type Space struct {
	ID        int64
	Name      string
	ParentID  *int64
	SpaceType *string
	Audit
}

// SpaceInfo is the public projection of a space.
type SpaceInfo struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	ParentID  *int64  `json:"parentId"`
	SpaceType *string `json:"spaceType"`
}

// Info projects a space to SpaceInfo.
func (s Space) Info() SpaceInfo {
	return SpaceInfo{ID: s.ID, Name: s.Name, ParentID: s.ParentID, SpaceType: s.SpaceType}
}

// Item is a catalogue entry that can be stocked in spaces.
type Item struct {
	ID      int64
	Name    string
	Code    string
	SKU     string
	Cost    string // decimal, string-encoded
	Status  string
	Notes   string
	SpaceID *int64
	Audit
}

// ItemInput carries the mutable fields of an item.
type ItemInput struct {
	Name    string
	Code    string
	SKU     string
	Cost    string
	Status  string
	Notes   string
	SpaceID *int64
}

// ItemForPropagation is the read-only projection consumed by propagation.
type ItemForPropagation struct {
	ID        int64
	Name      string
	Code      string
	SKU       string
	Cost      string
	Status    string
	Notes     string
	SpaceID   *int64
	SpaceType *string
}

// Propagation edge tags stored on inventories created from an item.
const (
	InventorySourceItem  = "ITEM"
	InventoryTargetSpace = "SPACE"
)

// InitialBalance is the balance of a freshly propagated inventory record.
const InitialBalance = "0"

// Inventory is the presence of one item in one space. At most one live
// record exists per (ItemID, SpaceID).
type Inventory struct {
	ID          int64
	ItemID      int64
	SpaceID     int64
	Name        string
	Code        string
	SKU         string
	Status      string
	Notes       string
	Balance     string // decimal, string-encoded
	CostPerUnit string // decimal, string-encoded
	SourceType  string
	TargetType  string
	Audit
}

// NewInventory is the insert intent for an inventory record.
type NewInventory struct {
	ItemID      int64
	SpaceID     int64
	Name        string
	Code        string
	SKU         string
	Status      string
	Notes       string
	Balance     string
	CostPerUnit string
	SourceType  string
	TargetType  string
}

// PropagationResult reports how many inventory records were created.
type PropagationResult struct {
	UpdatedCount int `json:"updatedCount"`
}
