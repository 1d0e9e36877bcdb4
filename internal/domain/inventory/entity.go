// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementReason represents the reason for an inventory movement
type MovementReason string

const (
	ReasonSale       MovementReason = "sale"
	ReasonRestock    MovementReason = "restock"
	ReasonSync       MovementReason = "sync"
	ReasonAdjustment MovementReason = "adjustment"
)

// InventoryRecord tracks stock for a single product variant
type InventoryRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VariantID uint      `gorm:"uniqueIndex;not null" json:"variant_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InventoryMovement is an audit record for stock changes
type InventoryMovement struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	VariantID uint           `gorm:"not null;index" json:"variant_id"`
	Delta     int            `gorm:"not null" json:"delta"`
	Reason    MovementReason `gorm:"not null;size:30" json:"reason"`
	Reference string         `gorm:"size:100" json:"reference"` // order id, sync run, etc.
	CreatedAt time.Time      `json:"created_at"`
}

// TableName overrides
func (InventoryRecord) TableName() string   { return "inventory_records" }
func (InventoryMovement) TableName() string { return "inventory_movements" }

// InStock reports whether any stock remains
func (r *InventoryRecord) InStock() bool {
	return r.Quantity > 0
}
