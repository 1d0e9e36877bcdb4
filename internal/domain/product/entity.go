// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents the product entity. Products created by the Printful
// catalog sync carry the provider's product id; products referenced by an
// order are only ever soft-deleted.
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Slug              string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Name              string         `gorm:"not null;size:255" json:"name"`
	Description       string         `gorm:"type:text" json:"description"`
	CategoryID        uint           `gorm:"not null;index" json:"category_id"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	PrintfulProductID *int64         `gorm:"uniqueIndex" json:"printful_product_id,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category         `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
	Reviews  []ProductReview  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reviews,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// ProductImage represents product images. Images written by the catalog sync
// are flagged so stale provider photos can be reconciled on the next run.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	AltText   string    `gorm:"size:255" json:"alt_text"`
	IsHero    bool      `gorm:"default:false" json:"is_hero"`
	ColorKey  string    `gorm:"size:100;index" json:"color_key"`
	FromSync  bool      `gorm:"default:false;index" json:"from_sync"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VariantAttributes models the known attribute kinds of a variant plus an
// extension map for anything the known fields do not cover.
type VariantAttributes struct {
	Size      string            `json:"size,omitempty"`
	Color     string            `json:"color,omitempty"`
	ColorCode string            `json:"color_code,omitempty"`
	RRPCents  int64             `json:"rrp_cents,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// ProductVariant represents product variants (size, color, etc.).
// A variant must carry at least one Printful id to be eligible for
// automatic fulfillment.
type ProductVariant struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	ProductID        uint              `gorm:"not null;index" json:"product_id"`
	SKU              string            `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name             string            `gorm:"not null;size:255" json:"name"`
	PriceCents       int64             `gorm:"not null" json:"price_cents"`
	Attributes       VariantAttributes `gorm:"type:jsonb;serializer:json" json:"attributes"`
	SyncVariantID    *int64            `gorm:"uniqueIndex" json:"sync_variant_id,omitempty"`
	CatalogVariantID *int64            `gorm:"index" json:"catalog_variant_id,omitempty"`
	IsActive         bool              `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	DeletedAt        gorm.DeletedAt    `gorm:"index" json:"-"`
}

// ProductReview represents customer reviews
type ProductReview struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProductID  uint           `gorm:"not null;index" json:"product_id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	OrderID    *uuid.UUID     `gorm:"type:uuid;index" json:"order_id,omitempty"` // Link to verified purchase
	Rating     int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title      string         `gorm:"size:255" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	IsVerified bool           `gorm:"default:false" json:"is_verified"`
	IsApproved bool           `gorm:"default:false" json:"is_approved"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string        { return "products" }
func (Category) TableName() string       { return "categories" }
func (ProductImage) TableName() string   { return "product_images" }
func (ProductVariant) TableName() string { return "product_variants" }
func (ProductReview) TableName() string  { return "product_reviews" }

// CanAutoFulfill reports whether the variant carries an external id usable
// for automatic fulfillment.
func (v *ProductVariant) CanAutoFulfill() bool {
	return v.SyncVariantID != nil || v.CatalogVariantID != nil
}

// GetFormattedPrice returns the variant price as a float
func (v *ProductVariant) GetFormattedPrice() float64 {
	return float64(v.PriceCents) / 100
}

// ColorKey returns the attribute key used for image reconciliation.
func (v *ProductVariant) ColorKey() string {
	if v.Attributes.ColorCode != "" {
		return v.Attributes.ColorCode
	}
	return v.Attributes.Color
}
