// internal/domain/product/sync_store.go
package product

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/inventory"
)

// gormSyncStore is the database-backed SyncStore used in production
type gormSyncStore struct {
	db        *gorm.DB
	products  *Service
	inventory *inventory.Service
}

// NewSyncStore creates the database-backed catalog sync store
func NewSyncStore(db *gorm.DB, productSvc *Service, inventorySvc *inventory.Service) SyncStore {
	return &gormSyncStore{
		db:        db,
		products:  productSvc,
		inventory: inventorySvc,
	}
}

func (s *gormSyncStore) ProductByPrintfulID(id int64) (*Product, error) {
	var p Product
	err := s.db.Unscoped().Where("printful_product_id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up product by provider id: %w", err)
	}
	return &p, nil
}

func (s *gormSyncStore) CreateProduct(p *Product) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *gormSyncStore) UpdateProduct(p *Product) error {
	// clears DeletedAt when the product was soft-deleted locally
	err := s.db.Unscoped().Model(p).
		Select("name", "description", "is_active", "deleted_at").
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"is_active":   p.IsActive,
			"deleted_at":  nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *gormSyncStore) VariantBySyncID(id int64) (*ProductVariant, error) {
	var v ProductVariant
	err := s.db.Unscoped().Where("sync_variant_id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up variant by sync id: %w", err)
	}
	return &v, nil
}

func (s *gormSyncStore) CreateVariant(v *ProductVariant) error {
	if err := s.db.Create(v).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

func (s *gormSyncStore) UpdateVariant(v *ProductVariant) error {
	err := s.db.Unscoped().Model(v).
		Updates(map[string]interface{}{
			"name":               v.Name,
			"sku":                v.SKU,
			"price_cents":        v.PriceCents,
			"attributes":         v.Attributes,
			"catalog_variant_id": v.CatalogVariantID,
			"is_active":          v.IsActive,
			"deleted_at":         nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update variant: %w", err)
	}
	return nil
}

func (s *gormSyncStore) ReplaceSyncImages(productID uint, images []ProductImage) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ? AND from_sync = ?", productID, true).
			Delete(&ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete stale sync images: %w", err)
		}
		if len(images) == 0 {
			return nil
		}
		if err := tx.Create(&images).Error; err != nil {
			return fmt.Errorf("failed to create sync images: %w", err)
		}
		return nil
	})
}

func (s *gormSyncStore) EnsureInventory(variantID uint, quantity int) error {
	return s.inventory.EnsureRecord(s.db, variantID, quantity)
}

func (s *gormSyncStore) EnsureCategory(name string) (uint, error) {
	var cat Category
	err := s.db.Where("slug = ?", Slugify(name)).First(&cat).Error
	if err == nil {
		return cat.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to look up category: %w", err)
	}
	cat = Category{Name: name, Slug: Slugify(name), IsActive: true}
	if err := s.db.Create(&cat).Error; err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	return cat.ID, nil
}

func (s *gormSyncStore) UniqueSlug(base string) (string, error) {
	return s.products.UniqueSlug(base)
}
