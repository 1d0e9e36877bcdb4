// internal/domain/product/sync_service.go
package product

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/printful"
)

// printfulAPI is the provider surface the catalog sync consumes
type printfulAPI interface {
	ListStoreProducts(ctx context.Context, offset, limit int) ([]printful.StoreProduct, *printful.Paging, error)
	GetSyncProduct(ctx context.Context, id int64) (*printful.SyncProductDetail, error)
	GetCatalogVariant(ctx context.Context, id int64) (*printful.CatalogVariant, error)
	GetCatalogProduct(ctx context.Context, id int64) (*printful.CatalogProduct, error)
}

// SyncStore is the persistence surface of the catalog sync
type SyncStore interface {
	// ProductByPrintfulID also finds soft-deleted products so a product
	// removed locally and still present upstream gets reactivated.
	ProductByPrintfulID(id int64) (*Product, error)
	CreateProduct(p *Product) error
	UpdateProduct(p *Product) error
	VariantBySyncID(id int64) (*ProductVariant, error)
	CreateVariant(v *ProductVariant) error
	UpdateVariant(v *ProductVariant) error
	// ReplaceSyncImages swaps all sync-owned images of a product for the
	// given set. Manually uploaded images are untouched.
	ReplaceSyncImages(productID uint, images []ProductImage) error
	EnsureInventory(variantID uint, quantity int) error
	EnsureCategory(name string) (uint, error)
	UniqueSlug(base string) (string, error)
}

// SyncOptions controls a sync run
type SyncOptions struct {
	// OnlyLatest syncs just the most recently added store product
	OnlyLatest bool
}

// SyncResult summarizes a sync run. Synced counts newly created products;
// a run against an unchanged catalog reports zero. Item-level failures are
// counted and the first one kept; the run itself continues.
type SyncResult struct {
	Synced      int    `json:"synced"`
	Updated     int    `json:"updated"`
	NewVariants int    `json:"new_variants"`
	Skipped     int    `json:"skipped"`
	FirstError  string `json:"first_error,omitempty"`
	Message     string `json:"message"`
}

// SyncService mirrors the Printful store catalog into the local product
// tables
type SyncService struct {
	config *config.Config
	logger *logrus.Logger
	api    printfulAPI
	store  SyncStore
}

// NewSyncService creates a new catalog sync service
func NewSyncService(cfg *config.Config, logger *logrus.Logger, api printfulAPI, store SyncStore) *SyncService {
	return &SyncService{
		config: cfg,
		logger: logger,
		api:    api,
		store:  store,
	}
}

// Sync walks the provider's store products and upserts them locally. Running
// it twice against unchanged upstream data is a no-op.
func (s *SyncService) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	if !s.config.External.Printful.Enabled {
		return nil, fmt.Errorf("printful sync is not configured")
	}

	result := &SyncResult{}
	pageSize := s.config.External.Printful.SyncBatchSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if opts.OnlyLatest {
		pageSize = 1
	}

	offset := 0
	for {
		products, paging, err := s.api.ListStoreProducts(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list store products: %w", err)
		}

		for _, sp := range products {
			if err := s.syncProduct(ctx, sp, result); err != nil {
				result.Skipped++
				if result.FirstError == "" {
					result.FirstError = err.Error()
				}
				s.logger.WithError(err).WithFields(logrus.Fields{
					"printful_product_id": sp.ID,
					"name":                sp.Name,
				}).Error("Failed to sync product")
			}
		}

		if opts.OnlyLatest {
			break
		}
		offset += len(products)
		if paging == nil || offset >= paging.Total || len(products) == 0 {
			break
		}
	}

	if result.Synced == 0 && result.NewVariants == 0 {
		result.Message = "nothing new to sync"
	} else {
		result.Message = fmt.Sprintf("synced %d new products, %d new variants", result.Synced, result.NewVariants)
	}

	s.logger.WithFields(logrus.Fields{
		"synced":       result.Synced,
		"updated":      result.Updated,
		"new_variants": result.NewVariants,
		"skipped":      result.Skipped,
	}).Info("Catalog sync finished")

	return result, nil
}

// syncProduct upserts one store product and its variants
func (s *SyncService) syncProduct(ctx context.Context, sp printful.StoreProduct, result *SyncResult) error {
	detail, err := s.api.GetSyncProduct(ctx, sp.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch sync product %d: %w", sp.ID, err)
	}

	local, err := s.store.ProductByPrintfulID(sp.ID)
	if err != nil {
		return err
	}

	description := ""
	if len(detail.SyncVariants) > 0 {
		if cp, err := s.api.GetCatalogProduct(ctx, detail.SyncVariants[0].Product.ProductID); err == nil {
			description = cp.Description
		}
	}

	created := false
	if local == nil {
		categoryID, err := s.store.EnsureCategory("Shop")
		if err != nil {
			return err
		}
		slug, err := s.store.UniqueSlug(Slugify(sp.Name))
		if err != nil {
			return err
		}
		printfulID := sp.ID
		local = &Product{
			Slug:              slug,
			Name:              sp.Name,
			Description:       description,
			CategoryID:        categoryID,
			IsActive:          true,
			PrintfulProductID: &printfulID,
		}
		if err := s.store.CreateProduct(local); err != nil {
			return err
		}
		created = true
	} else {
		local.Name = sp.Name
		if description != "" {
			local.Description = description
		}
		// products deleted locally but still sold upstream come back
		local.IsActive = true
		if err := s.store.UpdateProduct(local); err != nil {
			return err
		}
	}

	colorImages := map[string]string{}
	for _, sv := range detail.SyncVariants {
		variantCreated, err := s.syncVariant(ctx, local, sv, colorImages)
		if err != nil {
			result.Skipped++
			if result.FirstError == "" {
				result.FirstError = err.Error()
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"sync_variant_id": sv.ID,
				"product_id":      local.ID,
			}).Error("Failed to sync variant")
			continue
		}
		if variantCreated {
			result.NewVariants++
		}
	}

	if err := s.reconcileImages(local, sp, colorImages); err != nil {
		return err
	}

	if created {
		result.Synced++
	} else {
		result.Updated++
	}
	return nil
}

// syncVariant upserts one sync variant, pricing it from the retail price when
// the merchant set one and from the wholesale price with markup otherwise
func (s *SyncService) syncVariant(ctx context.Context, local *Product, sv printful.SyncVariant, colorImages map[string]string) (bool, error) {
	catalog, err := s.api.GetCatalogVariant(ctx, sv.VariantID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch catalog variant %d: %w", sv.VariantID, err)
	}

	priceCents, err := s.priceFor(sv, catalog)
	if err != nil {
		return false, err
	}

	attrs := VariantAttributes{
		Size:      catalog.Size,
		Color:     catalog.Color,
		ColorCode: catalog.ColorCode,
	}
	if rrp, err := parseCents(sv.RetailPrice); err == nil && rrp > 0 {
		attrs.RRPCents = rrp
	}

	sku := sv.SKU
	if sku == "" {
		sku = fmt.Sprintf("PF-%d", sv.ID)
	}

	syncVariantID := sv.ID
	catalogVariantID := sv.VariantID

	existing, err := s.store.VariantBySyncID(sv.ID)
	if err != nil {
		return false, err
	}
	created := false
	if existing == nil {
		variant := &ProductVariant{
			ProductID:        local.ID,
			SKU:              sku,
			Name:             sv.Name,
			PriceCents:       priceCents,
			Attributes:       attrs,
			SyncVariantID:    &syncVariantID,
			CatalogVariantID: &catalogVariantID,
			IsActive:         true,
		}
		if err := s.store.CreateVariant(variant); err != nil {
			return false, err
		}
		// new variants start with placeholder stock so they are orderable
		if err := s.store.EnsureInventory(variant.ID, s.config.External.Printful.PlaceholderStock); err != nil {
			return false, err
		}
		existing = variant
		created = true
	} else {
		existing.Name = sv.Name
		existing.SKU = sku
		existing.PriceCents = priceCents
		existing.Attributes = attrs
		existing.CatalogVariantID = &catalogVariantID
		existing.IsActive = true
		if err := s.store.UpdateVariant(existing); err != nil {
			return false, err
		}
	}

	key := existing.ColorKey()
	if key != "" && catalog.Image != "" {
		colorImages[key] = catalog.Image
	}
	return created, nil
}

// priceFor picks the merchant's retail price when set and falls back to the
// wholesale price with the configured markup
func (s *SyncService) priceFor(sv printful.SyncVariant, catalog *printful.CatalogVariant) (int64, error) {
	retail, err := parseCents(sv.RetailPrice)
	if err == nil && retail > 0 {
		return retail, nil
	}

	wholesale, err := parseCents(catalog.Price)
	if err != nil || wholesale <= 0 {
		return 0, fmt.Errorf("variant %d has no usable price", sv.ID)
	}

	markup := decimal.NewFromFloat(s.config.External.Printful.MarkupMultiplier)
	if markup.LessThanOrEqual(decimal.Zero) {
		markup = decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(wholesale).Mul(markup).Round(0).IntPart(), nil
}

// reconcileImages replaces the product's sync-owned images with the current
// hero thumbnail plus one image per color
func (s *SyncService) reconcileImages(local *Product, sp printful.StoreProduct, colorImages map[string]string) error {
	var images []ProductImage
	if sp.ThumbnailURL != "" {
		images = append(images, ProductImage{
			ProductID: local.ID,
			URL:       sp.ThumbnailURL,
			AltText:   sp.Name,
			IsHero:    true,
			FromSync:  true,
		})
	}
	colors := make([]string, 0, len(colorImages))
	for key := range colorImages {
		colors = append(colors, key)
	}
	sort.Strings(colors)

	for i, key := range colors {
		images = append(images, ProductImage{
			ProductID: local.ID,
			URL:       colorImages[key],
			AltText:   sp.Name,
			ColorKey:  key,
			FromSync:  true,
			SortOrder: i + 1,
		})
	}
	return s.store.ReplaceSyncImages(local.ID, images)
}

// parseCents parses a decimal money string like "24.90" into cents
func parseCents(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty price")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", value, err)
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
