package product

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/printful"
)

type fakeAPI struct {
	products        []printful.StoreProduct
	details         map[int64]*printful.SyncProductDetail
	catalogVariants map[int64]*printful.CatalogVariant
	catalogProducts map[int64]*printful.CatalogProduct
	listCalls       []int // page sizes requested
}

func (f *fakeAPI) ListStoreProducts(_ context.Context, offset, limit int) ([]printful.StoreProduct, *printful.Paging, error) {
	f.listCalls = append(f.listCalls, limit)
	end := offset + limit
	if end > len(f.products) {
		end = len(f.products)
	}
	if offset > len(f.products) {
		offset = len(f.products)
	}
	return f.products[offset:end], &printful.Paging{Total: len(f.products), Offset: offset, Limit: limit}, nil
}

func (f *fakeAPI) GetSyncProduct(_ context.Context, id int64) (*printful.SyncProductDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, errors.New("sync product not found")
	}
	return detail, nil
}

func (f *fakeAPI) GetCatalogVariant(_ context.Context, id int64) (*printful.CatalogVariant, error) {
	cv, ok := f.catalogVariants[id]
	if !ok {
		return nil, errors.New("catalog variant not found")
	}
	return cv, nil
}

func (f *fakeAPI) GetCatalogProduct(_ context.Context, id int64) (*printful.CatalogProduct, error) {
	cp, ok := f.catalogProducts[id]
	if !ok {
		return nil, errors.New("catalog product not found")
	}
	return cp, nil
}

type fakeSyncStore struct {
	products  map[int64]*Product
	variants  map[int64]*ProductVariant
	images    map[uint][]ProductImage
	inventory map[uint]int
	nextID    uint
	slugs     map[string]bool
}

func newFakeSyncStore() *fakeSyncStore {
	return &fakeSyncStore{
		products:  map[int64]*Product{},
		variants:  map[int64]*ProductVariant{},
		images:    map[uint][]ProductImage{},
		inventory: map[uint]int{},
		slugs:     map[string]bool{},
	}
}

func (f *fakeSyncStore) ProductByPrintfulID(id int64) (*Product, error) {
	return f.products[id], nil
}

func (f *fakeSyncStore) CreateProduct(p *Product) error {
	f.nextID++
	p.ID = f.nextID
	f.products[*p.PrintfulProductID] = p
	f.slugs[p.Slug] = true
	return nil
}

func (f *fakeSyncStore) UpdateProduct(p *Product) error { return nil }

func (f *fakeSyncStore) VariantBySyncID(id int64) (*ProductVariant, error) {
	return f.variants[id], nil
}

func (f *fakeSyncStore) CreateVariant(v *ProductVariant) error {
	f.nextID++
	v.ID = f.nextID
	f.variants[*v.SyncVariantID] = v
	return nil
}

func (f *fakeSyncStore) UpdateVariant(v *ProductVariant) error {
	f.variants[*v.SyncVariantID] = v
	return nil
}

func (f *fakeSyncStore) ReplaceSyncImages(productID uint, images []ProductImage) error {
	f.images[productID] = images
	return nil
}

func (f *fakeSyncStore) EnsureInventory(variantID uint, quantity int) error {
	if _, exists := f.inventory[variantID]; !exists {
		f.inventory[variantID] = quantity
	}
	return nil
}

func (f *fakeSyncStore) EnsureCategory(name string) (uint, error) { return 1, nil }

func (f *fakeSyncStore) UniqueSlug(base string) (string, error) {
	slug := base
	for suffix := 1; f.slugs[slug]; suffix++ {
		slug = fmt.Sprintf("%s-%d", base, suffix)
	}
	return slug, nil
}

func syncConfig() *config.Config {
	return &config.Config{
		External: config.ExternalConfig{
			Printful: config.PrintfulConfig{
				Enabled:          true,
				MarkupMultiplier: 2.0,
				PlaceholderStock: 25,
				SyncBatchSize:    20,
			},
		},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func teeShirtAPI() *fakeAPI {
	return &fakeAPI{
		products: []printful.StoreProduct{
			{ID: 300, Name: "Alpine Tee", ThumbnailURL: "https://cdn.example.com/tee.png"},
		},
		details: map[int64]*printful.SyncProductDetail{
			300: {
				SyncProduct: printful.StoreProduct{ID: 300, Name: "Alpine Tee", ThumbnailURL: "https://cdn.example.com/tee.png"},
				SyncVariants: []printful.SyncVariant{
					{ID: 1001, SKU: "TEE-S-BLK", Name: "Alpine Tee S / Black", RetailPrice: "29.90", VariantID: 4011,
						Product: printful.CatalogSnapshot{ProductID: 71}},
					{ID: 1002, SKU: "TEE-M-BLK", Name: "Alpine Tee M / Black", RetailPrice: "0.00", VariantID: 4012,
						Product: printful.CatalogSnapshot{ProductID: 71}},
				},
			},
		},
		catalogVariants: map[int64]*printful.CatalogVariant{
			4011: {ID: 4011, Size: "S", Color: "Black", ColorCode: "#000000", Price: "12.50", Image: "https://cdn.example.com/black.png"},
			4012: {ID: 4012, Size: "M", Color: "Black", ColorCode: "#000000", Price: "12.50", Image: "https://cdn.example.com/black.png"},
		},
		catalogProducts: map[int64]*printful.CatalogProduct{
			71: {ID: 71, Title: "Unisex Tee", Description: "Soft cotton tee."},
		},
	}
}

func TestSync_CreatesProductAndVariants(t *testing.T) {
	api := teeShirtAPI()
	store := newFakeSyncStore()
	svc := NewSyncService(syncConfig(), quietLogger(), api, store)

	result, err := svc.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 2, result.NewVariants)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.FirstError)

	p := store.products[300]
	require.NotNil(t, p)
	assert.Equal(t, "alpine-tee", p.Slug)
	assert.Equal(t, "Soft cotton tee.", p.Description)

	// retail price set by the merchant wins
	small := store.variants[1001]
	require.NotNil(t, small)
	assert.Equal(t, int64(2990), small.PriceCents)
	assert.Equal(t, "S", small.Attributes.Size)
	assert.Equal(t, "#000000", small.Attributes.ColorCode)

	// no retail price: wholesale 12.50 with 2x markup
	medium := store.variants[1002]
	require.NotNil(t, medium)
	assert.Equal(t, int64(2500), medium.PriceCents)

	// placeholder stock for new variants
	assert.Equal(t, 25, store.inventory[small.ID])
	assert.Equal(t, 25, store.inventory[medium.ID])
}

func TestSync_ImageReconciliation(t *testing.T) {
	api := teeShirtAPI()
	store := newFakeSyncStore()
	svc := NewSyncService(syncConfig(), quietLogger(), api, store)

	_, err := svc.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)

	p := store.products[300]
	images := store.images[p.ID]
	require.Len(t, images, 2) // hero + one per color

	var hero, color *ProductImage
	for i := range images {
		if images[i].IsHero {
			hero = &images[i]
		} else {
			color = &images[i]
		}
	}
	require.NotNil(t, hero)
	assert.Equal(t, "https://cdn.example.com/tee.png", hero.URL)
	assert.True(t, hero.FromSync)

	require.NotNil(t, color)
	assert.Equal(t, "#000000", color.ColorKey)
	assert.Equal(t, "https://cdn.example.com/black.png", color.URL)
}

func TestReconcileImages_ColorOrderDeterministic(t *testing.T) {
	store := newFakeSyncStore()
	svc := NewSyncService(syncConfig(), quietLogger(), &fakeAPI{}, store)

	colors := map[string]string{
		"#ffffff": "https://cdn.example.com/white.png",
		"#000000": "https://cdn.example.com/black.png",
		"#ff0000": "https://cdn.example.com/red.png",
	}
	require.NoError(t, svc.reconcileImages(&Product{ID: 42}, printful.StoreProduct{Name: "Tee"}, colors))

	images := store.images[42]
	require.Len(t, images, 3)
	keys := []string{images[0].ColorKey, images[1].ColorKey, images[2].ColorKey}
	assert.Equal(t, []string{"#000000", "#ff0000", "#ffffff"}, keys)
	assert.Equal(t, 1, images[0].SortOrder)
	assert.Equal(t, 3, images[2].SortOrder)
}

func TestSync_SecondRunIsUpsert(t *testing.T) {
	api := teeShirtAPI()
	store := newFakeSyncStore()
	svc := NewSyncService(syncConfig(), quietLogger(), api, store)

	_, err := svc.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)
	firstCount := len(store.variants)

	result, err := svc.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)

	// unchanged upstream catalog: no new inserts
	assert.Zero(t, result.Synced)
	assert.Zero(t, result.NewVariants)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "nothing new to sync", result.Message)
	assert.Len(t, store.variants, firstCount)
	assert.Len(t, store.products, 1)
}

func TestSync_OnlyLatestUsesPageSizeOne(t *testing.T) {
	api := teeShirtAPI()
	api.products = append(api.products, printful.StoreProduct{ID: 301, Name: "Second"})
	store := newFakeSyncStore()
	svc := NewSyncService(syncConfig(), quietLogger(), api, store)

	result, err := svc.Sync(context.Background(), SyncOptions{OnlyLatest: true})
	require.NoError(t, err)

	require.Len(t, api.listCalls, 1)
	assert.Equal(t, 1, api.listCalls[0])
	assert.Equal(t, 1, result.Synced)
}

func TestSync_ItemFailureDoesNotAbortRun(t *testing.T) {
	api := teeShirtAPI()
	// second product whose detail fetch fails
	api.products = append(api.products, printful.StoreProduct{ID: 999, Name: "Broken"})
	store := newFakeSyncStore()
	svc := NewSyncService(syncConfig(), quietLogger(), api, store)

	result, err := svc.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Skipped)
	assert.NotEmpty(t, result.FirstError)
}

func TestSync_DisabledWithoutToken(t *testing.T) {
	cfg := syncConfig()
	cfg.External.Printful.Enabled = false
	svc := NewSyncService(cfg, quietLogger(), teeShirtAPI(), newFakeSyncStore())

	_, err := svc.Sync(context.Background(), SyncOptions{})
	assert.Error(t, err)
}
