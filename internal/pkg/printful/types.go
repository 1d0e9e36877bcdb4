// internal/pkg/printful/types.go
package printful

import "encoding/json"

// apiResponse is the envelope every Printful endpoint returns. A non-200
// code field is a failure even when the HTTP status is 2xx.
type apiResponse struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
	Paging *Paging `json:"paging"`
}

// Paging describes list pagination
type Paging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Recipient is the shipping destination of a fulfillment order
type Recipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Email       string `json:"email,omitempty"`
}

// File is a print file reference for catalog-level items
type File struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// OrderItem is one line of a fulfillment order. Exactly one of
// SyncVariantID or VariantID must be set.
type OrderItem struct {
	SyncVariantID *int64 `json:"sync_variant_id,omitempty"`
	VariantID     *int64 `json:"variant_id,omitempty"`
	Quantity      int    `json:"quantity"`
	RetailPrice   string `json:"retail_price,omitempty"`
	Files         []File `json:"files,omitempty"`
}

// OrderRequest is the order-creation payload
type OrderRequest struct {
	ExternalID string      `json:"external_id"`
	Recipient  Recipient   `json:"recipient"`
	Items      []OrderItem `json:"items"`
}

// OrderResult is the relevant slice of the order-creation response
type OrderResult struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// StoreProduct is one entry of the merchant's store-product list
type StoreProduct struct {
	ID           int64  `json:"id"`
	ExternalID   string `json:"external_id"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Variants     int    `json:"variants"`
}

// SyncProductDetail is the sync-product detail response
type SyncProductDetail struct {
	SyncProduct  StoreProduct  `json:"sync_product"`
	SyncVariants []SyncVariant `json:"sync_variants"`
}

// SyncVariant is a merchant-specific variant registered with Printful
type SyncVariant struct {
	ID          int64           `json:"id"`
	ExternalID  string          `json:"external_id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	RetailPrice string          `json:"retail_price"`
	Currency    string          `json:"currency"`
	VariantID   int64           `json:"variant_id"` // catalog variant behind this sync variant
	Files       []VariantFile   `json:"files"`
	Product     CatalogSnapshot `json:"product"`
}

// VariantFile is a file attached to a sync variant (mockups, previews)
type VariantFile struct {
	Type       string `json:"type"`
	PreviewURL string `json:"preview_url"`
}

// CatalogSnapshot is the catalog product summary embedded in a sync variant
type CatalogSnapshot struct {
	VariantID int64  `json:"variant_id"`
	ProductID int64  `json:"product_id"`
	Image     string `json:"image"`
	Name      string `json:"name"`
}

// CatalogVariant is the catalog-variant detail (generic, unbranded)
type CatalogVariant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	ColorCode string `json:"color_code"`
	Price     string `json:"price"` // wholesale price
	Image     string `json:"image"`
}

// catalogVariantResult wraps the catalog-variant endpoint result
type catalogVariantResult struct {
	Variant CatalogVariant `json:"variant"`
}

// CatalogProduct is the catalog-product detail
type CatalogProduct struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// catalogProductResult wraps the catalog-product endpoint result
type catalogProductResult struct {
	Product CatalogProduct `json:"product"`
}
