// internal/pkg/printful/client.go
package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
)

// Client talks to the Printful REST API. Construct it with NewClient; the
// integration is inert when no API token is configured (cfg.Enabled false),
// and callers are expected to check that before dispatching.
type Client struct {
	config     config.PrintfulConfig
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Printful client
func NewClient(cfg config.PrintfulConfig) *Client {
	return &Client{
		config:  cfg,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateOrder submits a fulfillment order for manufacturing and shipping
func (c *Client) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResult, error) {
	result, _, err := c.call(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return nil, err
	}

	var order OrderResult
	if err := json.Unmarshal(result, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	return &order, nil
}

// ListStoreProducts retrieves one page of the merchant's store products
func (c *Client) ListStoreProducts(ctx context.Context, offset, limit int) ([]StoreProduct, *Paging, error) {
	endpoint := fmt.Sprintf("/store/products?offset=%d&limit=%d", offset, limit)
	result, paging, err := c.call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}

	var products []StoreProduct
	if err := json.Unmarshal(result, &products); err != nil {
		return nil, nil, fmt.Errorf("failed to parse store product list: %w", err)
	}
	return products, paging, nil
}

// GetSyncProduct retrieves a store product with its sync variants
func (c *Client) GetSyncProduct(ctx context.Context, id int64) (*SyncProductDetail, error) {
	result, _, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/store/products/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var detail SyncProductDetail
	if err := json.Unmarshal(result, &detail); err != nil {
		return nil, fmt.Errorf("failed to parse sync product: %w", err)
	}
	return &detail, nil
}

// GetCatalogVariant retrieves a generic catalog variant (wholesale price,
// color codes)
func (c *Client) GetCatalogVariant(ctx context.Context, id int64) (*CatalogVariant, error) {
	result, _, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/products/variant/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var wrapped catalogVariantResult
	if err := json.Unmarshal(result, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse catalog variant: %w", err)
	}
	return &wrapped.Variant, nil
}

// GetCatalogProduct retrieves catalog product detail (description text)
func (c *Client) GetCatalogProduct(ctx context.Context, id int64) (*CatalogProduct, error) {
	result, _, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var wrapped catalogProductResult
	if err := json.Unmarshal(result, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse catalog product: %w", err)
	}
	return &wrapped.Product, nil
}

// call makes an authenticated API call and unwraps the response envelope
func (c *Client) call(ctx context.Context, method, endpoint string, data interface{}) (json.RawMessage, *Paging, error) {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody.Bytes(), &envelope); err != nil {
		return nil, nil, fmt.Errorf("API call failed with status %d: %s", resp.StatusCode, respBody.String())
	}

	if resp.StatusCode >= 400 || (envelope.Code != 0 && envelope.Code != 200) {
		reason := envelope.Error.Message
		if reason == "" {
			reason = envelope.Error.Reason
		}
		if reason == "" {
			reason = respBody.String()
		}
		return nil, nil, fmt.Errorf("printful API error (code %d): %s", envelope.Code, reason)
	}

	return envelope.Result, envelope.Paging, nil
}
