// internal/domain/cart/entity.go
package cart

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Line is one cart line. Two lines are the same line iff the variant matches
// AND the customization config matches exactly (order-insensitive); otherwise
// they are distinct lines even for the same variant.
type Line struct {
	VariantID      uint              `json:"variant_id"`
	ProductID      uint              `json:"product_id"`
	Quantity       int               `json:"quantity"`
	UnitPriceCents int64             `json:"unit_price_cents"`
	Customization  map[string]string `json:"customization,omitempty"`
}

// Cart is an ordered list of lines. Guest carts live entirely in a
// client-held cookie; they are never persisted server-side.
type Cart struct {
	Lines []Line `json:"lines"`
}

// CartItem is a persisted cart line for authenticated users
type CartItem struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	UserID        uint              `gorm:"not null;index" json:"user_id"`
	ProductID     uint              `gorm:"not null" json:"product_id"`
	VariantID     uint              `gorm:"not null;index" json:"variant_id"`
	Quantity      int               `gorm:"not null" json:"quantity"`
	Customization map[string]string `gorm:"type:jsonb;serializer:json" json:"customization,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string { return "cart_items" }

// CustomizationKey canonicalizes a customization config into a comparable
// key. JSON keeps keys sorted and escapes delimiters, so values containing
// separator characters cannot collide two distinct configs.
func CustomizationKey(customization map[string]string) string {
	if len(customization) == 0 {
		return ""
	}
	b, err := json.Marshal(customization)
	if err != nil {
		return ""
	}
	return string(b)
}

// SameLine reports whether two lines would merge
func (l Line) SameLine(other Line) bool {
	return l.VariantID == other.VariantID &&
		CustomizationKey(l.Customization) == CustomizationKey(other.Customization)
}

// Add merges the line into an existing matching line or appends a new one.
// Quantities below one are rejected.
func (c *Cart) Add(line Line) error {
	if line.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	for i := range c.Lines {
		if c.Lines[i].SameLine(line) {
			c.Lines[i].Quantity += line.Quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// UpdateQuantity sets the quantity of a matching line; zero removes it.
func (c *Cart) UpdateQuantity(variantID uint, customization map[string]string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	target := Line{VariantID: variantID, Customization: customization}
	for i := range c.Lines {
		if c.Lines[i].SameLine(target) {
			if quantity == 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			} else {
				c.Lines[i].Quantity = quantity
			}
			return nil
		}
	}
	return fmt.Errorf("item not found in cart")
}

// Remove deletes a matching line
func (c *Cart) Remove(variantID uint, customization map[string]string) error {
	return c.UpdateQuantity(variantID, customization, 0)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// SubtotalCents sums quantity times unit price over all lines
func (c *Cart) SubtotalCents() int64 {
	var subtotal int64
	for _, line := range c.Lines {
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}
	return subtotal
}

// TotalQuantity sums item quantities over all lines
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// EncodeCookie serializes a cart into a cookie-safe value
func EncodeCookie(c *Cart) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to serialize cart: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCookie parses a cookie value back into a cart. An empty value is an
// empty cart, not an error.
func DecodeCookie(value string) (*Cart, error) {
	if value == "" {
		return &Cart{}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("malformed cart cookie: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("malformed cart payload: %w", err)
	}
	return &c, nil
}
