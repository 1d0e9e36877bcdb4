package discount

import (
	"strings"
	"time"
)

// Discount kinds
const (
	KindPercentage = "percentage"
	KindFixed      = "fixed"
)

// DiscountCode represents a redeemable discount code
type DiscountCode struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Code             string     `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Kind             string     `json:"kind" gorm:"not null;size:20"`
	Value            int64      `json:"value" gorm:"not null"`
	MinSubtotalCents int64      `json:"min_subtotal_cents" gorm:"default:0"`
	MaxUses          int        `json:"max_uses" gorm:"default:0"`
	UsedCount        int        `json:"used_count" gorm:"default:0"`
	StartsAt         *time.Time `json:"starts_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	IsActive         bool       `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the table name for DiscountCode model
func (DiscountCode) TableName() string {
	return "discount_codes"
}

// NormalizeCode uppercases and trims a user-supplied code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidAt reports whether the code is inside its validity window
func (d *DiscountCode) IsValidAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return false
	}
	return true
}

// IsExhausted reports whether the usage cap has been reached
func (d *DiscountCode) IsExhausted() bool {
	return d.MaxUses > 0 && d.UsedCount >= d.MaxUses
}

// AmountFor computes the discount in cents for a given subtotal.
// The result never exceeds the subtotal.
func (d *DiscountCode) AmountFor(subtotalCents int64) int64 {
	var amount int64
	switch d.Kind {
	case KindPercentage:
		amount = subtotalCents * d.Value / 100
	case KindFixed:
		amount = d.Value
	}
	if amount > subtotalCents {
		amount = subtotalCents
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}
