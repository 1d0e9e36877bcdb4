// internal/domain/checkout/entity.go
package checkout

import (
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
)

// AbandonedCheckout is the server-side snapshot of a cart at the moment a
// payment session was created. The finalizer reads it back by session ID so
// order contents never depend on the client after payment starts.
type AbandonedCheckout struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	PaymentSessionID string      `gorm:"uniqueIndex;not null;size:255" json:"payment_session_id"`
	UserID           *uint       `gorm:"index" json:"user_id"`
	GuestEmail       string      `gorm:"size:255" json:"guest_email"`
	Items            []cart.Line `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	SubtotalCents    int64       `gorm:"not null" json:"subtotal_cents"`
	DiscountCode     string      `gorm:"size:50" json:"discount_code"`
	DiscountCents    int64       `gorm:"default:0" json:"discount_cents"`
	Currency         string      `gorm:"size:3;default:'CHF'" json:"currency"`
	CreatedAt        time.Time   `json:"created_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for AbandonedCheckout model
func (AbandonedCheckout) TableName() string {
	return "abandoned_checkouts"
}

// TotalCents returns the amount actually charged for this snapshot
func (a *AbandonedCheckout) TotalCents() int64 {
	total := a.SubtotalCents - a.DiscountCents
	if total < 0 {
		total = 0
	}
	return total
}
