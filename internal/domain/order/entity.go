// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Order represents the order entity
type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      *uint       `gorm:"index" json:"user_id"` // Nullable for guest orders
	GuestEmail  string      `gorm:"size:255" json:"guest_email"` // Set only when UserID is nil
	Status      OrderStatus `gorm:"not null;default:'pending'" json:"status"`

	// ContactEmail is the address order notifications go to, for guest and
	// account orders alike.
	ContactEmail string `gorm:"size:255" json:"contact_email"`

	// Payment session that produced this order. Uniqueness guarantees
	// a session can only ever be finalized once.
	PaymentSessionID string `gorm:"uniqueIndex;not null;size:255" json:"payment_session_id"`

	// Financial snapshot, in cents
	SubtotalCents int64  `gorm:"not null" json:"subtotal_cents"`
	DiscountCents int64  `gorm:"default:0" json:"discount_cents"`
	ShippingCents int64  `gorm:"default:0" json:"shipping_cents"`
	TotalCents    int64  `gorm:"not null" json:"total_cents"`
	Currency      string `gorm:"size:3;default:'CHF'" json:"currency"`
	DiscountCode  string `gorm:"size:50" json:"discount_code"`

	// Address snapshot
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	// Fulfillment
	PrintfulOrderID *int64 `gorm:"index" json:"printful_order_id"`
	TrackingNumber  string `gorm:"size:100" json:"tracking_number"`
	ShippingCarrier string `gorm:"size:50" json:"shipping_carrier"`

	Notes string `gorm:"type:text" json:"notes"`

	// Timestamps
	PaidAt      *time.Time     `json:"paid_at"`
	ShippedAt   *time.Time     `json:"shipped_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents items in an order. Price and name are frozen at
// purchase time and never re-read from the product catalog.
type OrderItem struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	OrderID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID        uint              `gorm:"not null;index" json:"product_id"`
	ProductVariantID uint              `gorm:"not null;index" json:"product_variant_id"`
	SKU              string            `gorm:"size:100" json:"sku"`
	Name             string            `gorm:"not null;size:255" json:"name"`
	Quantity         int               `gorm:"not null" json:"quantity"`
	UnitPriceCents   int64             `gorm:"not null" json:"unit_price_cents"`
	TotalCents       int64             `gorm:"not null" json:"total_cents"`
	Customization    map[string]string `gorm:"type:jsonb;serializer:json" json:"customization,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uint        `gorm:"index" json:"created_by"` // User ID who made the change
	CreatedAt time.Time   `json:"created_at"`
}

// Address represents shipping/billing address (embedded in Order)
type Address struct {
	Name         string `gorm:"size:200" json:"name"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:2" json:"country"`
	Phone        string `gorm:"size:20" json:"phone"`
}

// IsComplete reports whether the address is usable for fulfillment
func (a Address) IsComplete() bool {
	return a.AddressLine1 != "" && a.City != "" && a.Country != "" && a.PostalCode != ""
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// BeforeCreate assigns the order ID
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// GenerateOrderNumber generates a human-readable order number
func GenerateOrderNumber(id uuid.UUID) string {
	// Format: ORD-YYYYMMDD-XXXXXXXX
	short := id.String()[:8]
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), short)
}

// Email returns the address to notify for this order
func (o *Order) Email() string {
	if o.ContactEmail != "" {
		return o.ContactEmail
	}
	return o.GuestEmail
}

// GetFormattedTotal returns total amount as float
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalCents) / 100
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

// CanBeRefunded checks if order can be refunded
func (o *Order) CanBeRefunded() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusShipped
}

// CanTransitionTo reports whether the given status change is allowed
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	allowed, ok := statusTransitions[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}

var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusRefunded},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

// AddStatusHistory adds a new status change to history
func (o *Order) AddStatusHistory(status OrderStatus, comment string, createdBy uint) {
	history := OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	o.StatusHistory = append(o.StatusHistory, history)
}
