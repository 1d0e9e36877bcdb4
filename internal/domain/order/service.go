// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
)

// Order errors
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotCancellable    = errors.New("order cannot be cancelled in its current status")
)

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ListRequest represents order listing parameters
type ListRequest struct {
	Page   int         `form:"page"`
	Limit  int         `form:"limit"`
	Status OrderStatus `form:"status"`
	Email  string      `form:"email"`
}

// ListResponse represents a page of orders
type ListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

// GetOrders returns a paginated list of orders (admin)
func (s *Service) GetOrders(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Email != "" {
		query = query.Where("guest_email = ?", req.Email)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(req.Limit).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Orders:     orders,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetOrder returns a single order with items and history
func (s *Service) GetOrder(id uuid.UUID) (*Order, error) {
	var o Order
	if err := s.db.Preload("Items").Preload("StatusHistory").
		Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &o, nil
}

// GetOrderByNumber returns an order by its human-readable number
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var o Order
	if err := s.db.Preload("Items").
		Where("order_number = ?", orderNumber).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &o, nil
}

// GetOrderByPaymentSession returns the order created from a payment session, if any
func (s *Service) GetOrderByPaymentSession(sessionID string) (*Order, error) {
	var o Order
	if err := s.db.Preload("Items").
		Where("payment_session_id = ?", sessionID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &o, nil
}

// GetUserOrders returns orders for a user
func (s *Service) GetUserOrders(userID uint, page, limit int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (page - 1) * limit
	if err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResponse{
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves an order to a new status, recording the change
func (s *Service) UpdateStatus(id uuid.UUID, status OrderStatus, comment string, changedBy uint) (*Order, error) {
	o, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	if !o.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"status": status}
	switch status {
	case OrderStatusPaid:
		updates["paid_at"] = now
	case OrderStatusShipped:
		updates["shipped_at"] = now
	case OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(o).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		history := OrderStatusHistory{
			OrderID:   o.ID,
			Status:    status,
			Comment:   comment,
			CreatedBy: changedBy,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.Status = status
	return o, nil
}

// SetTracking records fulfillment tracking details and marks the order shipped
func (s *Service) SetTracking(id uuid.UUID, carrier, trackingNumber string, changedBy uint) (*Order, error) {
	o, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(o).Updates(map[string]interface{}{
		"shipping_carrier": carrier,
		"tracking_number":  trackingNumber,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to set tracking: %w", err)
	}
	o.ShippingCarrier = carrier
	o.TrackingNumber = trackingNumber

	if o.CanTransitionTo(OrderStatusShipped) {
		return s.UpdateStatus(id, OrderStatusShipped, "tracking number assigned", changedBy)
	}
	return o, nil
}

// CancelOrder cancels an order if its status allows
func (s *Service) CancelOrder(id uuid.UUID, reason string, changedBy uint) (*Order, error) {
	o, err := s.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, ErrNotCancellable
	}
	return s.UpdateStatus(id, OrderStatusCancelled, reason, changedBy)
}

// HasDeliveredOrderForProduct reports whether a user received a given product.
// Used to mark reviews as verified purchases.
func (s *Service) HasDeliveredOrderForProduct(userID uint, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, OrderStatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return count > 0, nil
}
