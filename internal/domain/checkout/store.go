// internal/domain/checkout/store.go
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// gormStore is the database-backed Store used in production
type gormStore struct {
	db        *gorm.DB
	inventory *inventory.Service
	discounts *discount.Service
}

// NewStore creates the database-backed finalizer store
func NewStore(db *gorm.DB, inventorySvc *inventory.Service, discountSvc *discount.Service) Store {
	return &gormStore{
		db:        db,
		inventory: inventorySvc,
		discounts: discountSvc,
	}
}

func (s *gormStore) OrderByPaymentSession(sessionID string) (*order.Order, error) {
	var o order.Order
	err := s.db.Preload("Items").Where("payment_session_id = ?", sessionID).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query order by payment session: %w", err)
	}
	return &o, nil
}

func (s *gormStore) Snapshot(sessionID string) (*AbandonedCheckout, error) {
	var snapshot AbandonedCheckout
	err := s.db.Where("payment_session_id = ?", sessionID).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *gormStore) VariantByID(id uint) (*product.ProductVariant, error) {
	var variant product.ProductVariant
	err := s.db.Where("id = ?", id).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}
	return &variant, nil
}

func (s *gormStore) PersistOrder(o *order.Order, quantities map[uint]int) ([]uint, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = order.GenerateOrderNumber(o.ID)
	}

	var oversold []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateSession
			}
			return fmt.Errorf("failed to create order: %w", err)
		}
		var err error
		oversold, err = s.inventory.DecrementForOrder(tx, quantities, o.ID.String())
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return oversold, nil
}

func (s *gormStore) StorePrintfulOrderID(o *order.Order, printfulID int64) error {
	if err := s.db.Model(o).Update("printful_order_id", printfulID).Error; err != nil {
		return fmt.Errorf("failed to store fulfillment order ID: %w", err)
	}
	o.PrintfulOrderID = &printfulID
	return nil
}

func (s *gormStore) DeleteSnapshot(sessionID string) error {
	return s.db.Where("payment_session_id = ?", sessionID).Delete(&AbandonedCheckout{}).Error
}

func (s *gormStore) RecordDiscountUse(code string) error {
	return s.discounts.RecordUse(code)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
