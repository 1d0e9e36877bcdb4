// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/storefront-backend/internal/config"
)

// ErrRecordNotFound is returned when no inventory row exists for a variant
var ErrRecordNotFound = errors.New("inventory record not found")

// Service handles inventory operations
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// GetStock returns the current quantity for a variant. Missing rows read as zero.
func (s *Service) GetStock(variantID uint) (int, error) {
	var record InventoryRecord
	if err := s.db.Where("variant_id = ?", variantID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read inventory: %w", err)
	}
	return record.Quantity, nil
}

// SetStock sets the absolute quantity for a variant, creating the row if needed
func (s *Service) SetStock(variantID uint, quantity int, reason MovementReason, reference string) error {
	if quantity < 0 {
		quantity = 0
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var record InventoryRecord
		err := tx.Where("variant_id = ?", variantID).First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = InventoryRecord{VariantID: variantID, Quantity: quantity}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create inventory record: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to read inventory: %w", err)
		default:
			delta := quantity - record.Quantity
			if err := tx.Model(&record).Update("quantity", quantity).Error; err != nil {
				return fmt.Errorf("failed to update inventory: %w", err)
			}
			if delta == 0 {
				return nil
			}
			quantity = delta
		}
		movement := InventoryMovement{
			VariantID: variantID,
			Delta:     quantity,
			Reason:    reason,
			Reference: reference,
		}
		return tx.Create(&movement).Error
	})
}

// movementFor builds the audit row for a stock change. The before quantity
// must be captured ahead of the gorm Update, which writes the new value back
// into the loaded record.
func movementFor(variantID uint, before, after int, reason MovementReason, reference string) InventoryMovement {
	return InventoryMovement{
		VariantID: variantID,
		Delta:     after - before,
		Reason:    reason,
		Reference: reference,
	}
}

// EnsureRecord creates an inventory row with the given quantity only when
// no row exists yet. Existing quantities are never overwritten.
func (s *Service) EnsureRecord(tx *gorm.DB, variantID uint, quantity int) error {
	record := InventoryRecord{VariantID: variantID, Quantity: quantity}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_id"}},
		DoNothing: true,
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to ensure inventory record: %w", err)
	}
	return nil
}

// DecrementForOrder reduces stock for each purchased variant inside the given
// transaction. Quantities floor at zero; variants that would have gone
// negative are returned so the caller can log the oversell.
func (s *Service) DecrementForOrder(tx *gorm.DB, quantities map[uint]int, reference string) ([]uint, error) {
	var oversold []uint
	for variantID, qty := range quantities {
		if qty <= 0 {
			continue
		}
		var record InventoryRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("variant_id = ?", variantID).First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				oversold = append(oversold, variantID)
				continue
			}
			return nil, fmt.Errorf("failed to lock inventory for variant %d: %w", variantID, err)
		}

		newQty := record.Quantity - qty
		if newQty < 0 {
			oversold = append(oversold, variantID)
			newQty = 0
		}
		// The movement delta must be taken before the Update call: gorm
		// writes the new quantity back into the loaded struct.
		movement := movementFor(variantID, record.Quantity, newQty, ReasonSale, reference)
		if err := tx.Model(&record).Update("quantity", newQty).Error; err != nil {
			return nil, fmt.Errorf("failed to decrement inventory for variant %d: %w", variantID, err)
		}
		if err := tx.Create(&movement).Error; err != nil {
			return nil, fmt.Errorf("failed to record inventory movement: %w", err)
		}
	}
	return oversold, nil
}

// Adjust applies a relative stock change (admin)
func (s *Service) Adjust(variantID uint, delta int, reference string) (*InventoryRecord, error) {
	var record InventoryRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("variant_id = ?", variantID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return fmt.Errorf("failed to read inventory: %w", err)
		}
		newQty := record.Quantity + delta
		if newQty < 0 {
			newQty = 0
		}
		movement := movementFor(variantID, record.Quantity, newQty, ReasonAdjustment, reference)
		if err := tx.Model(&record).Update("quantity", newQty).Error; err != nil {
			return fmt.Errorf("failed to adjust inventory: %w", err)
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("failed to record inventory movement: %w", err)
		}
		record.Quantity = newQty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
