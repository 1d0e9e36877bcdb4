package discount

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
)

// Discount validation errors
var (
	ErrCodeNotFound = errors.New("discount code not found")
	ErrCodeInactive = errors.New("discount code is not active")
	ErrCodeExpired  = errors.New("discount code is outside its validity window")
	ErrExhausted    = errors.New("discount code usage limit reached")
	ErrMinSubtotal  = errors.New("cart subtotal below discount minimum")
)

// Applied describes a discount applied to a cart subtotal
type Applied struct {
	Code        *DiscountCode `json:"code"`
	AmountCents int64         `json:"amount_cents"`
}

// Service handles discount code operations
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new discount service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// DiscountFor validates a code against a cart subtotal and returns the applied amount
func (s *Service) DiscountFor(code string, subtotalCents int64) (*Applied, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, ErrCodeNotFound
	}

	var dc DiscountCode
	if err := s.db.Where("code = ?", normalized).First(&dc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to load discount code: %w", err)
	}

	if !dc.IsActive {
		return nil, ErrCodeInactive
	}
	if !dc.IsValidAt(time.Now()) {
		return nil, ErrCodeExpired
	}
	if dc.IsExhausted() {
		return nil, ErrExhausted
	}
	if subtotalCents < dc.MinSubtotalCents {
		return nil, ErrMinSubtotal
	}

	return &Applied{
		Code:        &dc,
		AmountCents: dc.AmountFor(subtotalCents),
	}, nil
}

// RecordUse increments the usage counter for a code after an order is finalized
func (s *Service) RecordUse(code string) error {
	normalized := NormalizeCode(code)
	result := s.db.Model(&DiscountCode{}).
		Where("code = ?", normalized).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to record discount use: %w", result.Error)
	}
	return nil
}

// CreateCode creates a new discount code (admin)
func (s *Service) CreateCode(dc *DiscountCode) error {
	dc.Code = NormalizeCode(dc.Code)
	if dc.Code == "" {
		return errors.New("code is required")
	}
	if dc.Kind != KindPercentage && dc.Kind != KindFixed {
		return fmt.Errorf("invalid discount kind: %s", dc.Kind)
	}
	if dc.Value <= 0 {
		return errors.New("discount value must be positive")
	}
	if dc.Kind == KindPercentage && dc.Value > 100 {
		return errors.New("percentage discount cannot exceed 100")
	}
	if err := s.db.Create(dc).Error; err != nil {
		return fmt.Errorf("failed to create discount code: %w", err)
	}
	return nil
}

// ListCodes lists all discount codes (admin)
func (s *Service) ListCodes() ([]DiscountCode, error) {
	var codes []DiscountCode
	if err := s.db.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", err)
	}
	return codes, nil
}

// DeactivateCode disables a code without deleting its usage history (admin)
func (s *Service) DeactivateCode(id uint) error {
	result := s.db.Model(&DiscountCode{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate discount code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCodeNotFound
	}
	return nil
}
