// internal/domain/user/address_service.go
package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
)

// ErrAddressNotFound is returned when an address does not exist or belongs
// to another user
var ErrAddressNotFound = errors.New("address not found")

// shippableCountries are the ISO codes the store ships to
var shippableCountries = map[string]bool{
	"CH": true,
	"DE": true,
	"AT": true,
	"FR": true,
	"IT": true,
	"US": true,
	"GB": true,
}

// AddressService handles address business logic
type AddressService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, cfg *config.Config) *AddressService {
	return &AddressService{
		db:     db,
		config: cfg,
	}
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	Type         string `json:"type" binding:"required,oneof=shipping billing"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Company      string `json:"company"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country" binding:"required,len=2"`
	Phone        string `json:"phone"`
	IsDefault    bool   `json:"is_default"`
}

// GetUserAddresses retrieves all addresses for a user
func (s *AddressService) GetUserAddresses(userID uint, addressType string) ([]Address, error) {
	var addresses []Address
	query := s.db.Where("user_id = ?", userID)
	if addressType != "" {
		query = query.Where("type = ?", addressType)
	}
	if err := query.Order("is_default DESC, created_at DESC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress retrieves a specific address for a user
func (s *AddressService) GetAddress(userID, addressID uint) (*Address, error) {
	var address Address
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).First(&address)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", result.Error)
	}
	return &address, nil
}

// CreateAddress creates a new address for a user
func (s *AddressService) CreateAddress(userID uint, req *CreateAddressRequest) (*Address, error) {
	country := strings.ToUpper(req.Country)
	if !shippableCountries[country] {
		return nil, fmt.Errorf("country %s is not supported", req.Country)
	}

	address := Address{
		UserID:       userID,
		Type:         req.Type,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      country,
		Phone:        req.Phone,
		IsDefault:    req.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := s.unsetDefaultAddresses(tx, userID, req.Type); err != nil {
				return err
			}
		}
		if err := tx.Create(&address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// DeleteAddress deletes an address
func (s *AddressService) DeleteAddress(userID, addressID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// SetDefaultAddress sets an address as default for a specific type
func (s *AddressService) SetDefaultAddress(userID, addressID uint, addressType string) error {
	if addressType != "shipping" && addressType != "billing" {
		return fmt.Errorf("invalid address type: %s", addressType)
	}

	address, err := s.GetAddress(userID, addressID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.unsetDefaultAddresses(tx, userID, addressType); err != nil {
			return err
		}
		return tx.Model(address).Updates(map[string]interface{}{
			"is_default": true,
			"type":       addressType,
		}).Error
	})
}

// GetDefaultAddress gets the default address for a user and type
func (s *AddressService) GetDefaultAddress(userID uint, addressType string) (*Address, error) {
	var address Address
	result := s.db.Where("user_id = ? AND type = ? AND is_default = ?", userID, addressType, true).First(&address)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to retrieve default address: %w", result.Error)
	}
	return &address, nil
}

// unsetDefaultAddresses removes the default flag from all addresses of a type
func (s *AddressService) unsetDefaultAddresses(tx *gorm.DB, userID uint, addressType string) error {
	return tx.Model(&Address{}).
		Where("user_id = ? AND type = ? AND is_default = ?", userID, addressType, true).
		Update("is_default", false).Error
}
