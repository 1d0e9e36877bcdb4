// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Service handles cart business logic. Guest carts are carried in the
// client cookie and only pass through here for price resolution; user carts
// persist in Postgres with a Redis read cache.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

const userCartCacheTTL = 24 * time.Hour

// Resolve reprices every cart line from the current variant price. Client
// supplied prices are never trusted. Lines whose variant no longer exists or
// is inactive are dropped.
func (s *Service) Resolve(c *Cart) (*Cart, error) {
	resolved := &Cart{}
	for _, line := range c.Lines {
		var variant product.ProductVariant
		result := s.db.Where("id = ? AND is_active = ?", line.VariantID, true).First(&variant)
		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				continue
			}
			return nil, fmt.Errorf("failed to resolve variant %d: %w", line.VariantID, result.Error)
		}

		line.ProductID = variant.ProductID
		line.UnitPriceCents = variant.PriceCents
		if err := resolved.Add(line); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// GetUserCart loads an authenticated user's cart
func (s *Service) GetUserCart(ctx context.Context, userID uint) (*Cart, error) {
	if cached := s.cachedCart(ctx, userID); cached != nil {
		return cached, nil
	}

	var items []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("created_at asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
	}

	c := &Cart{}
	for _, item := range items {
		c.Lines = append(c.Lines, Line{
			VariantID:     item.VariantID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			Customization: item.Customization,
		})
	}

	resolved, err := s.Resolve(c)
	if err != nil {
		return nil, err
	}

	s.cacheCart(ctx, userID, resolved)
	return resolved, nil
}

// AddToUserCart adds a line to an authenticated user's cart, merging into an
// existing row when the variant and customization match.
func (s *Service) AddToUserCart(ctx context.Context, userID uint, line Line) (*Cart, error) {
	if line.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	var variant product.ProductVariant
	if err := s.db.Where("id = ? AND is_active = ?", line.VariantID, true).First(&variant).Error; err != nil {
		return nil, fmt.Errorf("product variant not found or inactive")
	}

	key := CustomizationKey(line.Customization)

	var items []CartItem
	if err := s.db.Where("user_id = ? AND variant_id = ?", userID, line.VariantID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing cart items: %w", err)
	}

	merged := false
	for i := range items {
		if CustomizationKey(items[i].Customization) == key {
			items[i].Quantity += line.Quantity
			if err := s.db.Save(&items[i]).Error; err != nil {
				return nil, fmt.Errorf("failed to update cart item: %w", err)
			}
			merged = true
			break
		}
	}

	if !merged {
		newItem := CartItem{
			UserID:        userID,
			ProductID:     variant.ProductID,
			VariantID:     line.VariantID,
			Quantity:      line.Quantity,
			Customization: line.Customization,
		}
		if err := s.db.Create(&newItem).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	}

	s.invalidateCache(ctx, userID)
	return s.GetUserCart(ctx, userID)
}

// UpdateUserCartItem sets the quantity of a matching line; zero removes it.
func (s *Service) UpdateUserCartItem(ctx context.Context, userID uint, variantID uint, customization map[string]string, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	key := CustomizationKey(customization)

	var items []CartItem
	if err := s.db.Where("user_id = ? AND variant_id = ?", userID, variantID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart items: %w", err)
	}

	for i := range items {
		if CustomizationKey(items[i].Customization) != key {
			continue
		}
		if quantity == 0 {
			if err := s.db.Delete(&items[i]).Error; err != nil {
				return nil, fmt.Errorf("failed to remove cart item: %w", err)
			}
		} else {
			items[i].Quantity = quantity
			if err := s.db.Save(&items[i]).Error; err != nil {
				return nil, fmt.Errorf("failed to update cart item: %w", err)
			}
		}
		s.invalidateCache(ctx, userID)
		return s.GetUserCart(ctx, userID)
	}

	return nil, fmt.Errorf("item not found in cart")
}

// ClearUserCart removes all items from an authenticated user's cart
func (s *Service) ClearUserCart(ctx context.Context, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// MergeGuestCart merges a cookie cart into the user's persisted cart on
// login, then the cookie is cleared by the handler.
func (s *Service) MergeGuestCart(ctx context.Context, userID uint, guest *Cart) error {
	for _, line := range guest.Lines {
		if _, err := s.AddToUserCart(ctx, userID, line); err != nil {
			return fmt.Errorf("failed to merge guest cart line: %w", err)
		}
	}
	return nil
}

// Cache helpers

func (s *Service) cacheKey(userID uint) string {
	return fmt.Sprintf("cart:user:%d", userID)
}

func (s *Service) cachedCart(ctx context.Context, userID uint) *Cart {
	data, err := s.redisClient.Get(ctx, s.cacheKey(userID)).Result()
	if err != nil {
		return nil
	}
	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil
	}
	return &c
}

func (s *Service) cacheCart(ctx context.Context, userID uint, c *Cart) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	s.redisClient.Set(ctx, s.cacheKey(userID), data, userCartCacheTTL)
}

func (s *Service) invalidateCache(ctx context.Context, userID uint) {
	s.redisClient.Del(ctx, s.cacheKey(userID))
}
