// internal/domain/product/service.go
package product

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
}

// ProductListResponse represents paginated products
type ProductListResponse struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// CreateProductRequest represents admin product creation data
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	Slug        string `json:"slug"`
}

// GetProducts retrieves active products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Where("is_active = ?", true).
		Preload("Category").
		Preload("Images").
		Preload("Variants", "is_active = ?", true)

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		like := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	sortBy := req.SortBy
	if sortBy != "created_at" && sortBy != "name" && sortBy != "updated_at" {
		sortBy = "created_at"
	}
	sortOrder := req.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ProductListResponse{
		Products:   products,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.
		Preload("Category").
		Preload("Images").
		Preload("Variants", "is_active = ?", true).
		Where("id = ?", id).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetProductBySlug retrieves a single product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var prod Product
	result := s.db.
		Preload("Category").
		Preload("Images").
		Preload("Variants", "is_active = ?", true).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetCategories retrieves active categories ordered for display
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).
		Order("sort_order asc, name asc").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateProduct creates a product from an admin request
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	slug, err := s.UniqueSlug(slug)
	if err != nil {
		return nil, err
	}

	prod := Product{
		Slug:        slug,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsActive:    true,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &prod, nil
}

// UpdateProductRequest represents admin product update data
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *uint   `json:"category_id"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateProduct applies an admin update to a product
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(prod).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a product. Products referenced by orders are
// never hard-deleted.
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Model(&Product{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return s.db.Delete(&Product{}, id).Error
}

// GetVariant retrieves a single active variant by ID
func (s *Service) GetVariant(id uint) (*ProductVariant, error) {
	var variant ProductVariant
	result := s.db.Where("id = ? AND is_active = ?", id, true).First(&variant)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product variant not found")
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", result.Error)
	}
	return &variant, nil
}

// UniqueSlug resolves slug collisions by suffixing -1, -2, ... until the
// slug is free. Soft-deleted rows still hold their slug.
func (s *Service) UniqueSlug(base string) (string, error) {
	slug := base
	for suffix := 1; ; suffix++ {
		var count int64
		if err := s.db.Unscoped().Model(&Product{}).
			Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, suffix)
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a display name into a URL slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
