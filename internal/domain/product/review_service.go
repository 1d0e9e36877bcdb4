package product

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when a product cannot be found
	ErrProductNotFound = errors.New("product not found")
	// ErrReviewExists is returned when a user already reviewed a product
	ErrReviewExists = errors.New("review already exists for this product")
	// ErrReviewNotFound is returned when a review cannot be found
	ErrReviewNotFound = errors.New("review not found")
)

// PurchaseVerifier reports whether a user received a given product.
// Satisfied by the order service.
type PurchaseVerifier interface {
	HasDeliveredOrderForProduct(userID uint, productID uint) (bool, error)
}

// ReviewService handles product review operations
type ReviewService struct {
	db       *gorm.DB
	verifier PurchaseVerifier
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, verifier PurchaseVerifier) *ReviewService {
	return &ReviewService{db: db, verifier: verifier}
}

// CreateReviewRequest represents review submission data
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=255"`
	Content string `json:"content" binding:"required,max=5000"`
}

// CreateReview submits a review for a product. Each user may review a
// product once. Reviews by users with a delivered order for the product
// are marked as verified purchases.
func (s *ReviewService) CreateReview(userID, productID uint, req *CreateReviewRequest) (*ProductReview, error) {
	var product Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var count int64
	if err := s.db.Model(&ProductReview{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if count > 0 {
		return nil, ErrReviewExists
	}

	verified := false
	if s.verifier != nil {
		v, err := s.verifier.HasDeliveredOrderForProduct(userID, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify purchase: %w", err)
		}
		verified = v
	}

	review := &ProductReview{
		ProductID:  productID,
		UserID:     userID,
		Rating:     req.Rating,
		Title:      req.Title,
		Content:    req.Content,
		IsVerified: verified,
	}
	if err := s.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// GetProductReviews returns approved reviews for a product with pagination
func (s *ReviewService) GetProductReviews(productID uint, page, limit int) ([]ProductReview, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&ProductReview{}).
		Where("product_id = ? AND is_approved = ?", productID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []ProductReview
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	return reviews, total, nil
}

// GetPendingReviews returns reviews awaiting moderation
func (s *ReviewService) GetPendingReviews(page, limit int) ([]ProductReview, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&ProductReview{}).Where("is_approved = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending reviews: %w", err)
	}

	var reviews []ProductReview
	if err := query.Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve pending reviews: %w", err)
	}

	return reviews, total, nil
}

// ApproveReview marks a review as approved so it appears publicly
func (s *ReviewService) ApproveReview(reviewID uint) (*ProductReview, error) {
	var review ProductReview
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}

	if !review.IsApproved {
		review.IsApproved = true
		if err := s.db.Model(&review).Update("is_approved", true).Error; err != nil {
			return nil, fmt.Errorf("failed to approve review: %w", err)
		}
	}

	return &review, nil
}

// DeleteReview removes a review
func (s *ReviewService) DeleteReview(reviewID uint) error {
	result := s.db.Delete(&ProductReview{}, reviewID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
