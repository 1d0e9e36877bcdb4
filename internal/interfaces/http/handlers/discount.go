package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/discount"
)

// DiscountHandler handles admin discount code management
type DiscountHandler struct {
	discountService *discount.Service
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(db *gorm.DB, cfg *config.Config) *DiscountHandler {
	return &DiscountHandler{
		discountService: discount.NewService(db, cfg),
	}
}

type createDiscountRequest struct {
	Code             string     `json:"code" binding:"required,max=50"`
	Kind             string     `json:"kind" binding:"required,oneof=percentage fixed"`
	Value            int64      `json:"value" binding:"required,min=1"`
	MinSubtotalCents int64      `json:"min_subtotal_cents" binding:"min=0"`
	MaxUses          int        `json:"max_uses" binding:"min=0"`
	StartsAt         *time.Time `json:"starts_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
}

// AdminCreateCode creates a discount code
func (h *DiscountHandler) AdminCreateCode(c *gin.Context) {
	var req createDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dc := &discount.DiscountCode{
		Code:             req.Code,
		Kind:             req.Kind,
		Value:            req.Value,
		MinSubtotalCents: req.MinSubtotalCents,
		MaxUses:          req.MaxUses,
		StartsAt:         req.StartsAt,
		ExpiresAt:        req.ExpiresAt,
		IsActive:         true,
	}
	if err := h.discountService.CreateCode(dc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Discount code created successfully",
		"data":    dc,
	})
}

// AdminListCodes lists all discount codes
func (h *DiscountHandler) AdminListCodes(c *gin.Context) {
	codes, err := h.discountService.ListCodes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve discount codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount codes retrieved successfully",
		"data":    codes,
	})
}

// AdminDeactivateCode disables a discount code
func (h *DiscountHandler) AdminDeactivateCode(c *gin.Context) {
	codeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid discount code ID"})
		return
	}

	if err := h.discountService.DeactivateCode(uint(codeID)); err != nil {
		if errors.Is(err, discount.ErrCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Discount code not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate discount code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Discount code deactivated successfully"})
}
