// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
)

// InventoryHandler handles admin inventory endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventory.NewService(db, cfg, logger),
		config:           cfg,
	}
}

// GetStock returns the stock level for a variant
func (h *InventoryHandler) GetStock(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("variantId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variant ID",
		})
		return
	}

	quantity, err := h.inventoryService.GetStock(uint(variantID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load stock",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"variant_id": variantID,
			"quantity":   quantity,
		},
	})
}

// SetStock sets the absolute stock level for a variant
func (h *InventoryHandler) SetStock(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("variantId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variant ID",
		})
		return
	}

	var body struct {
		Quantity  int    `json:"quantity" binding:"min=0"`
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.inventoryService.SetStock(uint(variantID), body.Quantity, inventory.ReasonAdjustment, body.Reference); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to set stock",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock updated",
		"data": gin.H{
			"variant_id": variantID,
			"quantity":   body.Quantity,
		},
	})
}

// AdjustStock applies a relative stock adjustment to a variant
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("variantId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variant ID",
		})
		return
	}

	var body struct {
		Delta     int    `json:"delta" binding:"required"`
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	record, err := h.inventoryService.Adjust(uint(variantID), body.Delta, body.Reference)
	if err != nil {
		if errors.Is(err, inventory.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Inventory record not found",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted",
		"data":    record,
	})
}
