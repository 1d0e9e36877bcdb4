package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/printful"
)

// SyncHandler triggers Printful catalog synchronization
type SyncHandler struct {
	syncService *product.SyncService
	logger      *logrus.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *SyncHandler {
	productService := product.NewService(db, cfg)
	inventoryService := inventory.NewService(db, cfg, logger)
	store := product.NewSyncStore(db, productService, inventoryService)
	client := printful.NewClient(cfg.External.Printful)
	return &SyncHandler{
		syncService: product.NewSyncService(cfg, logger, client, store),
		logger:      logger,
	}
}

// AdminSyncPrintful runs a catalog sync against the Printful store.
// The run is synchronous; large catalogs can take a while.
func (h *SyncHandler) AdminSyncPrintful(c *gin.Context) {
	var req struct {
		OnlyLatest bool `json:"only_latest"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.syncService.Sync(c.Request.Context(), product.SyncOptions{OnlyLatest: req.OnlyLatest})
	if err != nil {
		h.logger.WithError(err).Error("Catalog sync failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Catalog sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": result.Message,
		"data":    result,
	})
}
