package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/gallery"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// GalleryHandler handles community gallery endpoints
type GalleryHandler struct {
	galleryService *gallery.Service
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *GalleryHandler {
	return &GalleryHandler{
		galleryService: gallery.NewService(db, cfg, logger),
	}
}

// GetItems returns active gallery items with their vote counts
func (h *GalleryHandler) GetItems(c *gin.Context) {
	items, err := h.galleryService.ListItems()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve gallery"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Gallery retrieved successfully",
		"data":    items,
	})
}

// GetItem returns a single gallery item with its vote count
func (h *GalleryHandler) GetItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery item ID"})
		return
	}

	item, err := h.galleryService.GetItem(uint(itemID))
	if err != nil {
		if errors.Is(err, gallery.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gallery item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve gallery item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Gallery item retrieved successfully",
		"data":    item,
	})
}

// Vote records a vote for a gallery item. Authenticated users vote under
// their account; anonymous visitors vote under a browser fingerprint.
func (h *GalleryHandler) Vote(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery item ID"})
		return
	}

	var voterKey string
	if userID, authed := middleware.GetUserIDFromContext(c); authed {
		voterKey = gallery.UserVoterKey(userID)
	} else {
		var req struct {
			Fingerprint string `json:"fingerprint"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.Fingerprint == "" {
			req.Fingerprint = c.GetHeader("X-Client-Fingerprint")
		}
		if req.Fingerprint != "" {
			voterKey = gallery.FingerprintVoterKey(req.Fingerprint)
		}
	}

	if err := h.galleryService.Vote(uint(itemID), voterKey); err != nil {
		switch {
		case errors.Is(err, gallery.ErrInvalidVoter):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Vote requires a signed-in user or a fingerprint"})
		case errors.Is(err, gallery.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Gallery item not found"})
		case errors.Is(err, gallery.ErrAlreadyVoted):
			c.JSON(http.StatusConflict, gin.H{"error": "You have already voted for this item today"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded successfully"})
}

// AdminCreateItem adds an item to the gallery
func (h *GalleryHandler) AdminCreateItem(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url" binding:"required,url"`
		UserID      *uint  `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &gallery.GalleryItem{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		UserID:      req.UserID,
		IsActive:    true,
	}
	if err := h.galleryService.CreateItem(item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create gallery item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Gallery item created successfully",
		"data":    item,
	})
}

// AdminDeleteItem removes an item from the gallery
func (h *GalleryHandler) AdminDeleteItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery item ID"})
		return
	}

	if err := h.galleryService.DeleteItem(uint(itemID)); err != nil {
		if errors.Is(err, gallery.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gallery item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete gallery item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gallery item deleted successfully"})
}
