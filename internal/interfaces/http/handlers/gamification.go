package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/gamification"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// GamificationHandler exposes the XP and badge profile
type GamificationHandler struct {
	gamificationService *gamification.Service
}

// NewGamificationHandler creates a new gamification handler
func NewGamificationHandler(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *GamificationHandler {
	return &GamificationHandler{
		gamificationService: gamification.NewService(db, cfg, logger),
	}
}

// GetProfile returns the authenticated user's XP total, tier and badges
func (h *GamificationHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	profile, err := h.gamificationService.GetProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}
