// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

const cartCookieMaxAge = 30 * 24 * 60 * 60 // 30 days

// CartHandler handles cart endpoints for guests (cookie) and users (DB)
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg),
		config:      cfg,
	}
}

type cartLineRequest struct {
	VariantID     uint              `json:"variant_id" binding:"required"`
	Quantity      int               `json:"quantity"`
	Customization map[string]string `json:"customization,omitempty"`
}

// GetCart returns the current cart with authoritative prices
func (h *CartHandler) GetCart(c *gin.Context) {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		userCart, err := h.cartService.GetUserCart(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load cart",
			})
			return
		}
		h.respondCart(c, userCart)
		return
	}

	guestCart := h.readCookieCart(c)
	resolved, err := h.cartService.Resolve(guestCart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve cart",
		})
		return
	}
	h.respondCart(c, resolved)
}

// AddItem adds a line to the cart, merging identical lines
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity must be at least 1",
		})
		return
	}

	line := cart.Line{
		VariantID:     req.VariantID,
		Quantity:      req.Quantity,
		Customization: req.Customization,
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		userCart, err := h.cartService.AddToUserCart(c.Request.Context(), userID, line)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.respondCart(c, userCart)
		return
	}

	guestCart := h.readCookieCart(c)
	if err := guestCart.Add(line); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	resolved, err := h.cartService.Resolve(guestCart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve cart",
		})
		return
	}

	h.writeCookieCart(c, resolved)
	h.respondCart(c, resolved)
}

// UpdateItem changes a line's quantity; zero removes the line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		userCart, err := h.cartService.UpdateUserCartItem(c.Request.Context(), userID, req.VariantID, req.Customization, req.Quantity)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.respondCart(c, userCart)
		return
	}

	guestCart := h.readCookieCart(c)
	if err := guestCart.UpdateQuantity(req.VariantID, req.Customization, req.Quantity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	resolved, err := h.cartService.Resolve(guestCart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve cart",
		})
		return
	}

	h.writeCookieCart(c, resolved)
	h.respondCart(c, resolved)
}

// RemoveItem removes a line identified by variant and customization
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		userCart, err := h.cartService.UpdateUserCartItem(c.Request.Context(), userID, req.VariantID, req.Customization, 0)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		h.respondCart(c, userCart)
		return
	}

	guestCart := h.readCookieCart(c)
	if err := guestCart.Remove(req.VariantID, req.Customization); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	resolved, err := h.cartService.Resolve(guestCart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve cart",
		})
		return
	}

	h.writeCookieCart(c, resolved)
	h.respondCart(c, resolved)
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		if err := h.cartService.ClearUserCart(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to clear cart",
			})
			return
		}
		h.respondCart(c, &cart.Cart{})
		return
	}

	empty := &cart.Cart{}
	h.writeCookieCart(c, empty)
	h.respondCart(c, empty)
}

// MergeCart folds the guest cookie cart into the user's cart after login
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	guestCart := h.readCookieCart(c)
	if err := h.cartService.MergeGuestCart(c.Request.Context(), userID, guestCart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge cart",
		})
		return
	}

	// Drop the guest cookie once it is merged
	c.SetCookie(h.config.Security.CartCookieName, "", -1, "/", "", false, true)

	userCart, err := h.cartService.GetUserCart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return
	}
	h.respondCart(c, userCart)
}

func (h *CartHandler) respondCart(c *gin.Context, resolved *cart.Cart) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"lines":          resolved.Lines,
			"subtotal_cents": resolved.SubtotalCents(),
			"total_quantity": resolved.TotalQuantity(),
		},
	})
}

func (h *CartHandler) readCookieCart(c *gin.Context) *cart.Cart {
	value, err := c.Cookie(h.config.Security.CartCookieName)
	if err != nil {
		return &cart.Cart{}
	}

	decoded, err := cart.DecodeCookie(value)
	if err != nil {
		// Malformed cookies are treated as an empty cart
		return &cart.Cart{}
	}
	return decoded
}

func (h *CartHandler) writeCookieCart(c *gin.Context, resolved *cart.Cart) {
	encoded, err := cart.EncodeCookie(resolved)
	if err != nil {
		return
	}
	c.SetCookie(h.config.Security.CartCookieName, encoded, cartCookieMaxAge, "/", "", false, true)
}
