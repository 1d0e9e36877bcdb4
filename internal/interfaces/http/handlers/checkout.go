// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout session creation and finalization
type CheckoutHandler struct {
	checkoutService *checkout.Service
	cartService     *cart.Service
	finalizer       *checkout.Finalizer
	config          *config.Config
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger, checkoutService *checkout.Service, finalizer *checkout.Finalizer) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartService:     cart.NewService(db, redisClient, cfg),
		finalizer:       finalizer,
		config:          cfg,
		logger:          logger,
	}
}

type createSessionBody struct {
	GuestEmail   string `json:"guest_email" binding:"omitempty,email"`
	DiscountCode string `json:"discount_code"`
	Currency     string `json:"currency"`
}

// CreateSession opens a hosted payment session for the current cart
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var body createSessionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	req := &checkout.CreateSessionRequest{
		GuestEmail:   body.GuestEmail,
		DiscountCode: body.DiscountCode,
		Currency:     body.Currency,
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		req.UserID = &userID
		userCart, err := h.cartService.GetUserCart(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load cart",
			})
			return
		}
		req.Cart = userCart
		if email, ok := middleware.GetUserEmailFromContext(c); ok && req.GuestEmail == "" {
			req.GuestEmail = email
		}
	} else {
		cookieValue, err := c.Cookie(h.config.Security.CartCookieName)
		if err != nil {
			req.Cart = &cart.Cart{}
		} else if decoded, err := cart.DecodeCookie(cookieValue); err == nil {
			req.Cart = decoded
		} else {
			req.Cart = &cart.Cart{}
		}
	}

	response, err := h.checkoutService.CreateSession(c.Request.Context(), req)
	if err != nil {
		var checkoutErr *checkout.CheckoutError
		if errors.As(err, &checkoutErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": checkoutErr.Message,
				"code":  checkoutErr.Code,
			})
			return
		}
		h.logger.WithError(err).Error("Checkout session creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create checkout session",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Checkout session created",
		"data":    response,
	})
}

type confirmBody struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Confirm finalizes the order for a completed payment session. The endpoint
// is idempotent: repeated calls for the same session return the same order.
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var body confirmBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.finalizer.Finalize(c.Request.Context(), body.SessionID)
	if err != nil {
		h.logger.WithError(err).WithField("session_id", body.SessionID).Error("Checkout finalize failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to finalize checkout",
		})
		return
	}

	status := http.StatusOK
	switch result.Code {
	case checkout.ResultPaymentIncomplete:
		// Client may retry after the payment settles
		status = http.StatusAccepted
	case checkout.ResultSnapshotMissing:
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"data": result,
	})
}
