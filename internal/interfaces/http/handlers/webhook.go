// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
)

// WebhookHandler handles payment provider webhooks
type WebhookHandler struct {
	config    *config.Config
	logger    *logrus.Logger
	finalizer *checkout.Finalizer
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(cfg *config.Config, logger *logrus.Logger, finalizer *checkout.Finalizer) *WebhookHandler {
	return &WebhookHandler{
		config:    cfg,
		logger:    logger,
		finalizer: finalizer,
	}
}

// Stripe verifies a Stripe webhook and finalizes completed checkouts. The
// finalizer is idempotent, so webhook delivery and the client confirm call
// can both fire for the same session.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.config.External.Stripe.WebhookSecret)
	if err != nil {
		h.logger.WithError(err).Warn("Stripe webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid webhook signature",
		})
		return
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			h.logger.WithError(err).Error("Failed to parse checkout session from webhook")
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Malformed event payload",
			})
			return
		}

		result, err := h.finalizer.Finalize(c.Request.Context(), session.ID)
		if err != nil {
			h.logger.WithError(err).WithField("session_id", session.ID).Error("Webhook finalize failed")
			// Non-2xx makes Stripe retry the delivery
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to finalize checkout",
			})
			return
		}

		h.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"result":     result.Code,
		}).Info("Stripe webhook processed")

	default:
		// Unhandled event types are acknowledged so Stripe stops retrying
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
