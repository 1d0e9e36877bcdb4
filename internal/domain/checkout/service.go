// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/discount"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/currency"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
)

// Checkout error codes
const (
	ErrCodeCartEmpty        = "CART_EMPTY"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodePaymentDisabled  = "PAYMENT_DISABLED"
)

// CheckoutError is a typed error carrying a machine-readable code
type CheckoutError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// sessionGateway is the payment provider surface the checkout flow needs
type sessionGateway interface {
	CreateSession(ctx context.Context, input *payment.CreateSessionInput) (*payment.Session, error)
	RetrieveSession(ctx context.Context, id string) (*payment.Session, error)
}

// Service handles checkout session creation
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	logger      *logrus.Logger
	cartService *cart.Service
	discounts   *discount.Service
	gateway     sessionGateway
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger, gateway sessionGateway) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		logger:      logger,
		cartService: cart.NewService(db, redisClient, cfg),
		discounts:   discount.NewService(db, cfg),
		gateway:     gateway,
	}
}

// CreateSessionRequest represents a checkout session creation request
type CreateSessionRequest struct {
	Cart         *cart.Cart `json:"-"`
	UserID       *uint      `json:"-"`
	GuestEmail   string     `json:"guest_email"`
	DiscountCode string     `json:"discount_code"`
	Currency     string     `json:"currency"`
}

// CreateSessionResponse represents the created hosted checkout session
type CreateSessionResponse struct {
	SessionID     string `json:"session_id"`
	CheckoutURL   string `json:"checkout_url"`
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
}

// CreateSession validates the cart, reprices it from the catalog, applies an
// optional discount code, opens a hosted payment session and snapshots the
// cart server-side under the session ID.
func (s *Service) CreateSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	if !s.config.External.Stripe.Enabled {
		return nil, &CheckoutError{Code: ErrCodePaymentDisabled, Message: "payments are not configured"}
	}
	if req.Cart == nil || req.Cart.IsEmpty() {
		return nil, &CheckoutError{Code: ErrCodeCartEmpty, Message: "cart is empty"}
	}
	if req.UserID == nil && req.GuestEmail == "" {
		return nil, &CheckoutError{Code: ErrCodeValidationFailed, Message: "guest checkout requires an email address"}
	}
	if req.GuestEmail != "" {
		if _, err := mail.ParseAddress(req.GuestEmail); err != nil {
			return nil, &CheckoutError{Code: ErrCodeValidationFailed, Message: "invalid email address"}
		}
	}

	cur := currency.Currency(s.config.App.DefaultCurrency)
	if req.Currency != "" {
		parsed, err := currency.Parse(req.Currency)
		if err != nil {
			return nil, &CheckoutError{Code: ErrCodeValidationFailed, Message: err.Error()}
		}
		cur = parsed
	}

	// Reprice from the catalog. Client-supplied prices are never trusted.
	resolved, err := s.cartService.Resolve(req.Cart)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart: %w", err)
	}
	if resolved.IsEmpty() {
		return nil, &CheckoutError{Code: ErrCodeCartEmpty, Message: "no purchasable items in cart"}
	}

	subtotal := resolved.SubtotalCents()

	var applied *discount.Applied
	if req.DiscountCode != "" {
		applied, err = s.discounts.DiscountFor(req.DiscountCode, subtotal)
		if err != nil {
			if isDiscountValidationError(err) {
				return nil, &CheckoutError{Code: ErrCodeValidationFailed, Message: err.Error()}
			}
			return nil, fmt.Errorf("failed to validate discount: %w", err)
		}
	}

	var discountCents int64
	var discountCode string
	if applied != nil {
		discountCents = applied.AmountCents
		discountCode = applied.Code.Code
	}
	total := subtotal - discountCents

	lineItems, err := s.buildLineItems(resolved, cur)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"total_cents": fmt.Sprintf("%d", total),
	}
	if req.UserID != nil {
		metadata["user_id"] = fmt.Sprintf("%d", *req.UserID)
	} else {
		metadata["guest_email"] = req.GuestEmail
	}
	if discountCode != "" {
		metadata["discount_code"] = discountCode
		metadata["discount_cents"] = fmt.Sprintf("%d", discountCents)
	}

	sess, err := s.gateway.CreateSession(ctx, &payment.CreateSessionInput{
		Currency:      string(cur),
		CustomerEmail: req.GuestEmail,
		LineItems:     lineItems,
		DiscountCents: discountCents,
		DiscountName:  discountCode,
		Metadata:      metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	snapshot := &AbandonedCheckout{
		PaymentSessionID: sess.ID,
		UserID:           req.UserID,
		GuestEmail:       req.GuestEmail,
		Items:            resolved.Lines,
		SubtotalCents:    subtotal,
		DiscountCode:     discountCode,
		DiscountCents:    discountCents,
		Currency:         string(cur),
	}
	if err := s.db.Create(snapshot).Error; err != nil {
		return nil, fmt.Errorf("failed to persist checkout snapshot: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":  sess.ID,
		"subtotal":    subtotal,
		"discount":    discountCents,
		"total":       total,
		"currency":    cur,
		"guest_email": req.GuestEmail,
	}).Info("Checkout session created")

	return &CreateSessionResponse{
		SessionID:     sess.ID,
		CheckoutURL:   sess.URL,
		SubtotalCents: subtotal,
		DiscountCents: discountCents,
		TotalCents:    total,
		Currency:      string(cur),
	}, nil
}

// buildLineItems converts resolved cart lines into display line items in the
// shopper's currency
func (s *Service) buildLineItems(resolved *cart.Cart, cur currency.Currency) ([]payment.LineItem, error) {
	base := currency.Currency(s.config.App.DefaultCurrency)

	variantIDs := make([]uint, 0, len(resolved.Lines))
	for _, line := range resolved.Lines {
		variantIDs = append(variantIDs, line.VariantID)
	}

	var variants []product.ProductVariant
	if err := s.db.Where("id IN ?", variantIDs).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	names := make(map[uint]string, len(variants))
	for _, v := range variants {
		names[v.ID] = v.Name
	}

	items := make([]payment.LineItem, 0, len(resolved.Lines))
	for _, line := range resolved.Lines {
		unit := line.UnitPriceCents
		if cur != base {
			converted, err := currency.Convert(unit, base, cur)
			if err != nil {
				return nil, &CheckoutError{Code: ErrCodeValidationFailed, Message: err.Error()}
			}
			unit = converted
		}
		name := names[line.VariantID]
		if name == "" {
			name = fmt.Sprintf("Item #%d", line.VariantID)
		}
		items = append(items, payment.LineItem{
			Name:            name,
			UnitAmountCents: unit,
			Quantity:        int64(line.Quantity),
		})
	}
	return items, nil
}

// GetSnapshot loads the checkout snapshot for a payment session
func (s *Service) GetSnapshot(sessionID string) (*AbandonedCheckout, error) {
	var snapshot AbandonedCheckout
	if err := s.db.Where("payment_session_id = ?", sessionID).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load checkout snapshot: %w", err)
	}
	return &snapshot, nil
}

func isDiscountValidationError(err error) bool {
	return errors.Is(err, discount.ErrCodeNotFound) ||
		errors.Is(err, discount.ErrCodeInactive) ||
		errors.Is(err, discount.ErrCodeExpired) ||
		errors.Is(err, discount.ErrExhausted) ||
		errors.Is(err, discount.ErrMinSubtotal)
}
