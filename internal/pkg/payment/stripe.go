// internal/pkg/payment/stripe.go
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/coupon"
	"github.com/your-org/storefront-backend/internal/config"
)

// Session statuses as surfaced to the rest of the system.
const (
	StatusOpen     = "open"
	StatusComplete = "complete"
	StatusExpired  = "expired"

	PaymentStatusPaid = "paid"
)

// Address is a postal address captured by the hosted payment page
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Session is the slice of the hosted checkout session the storefront
// consumes. Shipping details are preferred over customer details when both
// carry an address.
type Session struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	Currency        string
	AmountTotal     int64
	CustomerName    string
	CustomerEmail   string
	ShippingName    string
	ShippingAddress *Address
	BillingAddress  *Address
	Metadata        map[string]string
}

// LineItem is one display line on the hosted payment page
type LineItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

// CreateSessionInput carries everything needed to start a hosted checkout
type CreateSessionInput struct {
	Currency      string
	CustomerEmail string
	LineItems     []LineItem
	DiscountCents int64
	DiscountName  string
	Metadata      map[string]string
}

// StripeGateway wraps the Stripe hosted checkout API
type StripeGateway struct {
	config config.StripeConfig
}

// NewStripeGateway creates a new gateway and installs the API key
func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{config: cfg}
}

var shippingCountries = []string{"CH", "DE", "AT", "FR", "IT", "US", "GB"}

// CreateSession starts a hosted checkout session and returns its redirect URL
func (g *StripeGateway) CreateSession(ctx context.Context, input *CreateSessionInput) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(g.config.SuccessURL),
		CancelURL:     stripe.String(g.config.CancelURL),
		CustomerEmail: stripe.String(input.CustomerEmail),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(shippingCountries),
		},
	}
	params.Context = ctx

	for _, item := range input.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(input.Currency),
				UnitAmount: stripe.Int64(item.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	if input.DiscountCents > 0 {
		c, err := coupon.New(&stripe.CouponParams{
			AmountOff: stripe.Int64(input.DiscountCents),
			Currency:  stripe.String(input.Currency),
			Duration:  stripe.String(string(stripe.CouponDurationOnce)),
			Name:      stripe.String(input.DiscountName),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create discount coupon: %w", err)
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(c.ID)},
		}
	}

	for key, value := range input.Metadata {
		params.AddMetadata(key, value)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return mapSession(sess), nil
}

// RetrieveSession fetches a checkout session by id
func (g *StripeGateway) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	return mapSession(sess), nil
}

func mapSession(sess *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		Currency:      string(sess.Currency),
		AmountTotal:   sess.AmountTotal,
		Metadata:      sess.Metadata,
	}

	if sess.CustomerDetails != nil {
		out.CustomerName = sess.CustomerDetails.Name
		out.CustomerEmail = sess.CustomerDetails.Email
		out.BillingAddress = mapAddress(sess.CustomerDetails.Address)
	}

	if sess.ShippingDetails != nil {
		out.ShippingName = sess.ShippingDetails.Name
		out.ShippingAddress = mapAddress(sess.ShippingDetails.Address)
	}

	return out
}

func mapAddress(addr *stripe.Address) *Address {
	if addr == nil || addr.Line1 == "" {
		return nil
	}
	return &Address{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}
