// internal/domain/checkout/finalizer.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
	"github.com/your-org/storefront-backend/internal/pkg/printful"
)

// Finalize result codes
const (
	ResultFinalized         = "FINALIZED"
	ResultAlreadyFinalized  = "ALREADY_FINALIZED"
	ResultPaymentIncomplete = "PAYMENT_NOT_COMPLETE"
	ResultSnapshotMissing   = "CHECKOUT_SNAPSHOT_MISSING"
)

// ErrDuplicateSession signals that an order for the payment session already
// exists. The unique index on payment_session_id raises it under concurrency.
var ErrDuplicateSession = errors.New("order already exists for payment session")

// FinalizeResult is the outcome of a finalization attempt
type FinalizeResult struct {
	Code    string         `json:"code"`
	Order   *order.Order   `json:"order,omitempty"`
	Effects []EffectResult `json:"effects,omitempty"`
}

// EffectResult records one post-order side effect. Effect failures never
// fail the order.
type EffectResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Store is the persistence surface of the finalizer
type Store interface {
	OrderByPaymentSession(sessionID string) (*order.Order, error)
	Snapshot(sessionID string) (*AbandonedCheckout, error)
	VariantByID(id uint) (*product.ProductVariant, error)
	// PersistOrder creates the order, its items and the inventory decrements
	// in one transaction. It returns the oversold variant IDs, or
	// ErrDuplicateSession when the payment session was already finalized.
	PersistOrder(o *order.Order, quantities map[uint]int) ([]uint, error)
	StorePrintfulOrderID(o *order.Order, printfulID int64) error
	DeleteSnapshot(sessionID string) error
	RecordDiscountUse(code string) error
}

// sessionRetriever loads a payment session from the provider
type sessionRetriever interface {
	RetrieveSession(ctx context.Context, id string) (*payment.Session, error)
}

// fulfillmentDispatcher submits orders to the print-on-demand provider
type fulfillmentDispatcher interface {
	CreateOrder(ctx context.Context, req *printful.OrderRequest) (*printful.OrderResult, error)
}

// orderMailer sends the order confirmation email
type orderMailer interface {
	SendOrderConfirmation(o *order.Order) error
}

// purchaseAwarder credits gamification progress for a purchase
type purchaseAwarder interface {
	AwardPurchase(userID uint, orderID string, totalCents int64) error
	AwardReferralForFirstOrder(referredID uint) error
}

// Finalizer turns a completed payment session into a persisted order exactly
// once, then runs the non-critical side effects.
type Finalizer struct {
	config    *config.Config
	logger    *logrus.Logger
	store     Store
	gateway   sessionRetriever
	fulfiller fulfillmentDispatcher
	mailer    orderMailer
	awarder   purchaseAwarder
}

// NewFinalizer creates a new checkout finalizer. The mailer and awarder may
// be nil; their effects are skipped.
func NewFinalizer(cfg *config.Config, logger *logrus.Logger, store Store, gateway sessionRetriever, fulfiller fulfillmentDispatcher, mailer orderMailer, awarder purchaseAwarder) *Finalizer {
	return &Finalizer{
		config:    cfg,
		logger:    logger,
		store:     store,
		gateway:   gateway,
		fulfiller: fulfiller,
		mailer:    mailer,
		awarder:   awarder,
	}
}

// Finalize converts a paid session into an order. It is safe to call any
// number of times for the same session: the webhook and the success-page
// confirm endpoint both funnel through here.
func (f *Finalizer) Finalize(ctx context.Context, sessionID string) (*FinalizeResult, error) {
	// Fast path: the session was already finalized.
	if existing, err := f.store.OrderByPaymentSession(sessionID); err != nil {
		return nil, fmt.Errorf("failed to check for existing order: %w", err)
	} else if existing != nil {
		return &FinalizeResult{Code: ResultAlreadyFinalized, Order: existing}, nil
	}

	sess, err := f.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment session: %w", err)
	}
	if sess.PaymentStatus != payment.PaymentStatusPaid {
		return &FinalizeResult{Code: ResultPaymentIncomplete}, nil
	}

	snapshot, err := f.store.Snapshot(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout snapshot: %w", err)
	}
	if snapshot == nil {
		f.logger.WithField("session_id", sessionID).Error("Paid session has no checkout snapshot")
		return &FinalizeResult{Code: ResultSnapshotMissing}, nil
	}

	o := f.buildOrder(sess, snapshot)

	quantities := make(map[uint]int, len(snapshot.Items))
	for _, line := range snapshot.Items {
		quantities[line.VariantID] += line.Quantity
	}

	oversold, err := f.store.PersistOrder(o, quantities)
	if err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			existing, lookupErr := f.store.OrderByPaymentSession(sessionID)
			if lookupErr != nil || existing == nil {
				return nil, fmt.Errorf("failed to load concurrently finalized order: %w", lookupErr)
			}
			return &FinalizeResult{Code: ResultAlreadyFinalized, Order: existing}, nil
		}
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	for _, variantID := range oversold {
		f.logger.WithFields(logrus.Fields{
			"order_id":   o.ID,
			"variant_id": variantID,
		}).Warn("Order sold more units than were in stock")
	}

	// Everything past this point is best-effort. The order exists.
	if err := f.store.DeleteSnapshot(sessionID); err != nil {
		f.logger.WithError(err).WithField("session_id", sessionID).Warn("Failed to delete checkout snapshot")
	}
	if o.DiscountCode != "" {
		if err := f.store.RecordDiscountUse(o.DiscountCode); err != nil {
			f.logger.WithError(err).WithField("code", o.DiscountCode).Warn("Failed to record discount use")
		}
	}

	effects := f.runEffects(ctx, o)

	f.logger.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"session_id":   sessionID,
		"total_cents":  o.TotalCents,
	}).Info("Order finalized")

	return &FinalizeResult{Code: ResultFinalized, Order: o, Effects: effects}, nil
}

// buildOrder assembles the order from the snapshot contents and the payment
// session's customer details. Prices come from the snapshot, never the client.
func (f *Finalizer) buildOrder(sess *payment.Session, snapshot *AbandonedCheckout) *order.Order {
	o := &order.Order{
		UserID:           snapshot.UserID,
		Status:           order.OrderStatusPaid,
		PaymentSessionID: sess.ID,
		SubtotalCents:    snapshot.SubtotalCents,
		DiscountCents:    snapshot.DiscountCents,
		TotalCents:       snapshot.TotalCents(),
		Currency:         snapshot.Currency,
		DiscountCode:     snapshot.DiscountCode,
	}
	o.ContactEmail = snapshot.GuestEmail
	if o.ContactEmail == "" {
		o.ContactEmail = sess.CustomerEmail
	}
	// GuestEmail doubles as the guest marker, so it stays empty on account orders.
	if o.UserID == nil {
		o.GuestEmail = o.ContactEmail
	}

	// Prefer the shipping details collected at payment; some payment methods
	// only collect a billing address, which is still good enough to ship to.
	if sess.ShippingAddress != nil {
		o.ShippingAddress = mapAddress(sess.ShippingName, sess.ShippingAddress)
	} else if sess.BillingAddress != nil {
		o.ShippingAddress = mapAddress(sess.CustomerName, sess.BillingAddress)
	}
	if sess.BillingAddress != nil {
		o.BillingAddress = mapAddress(sess.CustomerName, sess.BillingAddress)
	}
	if o.ShippingAddress.Name == "" {
		o.ShippingAddress.Name = sess.CustomerName
	}

	for _, line := range snapshot.Items {
		o.Items = append(o.Items, order.OrderItem{
			ProductID:        line.ProductID,
			ProductVariantID: line.VariantID,
			Quantity:         line.Quantity,
			UnitPriceCents:   line.UnitPriceCents,
			TotalCents:       line.UnitPriceCents * int64(line.Quantity),
			Customization:    line.Customization,
		})
	}
	return o
}

func mapAddress(name string, a *payment.Address) order.Address {
	return order.Address{
		Name:         name,
		AddressLine1: a.Line1,
		AddressLine2: a.Line2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

// runEffects executes the post-order side effects, capturing each outcome
func (f *Finalizer) runEffects(ctx context.Context, o *order.Order) []EffectResult {
	var effects []EffectResult

	if f.config.External.Printful.Enabled && f.fulfiller != nil {
		effects = append(effects, f.dispatchFulfillment(ctx, o))
	}

	if f.mailer != nil {
		result := EffectResult{Name: "order_confirmation_email", OK: true}
		if err := f.mailer.SendOrderConfirmation(o); err != nil {
			result.OK = false
			result.Error = err.Error()
			f.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to send order confirmation")
		}
		effects = append(effects, result)
	}

	if f.awarder != nil && o.UserID != nil {
		result := EffectResult{Name: "gamification_award", OK: true}
		if err := f.awarder.AwardPurchase(*o.UserID, o.ID.String(), o.TotalCents); err != nil {
			result.OK = false
			result.Error = err.Error()
			f.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to award purchase XP")
		}
		effects = append(effects, result)

		referral := EffectResult{Name: "referral_award", OK: true}
		if err := f.awarder.AwardReferralForFirstOrder(*o.UserID); err != nil {
			referral.OK = false
			referral.Error = err.Error()
			f.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to award referral XP")
		}
		effects = append(effects, referral)
	}

	return effects
}

// dispatchFulfillment submits the order to the print provider. Items that
// map to neither a sync variant nor a catalog variant are skipped. An order
// without a complete shipping address is never dispatched.
func (f *Finalizer) dispatchFulfillment(ctx context.Context, o *order.Order) EffectResult {
	result := EffectResult{Name: "printful_dispatch", OK: true}

	if !o.ShippingAddress.IsComplete() {
		result.OK = false
		result.Error = "shipping address incomplete, order requires manual fulfillment"
		f.logger.WithField("order_id", o.ID).Warn("Skipping fulfillment dispatch: incomplete shipping address")
		return result
	}

	req, skipped, err := f.buildFulfillmentRequest(o)
	if err != nil {
		result.OK = false
		result.Error = err.Error()
		return result
	}
	if skipped > 0 {
		f.logger.WithFields(logrus.Fields{
			"order_id": o.ID,
			"skipped":  skipped,
		}).Warn("Some order items cannot be auto-fulfilled")
	}
	if len(req.Items) == 0 {
		result.Error = "no fulfillable items"
		return result
	}

	created, err := f.fulfiller.CreateOrder(ctx, req)
	if err != nil {
		result.OK = false
		result.Error = err.Error()
		f.logger.WithError(err).WithField("order_id", o.ID).Error("Fulfillment dispatch failed")
		return result
	}

	if err := f.store.StorePrintfulOrderID(o, created.ID); err != nil {
		f.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to store fulfillment order ID")
	}
	return result
}

// buildFulfillmentRequest maps order items to provider line items. Sync
// variants reference the merchant's store products directly; catalog
// variants need the default artwork attached.
func (f *Finalizer) buildFulfillmentRequest(o *order.Order) (*printful.OrderRequest, int, error) {
	req := &printful.OrderRequest{
		ExternalID: strings.ReplaceAll(o.ID.String(), "-", ""),
		Recipient: printful.Recipient{
			Name:        o.ShippingAddress.Name,
			Address1:    o.ShippingAddress.AddressLine1,
			Address2:    o.ShippingAddress.AddressLine2,
			City:        o.ShippingAddress.City,
			StateCode:   o.ShippingAddress.State,
			CountryCode: o.ShippingAddress.Country,
			Zip:         o.ShippingAddress.PostalCode,
			Email:       o.Email(),
		},
	}

	skipped := 0
	for _, item := range o.Items {
		variant, err := f.store.VariantByID(item.ProductVariantID)
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to load variant %d: %w", item.ProductVariantID, err)
		}
		if variant == nil {
			skipped++
			continue
		}

		retail := fmt.Sprintf("%.2f", float64(item.UnitPriceCents)/100)
		switch {
		case variant.SyncVariantID != nil:
			req.Items = append(req.Items, printful.OrderItem{
				SyncVariantID: variant.SyncVariantID,
				Quantity:      item.Quantity,
				RetailPrice:   retail,
			})
		case variant.CatalogVariantID != nil:
			req.Items = append(req.Items, printful.OrderItem{
				VariantID:   variant.CatalogVariantID,
				Quantity:    item.Quantity,
				RetailPrice: retail,
				Files: []printful.File{
					{URL: f.config.External.Printful.DefaultArtworkURL, Type: "default"},
				},
			})
		default:
			skipped++
		}
	}
	return req, skipped, nil
}
