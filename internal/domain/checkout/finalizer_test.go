package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
	"github.com/your-org/storefront-backend/internal/pkg/printful"
)

type fakeStore struct {
	orders       map[string]*order.Order
	snapshots    map[string]*AbandonedCheckout
	variants     map[uint]*product.ProductVariant
	oversold     []uint
	persistErr   error
	persistCalls int
	discountUses []string
	printfulIDs  map[string]int64
	deletedSnaps []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:      map[string]*order.Order{},
		snapshots:   map[string]*AbandonedCheckout{},
		variants:    map[uint]*product.ProductVariant{},
		printfulIDs: map[string]int64{},
	}
}

func (f *fakeStore) OrderByPaymentSession(sessionID string) (*order.Order, error) {
	return f.orders[sessionID], nil
}

func (f *fakeStore) Snapshot(sessionID string) (*AbandonedCheckout, error) {
	return f.snapshots[sessionID], nil
}

func (f *fakeStore) VariantByID(id uint) (*product.ProductVariant, error) {
	return f.variants[id], nil
}

func (f *fakeStore) PersistOrder(o *order.Order, quantities map[uint]int) ([]uint, error) {
	f.persistCalls++
	if f.persistErr != nil {
		return nil, f.persistErr
	}
	if _, exists := f.orders[o.PaymentSessionID]; exists {
		return nil, ErrDuplicateSession
	}
	f.orders[o.PaymentSessionID] = o
	return f.oversold, nil
}

func (f *fakeStore) StorePrintfulOrderID(o *order.Order, printfulID int64) error {
	f.printfulIDs[o.PaymentSessionID] = printfulID
	o.PrintfulOrderID = &printfulID
	return nil
}

func (f *fakeStore) DeleteSnapshot(sessionID string) error {
	f.deletedSnaps = append(f.deletedSnaps, sessionID)
	delete(f.snapshots, sessionID)
	return nil
}

func (f *fakeStore) RecordDiscountUse(code string) error {
	f.discountUses = append(f.discountUses, code)
	return nil
}

// racingStore reports no existing order on the first lookup and the winner's
// order on every later one
type racingStore struct {
	*fakeStore
	winner  *order.Order
	lookups int
}

func (r *racingStore) OrderByPaymentSession(sessionID string) (*order.Order, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.winner, nil
}

type fakeGateway struct {
	sessions map[string]*payment.Session
}

func (f *fakeGateway) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return sess, nil
}

type fakeFulfiller struct {
	requests []*printful.OrderRequest
	err      error
}

func (f *fakeFulfiller) CreateOrder(_ context.Context, req *printful.OrderRequest) (*printful.OrderResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &printful.OrderResult{ID: 9001, ExternalID: req.ExternalID, Status: "draft"}, nil
}

type fakeMailer struct {
	sent []*order.Order
	err  error
}

func (f *fakeMailer) SendOrderConfirmation(o *order.Order) error {
	f.sent = append(f.sent, o)
	return f.err
}

type fakeAwarder struct {
	awards    []int64
	referrals []uint
}

func (f *fakeAwarder) AwardPurchase(userID uint, orderID string, totalCents int64) error {
	f.awards = append(f.awards, totalCents)
	return nil
}

func (f *fakeAwarder) AwardReferralForFirstOrder(referredID uint) error {
	f.referrals = append(f.referrals, referredID)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{DefaultCurrency: "CHF"},
		External: config.ExternalConfig{
			Printful: config.PrintfulConfig{
				Enabled:           true,
				DefaultArtworkURL: "https://cdn.example.com/art.png",
			},
			Stripe: config.StripeConfig{Enabled: true},
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func paidSession(id string) *payment.Session {
	return &payment.Session{
		ID:            id,
		Status:        payment.StatusComplete,
		PaymentStatus: payment.PaymentStatusPaid,
		CustomerName:  "Mia Keller",
		CustomerEmail: "mia@example.com",
		ShippingName:  "Mia Keller",
		ShippingAddress: &payment.Address{
			Line1:      "Bahnhofstrasse 1",
			City:       "Zurich",
			PostalCode: "8001",
			Country:    "CH",
		},
	}
}

func snapshotFor(sessionID string, lines ...cart.Line) *AbandonedCheckout {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPriceCents * int64(l.Quantity)
	}
	return &AbandonedCheckout{
		PaymentSessionID: sessionID,
		GuestEmail:       "mia@example.com",
		Items:            lines,
		SubtotalCents:    subtotal,
		Currency:         "CHF",
	}
}

func syncID(v int64) *int64    { return &v }
func catalogID(v int64) *int64 { return &v }

func newTestFinalizer(store Store, gateway *fakeGateway, fulfiller *fakeFulfiller, mailer *fakeMailer, awarder *fakeAwarder) *Finalizer {
	var m orderMailer
	if mailer != nil {
		m = mailer
	}
	var a purchaseAwarder
	if awarder != nil {
		a = awarder
	}
	return NewFinalizer(testConfig(), testLogger(), store, gateway, fulfiller, m, a)
}

func TestFinalize_CreatesOrderOnce(t *testing.T) {
	store := newFakeStore()
	store.variants[7] = &product.ProductVariant{ID: 7, SyncVariantID: syncID(111)}
	store.snapshots["cs_1"] = snapshotFor("cs_1", cart.Line{VariantID: 7, ProductID: 1, Quantity: 2, UnitPriceCents: 2500})
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_1": paidSession("cs_1")}}
	fulfiller := &fakeFulfiller{}

	f := newTestFinalizer(store, gateway, fulfiller, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, ResultFinalized, result.Code)
	require.NotNil(t, result.Order)
	assert.Equal(t, int64(5000), result.Order.TotalCents)
	assert.Equal(t, order.OrderStatusPaid, result.Order.Status)
	assert.Equal(t, "mia@example.com", result.Order.Email())
	assert.Contains(t, store.deletedSnaps, "cs_1")

	again, err := f.Finalize(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, ResultAlreadyFinalized, again.Code)
	require.NotNil(t, again.Order)
	assert.Equal(t, result.Order.ID, again.Order.ID)
	assert.Equal(t, 1, store.persistCalls)
	assert.Len(t, fulfiller.requests, 1)
}

func TestFinalize_ConcurrentDuplicateResolvesToExisting(t *testing.T) {
	store := newFakeStore()
	store.variants[7] = &product.ProductVariant{ID: 7, SyncVariantID: syncID(111)}
	store.snapshots["cs_2"] = snapshotFor("cs_2", cart.Line{VariantID: 7, Quantity: 1, UnitPriceCents: 1000})
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_2": paidSession("cs_2")}}

	// A concurrent finalizer wins the insert between the fast-path check
	// and the persist: the first lookup sees nothing, the persist hits the
	// unique index, the retry lookup finds the winner's order.
	existing := &order.Order{PaymentSessionID: "cs_2", TotalCents: 1000}
	store.persistErr = ErrDuplicateSession
	raced := &racingStore{fakeStore: store, winner: existing}

	f := newTestFinalizer(raced, gateway, &fakeFulfiller{}, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_2")
	require.NoError(t, err)
	assert.Equal(t, ResultAlreadyFinalized, result.Code)
	assert.Same(t, existing, result.Order)
}

func TestFinalize_PaymentNotComplete(t *testing.T) {
	store := newFakeStore()
	sess := paidSession("cs_3")
	sess.PaymentStatus = "unpaid"
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_3": sess}}

	f := newTestFinalizer(store, gateway, &fakeFulfiller{}, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_3")
	require.NoError(t, err)
	assert.Equal(t, ResultPaymentIncomplete, result.Code)
	assert.Nil(t, result.Order)
	assert.Zero(t, store.persistCalls)
}

func TestFinalize_SnapshotMissing(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_4": paidSession("cs_4")}}

	f := newTestFinalizer(store, gateway, &fakeFulfiller{}, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_4")
	require.NoError(t, err)
	assert.Equal(t, ResultSnapshotMissing, result.Code)
	assert.Zero(t, store.persistCalls)
}

func TestFinalize_FulfillmentPayloadShapes(t *testing.T) {
	store := newFakeStore()
	store.variants[1] = &product.ProductVariant{ID: 1, SyncVariantID: syncID(111)}
	store.variants[2] = &product.ProductVariant{ID: 2, CatalogVariantID: catalogID(4012)}
	store.variants[3] = &product.ProductVariant{ID: 3} // neither: manual fulfillment
	store.snapshots["cs_5"] = snapshotFor("cs_5",
		cart.Line{VariantID: 1, Quantity: 2, UnitPriceCents: 2500},
		cart.Line{VariantID: 2, Quantity: 1, UnitPriceCents: 3500},
		cart.Line{VariantID: 3, Quantity: 1, UnitPriceCents: 1500},
	)
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_5": paidSession("cs_5")}}
	fulfiller := &fakeFulfiller{}

	f := newTestFinalizer(store, gateway, fulfiller, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_5")
	require.NoError(t, err)
	assert.Equal(t, ResultFinalized, result.Code)

	require.Len(t, fulfiller.requests, 1)
	req := fulfiller.requests[0]
	assert.NotContains(t, req.ExternalID, "-")
	assert.Equal(t, "Mia Keller", req.Recipient.Name)
	assert.Equal(t, "CH", req.Recipient.CountryCode)

	// unmappable item skipped
	require.Len(t, req.Items, 2)

	syncItem := req.Items[0]
	require.NotNil(t, syncItem.SyncVariantID)
	assert.Equal(t, int64(111), *syncItem.SyncVariantID)
	assert.Nil(t, syncItem.VariantID)
	assert.Empty(t, syncItem.Files)
	assert.Equal(t, "25.00", syncItem.RetailPrice)

	catalogItem := req.Items[1]
	require.NotNil(t, catalogItem.VariantID)
	assert.Equal(t, int64(4012), *catalogItem.VariantID)
	require.Len(t, catalogItem.Files, 1)
	assert.Equal(t, "https://cdn.example.com/art.png", catalogItem.Files[0].URL)

	assert.Equal(t, int64(9001), *result.Order.PrintfulOrderID)
}

func TestFinalize_NoShippingAddressSkipsDispatch(t *testing.T) {
	store := newFakeStore()
	store.variants[1] = &product.ProductVariant{ID: 1, SyncVariantID: syncID(111)}
	store.snapshots["cs_6"] = snapshotFor("cs_6", cart.Line{VariantID: 1, Quantity: 1, UnitPriceCents: 2000})
	sess := paidSession("cs_6")
	sess.ShippingAddress = nil
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_6": sess}}
	fulfiller := &fakeFulfiller{}

	f := newTestFinalizer(store, gateway, fulfiller, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_6")
	require.NoError(t, err)
	assert.Equal(t, ResultFinalized, result.Code)
	assert.Equal(t, order.OrderStatusPaid, result.Order.Status)
	assert.Empty(t, fulfiller.requests)

	require.NotEmpty(t, result.Effects)
	dispatch := result.Effects[0]
	assert.Equal(t, "printful_dispatch", dispatch.Name)
	assert.False(t, dispatch.OK)
}

func TestFinalize_DiscountedTotal(t *testing.T) {
	store := newFakeStore()
	store.variants[1] = &product.ProductVariant{ID: 1, SyncVariantID: syncID(111)}
	snapshot := snapshotFor("cs_7", cart.Line{VariantID: 1, Quantity: 2, UnitPriceCents: 2500})
	snapshot.DiscountCode = "SAVE10"
	snapshot.DiscountCents = 500
	store.snapshots["cs_7"] = snapshot
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_7": paidSession("cs_7")}}

	f := newTestFinalizer(store, gateway, &fakeFulfiller{}, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_7")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Order.SubtotalCents)
	assert.Equal(t, int64(500), result.Order.DiscountCents)
	assert.Equal(t, int64(4500), result.Order.TotalCents)
	assert.Equal(t, "SAVE10", result.Order.DiscountCode)
	assert.Contains(t, store.discountUses, "SAVE10")
}

func TestFinalize_EffectFailureDoesNotFailOrder(t *testing.T) {
	store := newFakeStore()
	store.variants[1] = &product.ProductVariant{ID: 1, SyncVariantID: syncID(111)}
	store.snapshots["cs_8"] = snapshotFor("cs_8", cart.Line{VariantID: 1, Quantity: 1, UnitPriceCents: 2000})
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_8": paidSession("cs_8")}}
	fulfiller := &fakeFulfiller{err: errors.New("provider unavailable")}
	mailer := &fakeMailer{err: errors.New("smtp down")}

	f := newTestFinalizer(store, gateway, fulfiller, mailer, nil)

	result, err := f.Finalize(context.Background(), "cs_8")
	require.NoError(t, err)
	assert.Equal(t, ResultFinalized, result.Code)

	require.Len(t, result.Effects, 2)
	for _, effect := range result.Effects {
		assert.False(t, effect.OK)
		assert.NotEmpty(t, effect.Error)
	}
	// the order still exists despite both effects failing
	assert.NotNil(t, store.orders["cs_8"])
}

func TestFinalize_AwardsPurchaseForUser(t *testing.T) {
	store := newFakeStore()
	store.variants[1] = &product.ProductVariant{ID: 1, SyncVariantID: syncID(111)}
	userID := uint(42)
	snapshot := snapshotFor("cs_9", cart.Line{VariantID: 1, Quantity: 1, UnitPriceCents: 3000})
	snapshot.UserID = &userID
	store.snapshots["cs_9"] = snapshot
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_9": paidSession("cs_9")}}
	awarder := &fakeAwarder{}

	f := newTestFinalizer(store, gateway, &fakeFulfiller{}, nil, awarder)

	result, err := f.Finalize(context.Background(), "cs_9")
	require.NoError(t, err)
	assert.Equal(t, ResultFinalized, result.Code)
	require.Len(t, awarder.awards, 1)
	assert.Equal(t, int64(3000), awarder.awards[0])

	// the referral bonus is checked on every finalized order of the user
	require.Len(t, awarder.referrals, 1)
	assert.Equal(t, userID, awarder.referrals[0])

	var names []string
	for _, effect := range result.Effects {
		names = append(names, effect.Name)
	}
	assert.Contains(t, names, "gamification_award")
	assert.Contains(t, names, "referral_award")
}

func TestFinalize_BillingAddressBacksShipping(t *testing.T) {
	store := newFakeStore()
	store.variants[1] = &product.ProductVariant{ID: 1, SyncVariantID: syncID(111)}
	store.snapshots["cs_10"] = snapshotFor("cs_10", cart.Line{VariantID: 1, Quantity: 1, UnitPriceCents: 2000})

	// Some payment methods collect only a billing address.
	sess := paidSession("cs_10")
	sess.ShippingAddress = nil
	sess.ShippingName = ""
	sess.BillingAddress = &payment.Address{
		Line1:      "Seestrasse 12",
		City:       "Lucerne",
		PostalCode: "6003",
		Country:    "CH",
	}
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_10": sess}}
	fulfiller := &fakeFulfiller{}

	f := newTestFinalizer(store, gateway, fulfiller, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_10")
	require.NoError(t, err)
	assert.Equal(t, ResultFinalized, result.Code)
	assert.Equal(t, "Seestrasse 12", result.Order.ShippingAddress.AddressLine1)
	assert.Equal(t, "Mia Keller", result.Order.ShippingAddress.Name)

	require.Len(t, fulfiller.requests, 1)
	assert.Equal(t, "Lucerne", fulfiller.requests[0].Recipient.City)
}

func TestFinalize_UserOrderKeepsGuestEmailEmpty(t *testing.T) {
	store := newFakeStore()
	store.variants[1] = &product.ProductVariant{ID: 1, SyncVariantID: syncID(111)}
	userID := uint(42)
	snapshot := snapshotFor("cs_11", cart.Line{VariantID: 1, Quantity: 1, UnitPriceCents: 2000})
	snapshot.UserID = &userID
	store.snapshots["cs_11"] = snapshot
	gateway := &fakeGateway{sessions: map[string]*payment.Session{"cs_11": paidSession("cs_11")}}

	f := newTestFinalizer(store, gateway, &fakeFulfiller{}, nil, nil)

	result, err := f.Finalize(context.Background(), "cs_11")
	require.NoError(t, err)

	// GuestEmail marks guest orders; account orders carry a contact email only
	assert.Empty(t, result.Order.GuestEmail)
	assert.Equal(t, "mia@example.com", result.Order.Email())
}
