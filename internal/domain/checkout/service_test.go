package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/cart"
)

func validationService() *Service {
	return &Service{
		config: testConfig(),
		logger: testLogger(),
	}
}

func oneLineCart() *cart.Cart {
	return &cart.Cart{Lines: []cart.Line{{VariantID: 1, ProductID: 1, Quantity: 1}}}
}

func TestCreateSession_GuestWithoutEmailFails(t *testing.T) {
	s := validationService()

	_, err := s.CreateSession(context.Background(), &CreateSessionRequest{
		Cart: oneLineCart(),
	})
	require.Error(t, err)

	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, ErrCodeValidationFailed, checkoutErr.Code)
}

func TestCreateSession_RejectsMalformedEmail(t *testing.T) {
	s := validationService()

	for _, email := range []string{
		"not-an-email",
		"mia@",
		"@example.com",
		"mia keller@example.com",
	} {
		_, err := s.CreateSession(context.Background(), &CreateSessionRequest{
			Cart:       oneLineCart(),
			GuestEmail: email,
		})
		require.Error(t, err, "email %q should be rejected", email)

		var checkoutErr *CheckoutError
		require.ErrorAs(t, err, &checkoutErr, "email %q", email)
		assert.Equal(t, ErrCodeValidationFailed, checkoutErr.Code, "email %q", email)
	}
}

func TestCreateSession_PaymentsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.External.Stripe.Enabled = false
	s := &Service{config: cfg, logger: testLogger()}

	_, err := s.CreateSession(context.Background(), &CreateSessionRequest{Cart: oneLineCart()})
	require.Error(t, err)

	var checkoutErr *CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	assert.Equal(t, ErrCodePaymentDisabled, checkoutErr.Code)
}
