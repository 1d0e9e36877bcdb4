package email

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// captureTransport records the outgoing request body instead of sending it
type captureTransport struct {
	body []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	c.body = body
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     http.Header{},
	}, nil
}

type fakeInvoices struct {
	pdf []byte
	err error
}

func (f *fakeInvoices) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return bytes.NewBuffer(f.pdf), nil
}

func testEmailService(transport http.RoundTripper, invoices invoiceGenerator) *EmailService {
	cfg := &config.Config{
		External: config.ExternalConfig{
			Email: config.EmailConfig{
				Enabled:   true,
				Provider:  "resend",
				APIKey:    "re_test",
				FromEmail: "shop@example.com",
				FromName:  "Example Shop",
				BaseURL:   "https://shop.example.com",
			},
		},
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	s := &EmailService{
		config:    cfg,
		logger:    logger,
		templates: make(map[string]*template.Template),
		client:    &http.Client{Transport: transport, Timeout: 5 * time.Second},
		invoices:  invoices,
	}
	for _, name := range []string{"welcome", "order_confirmation", "order_status_update", "password_reset"} {
		s.templates[name] = s.createFallbackTemplate(name)
	}
	return s
}

func confirmationOrder() *order.Order {
	return &order.Order{
		OrderNumber:  "ORD-20260901-abcd1234",
		ContactEmail: "mia@example.com",
		Currency:     "CHF",
		TotalCents:   4500,
		Items: []order.OrderItem{
			{Name: "Classic Tee", SKU: "TEE-M", Quantity: 1, UnitPriceCents: 4500, TotalCents: 4500},
		},
	}
}

func TestSendOrderConfirmation_AttachesInvoicePDF(t *testing.T) {
	transport := &captureTransport{}
	invoices := &fakeInvoices{pdf: []byte("%PDF-1.4 test")}
	s := testEmailService(transport, invoices)

	require.NoError(t, s.SendOrderConfirmation(confirmationOrder()))

	var req resendEmailRequest
	require.NoError(t, json.Unmarshal(transport.body, &req))
	assert.Equal(t, []string{"mia@example.com"}, req.To)

	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "invoice-ORD-20260901-abcd1234.pdf", req.Attachments[0].Filename)

	decoded, err := base64.StdEncoding.DecodeString(req.Attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), decoded)
}

func TestSendOrderConfirmation_InvoiceFailureStillSends(t *testing.T) {
	transport := &captureTransport{}
	invoices := &fakeInvoices{err: assert.AnError}
	s := testEmailService(transport, invoices)

	require.NoError(t, s.SendOrderConfirmation(confirmationOrder()))

	var req resendEmailRequest
	require.NoError(t, json.Unmarshal(transport.body, &req))
	assert.Empty(t, req.Attachments)
	assert.Equal(t, []string{"mia@example.com"}, req.To)
}

func TestWriteMultipartBody_EncodesAttachment(t *testing.T) {
	email := &Email{
		To:          []string{"mia@example.com"},
		Subject:     "Order Confirmation",
		HTMLContent: "<p>thanks for your order</p>",
		Attachments: []Attachment{
			{Filename: "invoice.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4 test")},
		},
	}

	var msg bytes.Buffer
	require.NoError(t, writeMultipartBody(&msg, email))
	body := msg.String()

	assert.Contains(t, body, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, body, "text/html; charset=\"utf-8\"")
	assert.Contains(t, body, "<p>thanks for your order</p>")
	assert.Contains(t, body, `attachment; filename="invoice.pdf"`)
	assert.Contains(t, body, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 test")))
}
