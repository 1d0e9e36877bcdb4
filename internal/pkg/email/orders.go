package email

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/order"
)

// invoiceGenerator renders an order invoice as a PDF
type invoiceGenerator interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// SendOrderConfirmation maps a finalized order onto the confirmation
// template and delivers it to the buyer, with the invoice PDF attached.
// A failed invoice render downgrades to a confirmation without it.
func (s *EmailService) SendOrderConfirmation(o *order.Order) error {
	recipient := o.Email()
	if recipient == "" {
		return fmt.Errorf("order %s has no recipient email", o.OrderNumber)
	}

	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem{
			Name:     item.Name,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    formatCents(item.UnitPriceCents),
			Total:    formatCents(item.TotalCents),
		})
	}

	data := OrderConfirmationData{
		OrderNumber:  o.OrderNumber,
		OrderDate:    o.CreatedAt.Format("January 2, 2006"),
		Currency:     o.Currency,
		Subtotal:     formatCents(o.SubtotalCents),
		Total:        formatCents(o.TotalCents),
		OrderURL:     fmt.Sprintf("%s/orders/%s", s.config.External.Email.BaseURL, o.OrderNumber),
		Items:        items,
		DiscountCode: o.DiscountCode,
		ShippingAddress: Address{
			Name:         o.ShippingAddress.Name,
			AddressLine1: o.ShippingAddress.AddressLine1,
			AddressLine2: o.ShippingAddress.AddressLine2,
			City:         o.ShippingAddress.City,
			State:        o.ShippingAddress.State,
			PostalCode:   o.ShippingAddress.PostalCode,
			Country:      o.ShippingAddress.Country,
		},
	}
	data.UserName = o.ShippingAddress.Name
	data.UserEmail = recipient
	if o.DiscountCents > 0 {
		data.Discount = formatCents(o.DiscountCents)
	}

	var attachments []Attachment
	if s.invoices != nil {
		if buf, err := s.invoices.GenerateInvoice(o); err != nil {
			s.logger.WithError(err).WithField("order_number", o.OrderNumber).Warn("Failed to render invoice PDF")
		} else {
			attachments = append(attachments, Attachment{
				Filename:    fmt.Sprintf("invoice-%s.pdf", o.OrderNumber),
				ContentType: "application/pdf",
				Content:     buf.Bytes(),
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.SendOrderConfirmationEmail(ctx, data, attachments...)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
