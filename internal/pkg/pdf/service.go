package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.generateHTML(s.buildView(o))
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) buildView(o *order.Order) invoiceView {
	items := make([]invoiceItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, invoiceItem{
			Name:     item.Name,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    money(o.Currency, item.UnitPriceCents),
			Total:    money(o.Currency, item.TotalCents),
		})
	}

	view := invoiceView{
		InvoiceNumber:   fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:     time.Now().Format("January 2, 2006"),
		OrderNumber:     o.OrderNumber,
		OrderDate:       o.CreatedAt.Format("January 2, 2006"),
		Status:          string(o.Status),
		Paid:            o.PaidAt != nil,
		Currency:        o.Currency,
		Email:           o.Email(),
		Subtotal:        money(o.Currency, o.SubtotalCents),
		Shipping:        money(o.Currency, o.ShippingCents),
		Total:           money(o.Currency, o.TotalCents),
		Items:           items,
		BillingAddress:  o.BillingAddress,
		ShippingAddress: o.ShippingAddress,
		Company: companyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
	}
	if o.DiscountCents > 0 {
		view.Discount = money(o.Currency, o.DiscountCents)
		view.DiscountCode = o.DiscountCode
	}

	return view
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data invoiceView) (string, error) {
	tmpl := template.Must(template.New("invoice").Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func money(currency string, cents int64) string {
	return fmt.Sprintf("%s %.2f", currency, float64(cents)/100)
}

// invoiceView is the data passed to the invoice template
type invoiceView struct {
	InvoiceNumber   string
	InvoiceDate     string
	OrderNumber     string
	OrderDate       string
	Status          string
	Paid            bool
	Currency        string
	Email           string
	Subtotal        string
	Discount        string
	DiscountCode    string
	Shipping        string
	Total           string
	Items           []invoiceItem
	BillingAddress  order.Address
	ShippingAddress order.Address
	Company         companyInfo
}

type invoiceItem struct {
	Name     string
	SKU      string
	Quantity int
	Price    string
	Total    string
}

type companyInfo struct {
	Name    string
	Address string
	Email   string
	Website string
}

// Invoice HTML template
const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .company-info {
            flex: 1;
        }
        .invoice-info {
            text-align: right;
            flex: 1;
        }
        .invoice-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .invoice-details {
            margin-bottom: 30px;
        }
        .invoice-details table {
            width: 100%;
        }
        .invoice-details td {
            padding: 5px 0;
            vertical-align: top;
        }
        .invoice-details .label {
            font-weight: bold;
            width: 150px;
        }
        .billing-shipping {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
        }
        .billing-info, .shipping-info {
            flex: 1;
            margin-right: 20px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals table {
            width: 100%;
            border-collapse: collapse;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .totals .label {
            text-align: right;
            font-weight: bold;
        }
        .totals .amount {
            text-align: right;
            width: 100px;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-paid {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-pending {
            background-color: #fef3c7;
            color: #92400e;
        }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            <p>Email: {{.Company.Email}}</p>
            <p>{{.Company.Website}}</p>
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.OrderNumber}}</p>
        </div>
    </div>

    <div class="invoice-details">
        <table>
            <tr>
                <td class="label">Order Date:</td>
                <td>{{.OrderDate}}</td>
                <td class="label" style="text-align: right;">Payment:</td>
                <td style="text-align: right;">
                    <span class="status-badge {{if .Paid}}status-paid{{else}}status-pending{{end}}">
                        {{if .Paid}}paid{{else}}pending{{end}}
                    </span>
                </td>
            </tr>
            <tr>
                <td class="label">Order Status:</td>
                <td>{{.Status}}</td>
                <td class="label" style="text-align: right;">Currency:</td>
                <td style="text-align: right;">{{.Currency}}</td>
            </tr>
        </table>
    </div>

    <div class="billing-shipping">
        <div class="billing-info">
            <div class="section-title">Bill To:</div>
            <p><strong>{{.BillingAddress.Name}}</strong></p>
            <p>{{.BillingAddress.AddressLine1}}</p>
            {{if .BillingAddress.AddressLine2}}<p>{{.BillingAddress.AddressLine2}}</p>{{end}}
            <p>{{.BillingAddress.City}}, {{.BillingAddress.State}} {{.BillingAddress.PostalCode}}</p>
            <p>{{.BillingAddress.Country}}</p>
            {{if .BillingAddress.Phone}}<p>Phone: {{.BillingAddress.Phone}}</p>{{end}}
            <p>Email: {{.Email}}</p>
        </div>
        <div class="shipping-info">
            <div class="section-title">Ship To:</div>
            <p><strong>{{.ShippingAddress.Name}}</strong></p>
            <p>{{.ShippingAddress.AddressLine1}}</p>
            {{if .ShippingAddress.AddressLine2}}<p>{{.ShippingAddress.AddressLine2}}</p>{{end}}
            <p>{{.ShippingAddress.City}}, {{.ShippingAddress.State}} {{.ShippingAddress.PostalCode}}</p>
            <p>{{.ShippingAddress.Country}}</p>
            {{if .ShippingAddress.Phone}}<p>Phone: {{.ShippingAddress.Phone}}</p>{{end}}
        </div>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th>SKU</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td>{{.SKU}}</td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{.Price}}</td>
                <td class="total-col">{{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{.Subtotal}}</td>
            </tr>
            {{if .Discount}}
            <tr>
                <td class="label">Discount{{if .DiscountCode}} ({{.DiscountCode}}){{end}}:</td>
                <td class="amount">-{{.Discount}}</td>
            </tr>
            {{end}}
            <tr>
                <td class="label">Shipping:</td>
                <td class="amount">{{.Shipping}}</td>
            </tr>
            <tr class="total-row">
                <td class="label">Total:</td>
                <td class="amount">{{.Total}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your business!</p>
        <p>If you have any questions about this invoice, please contact us at {{.Company.Email}}</p>
    </div>
</body>
</html>
`
