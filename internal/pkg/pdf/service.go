// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/devanagari-foods/storefront/internal/config"
	"github.com/devanagari-foods/storefront/internal/domain/order"
)

// Service renders order invoices as PDF.
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// GenerateInvoice renders a PDF invoice for an order.
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.generateHTML(buildInvoiceData(s.config, o))
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

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

func (s *Service) generateHTML(data InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// InvoiceData is the data passed to the invoice template.
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	StoreName     string
	StoreEmail    string
	CustomerName  string
	CustomerEmail string
	PaymentID     string
	Items         []InvoiceItem
	Total         string
}

// InvoiceItem is one invoice line.
type InvoiceItem struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

func buildInvoiceData(cfg *config.Config, o *order.Order) InvoiceData {
	data := InvoiceData{
		InvoiceNumber: invoiceNumber(o),
		InvoiceDate:   o.CreatedAt.Format("January 2, 2006"),
		StoreName:     cfg.App.Name,
		StoreEmail:    cfg.Email.FromEmail,
		PaymentID:     o.PaymentID,
		Total:         formatRupees(o.Total),
	}
	if o.User != nil {
		data.CustomerName = o.User.FullName
		data.CustomerEmail = o.User.Email
	}
	for _, item := range o.Items {
		line := InvoiceItem{
			Quantity:  item.Quantity,
			UnitPrice: formatRupees(item.Price),
			LineTotal: formatRupees(item.Price * int64(item.Quantity)),
		}
		if item.Product != nil {
			line.Name = item.Product.Name
		}
		data.Items = append(data.Items, line)
	}
	return data
}

func invoiceNumber(o *order.Order) string {
	ref := strings.ToUpper(o.ID.String())
	if len(ref) >= 8 {
		ref = ref[:8]
	}
	year := o.CreatedAt.Year()
	if year == 1 {
		year = time.Now().Year()
	}
	return fmt.Sprintf("INV-%d-%s", year, ref)
}

func formatRupees(paise int64) string {
	return fmt.Sprintf("₹%.2f", float64(paise)/100)
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px;
                  border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .meta td { padding: 4px 12px 4px 0; }
        .meta .label { font-weight: bold; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .items-table .num { text-align: right; width: 90px; }
        .total-row td { font-weight: bold; background-color: #f8f9fa; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <div class="invoice-title">{{.StoreName}}</div>
            <div>{{.StoreEmail}}</div>
        </div>
        <div>
            <h2>Invoice {{.InvoiceNumber}}</h2>
            <div>{{.InvoiceDate}}</div>
        </div>
    </div>

    <table class="meta">
        <tr><td class="label">Billed to</td><td>{{.CustomerName}} ({{.CustomerEmail}})</td></tr>
        <tr><td class="label">Payment reference</td><td>{{.PaymentID}}</td></tr>
    </table>

    <table class="items-table">
        <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Amount</th></tr>
        {{range .Items}}
        <tr>
            <td>{{.Name}}</td>
            <td class="num">{{.Quantity}}</td>
            <td class="num">{{.UnitPrice}}</td>
            <td class="num">{{.LineTotal}}</td>
        </tr>
        {{end}}
        <tr class="total-row"><td colspan="3">Total</td><td class="num">{{.Total}}</td></tr>
    </table>
</body>
</html>
`))
