// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/devanagari-foods/storefront/internal/config"
	"github.com/devanagari-foods/storefront/internal/domain/order"
)

// Service sends transactional mail over SMTP. Order confirmation is the
// only mail this storefront sends; it is best effort and never blocks
// checkout.
type Service struct {
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new email service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{config: cfg, logger: logger}
}

// Enabled reports whether SMTP is configured.
func (s *Service) Enabled() bool {
	return s.config.Email.SMTPHost != "" && s.config.Email.SMTPUser != ""
}

// SendOrderConfirmation mails the payment confirmation for an order.
func (s *Service) SendOrderConfirmation(ctx context.Context, to, name string, o *order.Order) error {
	if !s.Enabled() {
		s.logger.Debug("SMTP not configured, skipping order confirmation")
		return nil
	}

	html, err := renderConfirmation(name, o)
	if err != nil {
		return fmt.Errorf("failed to render confirmation mail: %w", err)
	}

	subject := fmt.Sprintf("Order confirmed - %s", shortOrderRef(o))
	return s.send(to, subject, html)
}

func (s *Service) send(to, subject, htmlBody string) error {
	cfg := s.config.Email

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)

	if err := smtp.SendMail(addr, auth, cfg.FromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func shortOrderRef(o *order.Order) string {
	id := o.ID.String()
	if len(id) >= 8 {
		id = id[:8]
	}
	return "#" + id
}

type confirmationData struct {
	Name     string
	OrderRef string
	Items    []confirmationItem
	Total    string
}

type confirmationItem struct {
	Name     string
	Quantity int
	Price    string
}

func renderConfirmation(name string, o *order.Order) (string, error) {
	data := confirmationData{
		Name:     name,
		OrderRef: shortOrderRef(o),
		Total:    formatRupees(o.Total),
	}
	if data.Name == "" {
		data.Name = "there"
	}
	for _, item := range o.Items {
		ci := confirmationItem{
			Quantity: item.Quantity,
			Price:    formatRupees(item.Price * int64(item.Quantity)),
		}
		if item.Product != nil {
			ci.Name = item.Product.Name
		}
		data.Items = append(data.Items, ci)
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatRupees(paise int64) string {
	return fmt.Sprintf("₹%.2f", float64(paise)/100)
}

var confirmationTemplate = template.Must(template.New("order_confirmation").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for your order, {{.Name}}!</h2>
  <p>Your payment was received and order {{.OrderRef}} is being processed.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr style="border-bottom: 1px solid #ddd;">
      <th align="left">Item</th><th align="right">Qty</th><th align="right">Amount</th>
    </tr>
    {{range .Items}}
    <tr>
      <td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.Price}}</td>
    </tr>
    {{end}}
    <tr style="border-top: 1px solid #ddd;">
      <td><strong>Total</strong></td><td></td><td align="right"><strong>{{.Total}}</strong></td>
    </tr>
  </table>
  <p>We will email you again when your order ships.</p>
</body>
</html>
`))
