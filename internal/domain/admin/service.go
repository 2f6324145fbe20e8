package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"

	"github.com/devanagari-foods/storefront/internal/domain/order"
	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// RefundRecord is one row of the refund view: an order's refund fields
// joined with the payer's mirrored identity.
type RefundRecord struct {
	OrderID       uuid.UUID  `json:"order_id"`
	RefundID      string     `json:"refund_id"`
	PaymentID     string     `json:"payment_id"`
	Amount        int64      `json:"amount"`
	Reason        string     `json:"reason,omitempty"`
	Status        string     `json:"status"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
}

// Service serves the read-only admin refund view. Refunds are issued on
// the gateway dashboard; this system only reads what lands in orders.
type Service struct {
	store  rowstore.Store
	logger *logrus.Logger
}

// NewService creates a new admin service
func NewService(store rowstore.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListRefunds returns every refunded order, newest refund first.
func (s *Service) ListRefunds(ctx context.Context) ([]RefundRecord, error) {
	var orders []order.Order
	err := s.store.SelectAll(ctx, &orders, nil,
		rowstore.WithWhere("refund_id IS NOT NULL"),
		rowstore.WithExpand("User"),
		rowstore.WithOrder("refunded_at DESC"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load refunds: %w", err)
	}

	records := make([]RefundRecord, 0, len(orders))
	for i := range orders {
		records = append(records, toRefundRecord(&orders[i]))
	}
	return records, nil
}

func toRefundRecord(o *order.Order) RefundRecord {
	rec := RefundRecord{
		OrderID:    o.ID,
		PaymentID:  o.PaymentID,
		Amount:     o.RefundAmount,
		Reason:     o.RefundReason,
		Status:     o.RefundStatus,
		RefundedAt: o.RefundedAt,
	}
	if o.RefundID != nil {
		rec.RefundID = *o.RefundID
	}
	if o.User != nil {
		rec.CustomerName = o.User.FullName
		rec.CustomerEmail = o.User.Email
	}
	return rec
}

// Search narrows records by a case-insensitive substring over refund id,
// customer name, email and payment id.
func Search(records []RefundRecord, query string) []RefundRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}

	matched := make([]RefundRecord, 0, len(records))
	for _, rec := range records {
		haystack := strings.ToLower(strings.Join([]string{
			rec.RefundID, rec.CustomerName, rec.CustomerEmail, rec.PaymentID,
		}, "\n"))
		if strings.Contains(haystack, query) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// FilterByStatus keeps records in the given refund status. "all" and ""
// pass everything through.
func FilterByStatus(records []RefundRecord, status string) []RefundRecord {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == "all" {
		return records
	}

	matched := make([]RefundRecord, 0, len(records))
	for _, rec := range records {
		if strings.EqualFold(rec.Status, status) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// LogAction appends to the admin audit trail. Best effort: a failed
// write is logged and does not fail the admin request.
func (s *Service) LogAction(ctx context.Context, adminID uuid.UUID, action, details string) {
	row := &Action{
		AdminID: adminID,
		Action:  action,
		Details: details,
	}
	if err := s.store.Insert(ctx, row); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"admin_id": adminID,
			"action":   action,
		}).Warn("Failed to record admin action")
	}
}

// ExportRefunds builds an XLSX workbook of the given records.
func ExportRefunds(records []RefundRecord) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Refunds")
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"RefundID", "OrderID", "PaymentID", "Customer", "Email",
		"Amount", "Status", "Reason", "RefundedAt",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetValue(rec.RefundID)
		row.AddCell().SetValue(rec.OrderID.String())
		row.AddCell().SetValue(rec.PaymentID)
		row.AddCell().SetValue(rec.CustomerName)
		row.AddCell().SetValue(rec.CustomerEmail)
		row.AddCell().SetValue(fmt.Sprintf("%.2f", float64(rec.Amount)/100))
		row.AddCell().SetValue(rec.Status)
		row.AddCell().SetValue(rec.Reason)
		if rec.RefundedAt != nil {
			row.AddCell().SetValue(rec.RefundedAt.Format(time.RFC3339))
		} else {
			row.AddCell().SetValue("")
		}
	}
	return file, nil
}
