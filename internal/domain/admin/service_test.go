package admin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []RefundRecord {
	t1 := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)
	return []RefundRecord{
		{
			OrderID:       uuid.New(),
			RefundID:      "rfnd_AbC123",
			PaymentID:     "pay_111",
			Amount:        39800,
			Status:        "processed",
			RefundedAt:    &t2,
			CustomerName:  "Asha Rao",
			CustomerEmail: "asha@example.com",
		},
		{
			OrderID:       uuid.New(),
			RefundID:      "rfnd_XyZ789",
			PaymentID:     "pay_222",
			Amount:        19900,
			Status:        "pending",
			RefundedAt:    &t1,
			CustomerName:  "Vikram Hegde",
			CustomerEmail: "vikram@example.com",
		},
		{
			OrderID:       uuid.New(),
			RefundID:      "rfnd_Fail01",
			PaymentID:     "pay_333",
			Amount:        29900,
			Status:        "failed",
			CustomerName:  "Meena Iyer",
			CustomerEmail: "meena@shop.example.com",
		},
	}
}

func TestSearchMatchesAcrossFields(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"empty query passes all", "", 3},
		{"refund id, case-insensitive", "abc123", 1},
		{"customer name fragment", "hegde", 1},
		{"email domain", "shop.example", 1},
		{"payment id", "pay_222", 1},
		{"no match", "zzzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Search(records, tt.query), tt.want)
		})
	}
}

func TestFilterByStatus(t *testing.T) {
	records := sampleRecords()

	assert.Len(t, FilterByStatus(records, "all"), 3)
	assert.Len(t, FilterByStatus(records, ""), 3)
	assert.Len(t, FilterByStatus(records, "pending"), 1)
	assert.Len(t, FilterByStatus(records, "Processed"), 1)
	assert.Len(t, FilterByStatus(records, "failed"), 1)
	assert.Empty(t, FilterByStatus(records, "unknown"))
}

func TestSearchAndFilterCompose(t *testing.T) {
	records := sampleRecords()

	got := FilterByStatus(Search(records, "example.com"), "pending")
	require.Len(t, got, 1)
	assert.Equal(t, "rfnd_XyZ789", got[0].RefundID)
}

func TestExportRefunds(t *testing.T) {
	records := sampleRecords()

	file, err := ExportRefunds(records)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, len(records)+1)
	assert.Equal(t, "RefundID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "rfnd_AbC123", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "398.00", sheet.Rows[1].Cells[5].String())
	// a record without a refund timestamp exports an empty cell
	assert.Equal(t, "", sheet.Rows[3].Cells[8].String())
}
