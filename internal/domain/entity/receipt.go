package entity

import (
	"strings"
	"time"

	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/pkg/money"
)

// ReceiptHeader holds the banner printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Subtitle  string `json:"subtitle,omitempty"`
	VATNote   string `json:"vat_note,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name       string       `json:"name"`
	Quantity   int          `json:"quantity"`
	UnitPrice  money.Amount `json:"unit_price"`
	TotalPrice money.Amount `json:"total_price"`
}

// Receipt is a value object representing a printable receipt.
// It is composed from a persisted sale (or an ad-hoc request) at print time.
type Receipt struct {
	Header         ReceiptHeader      `json:"header"`
	Number         string             `json:"number"`
	Date           time.Time          `json:"date"`
	Cashier        string             `json:"cashier"`
	PaymentMethod  enum.PaymentMethod `json:"payment_method"`
	Items          []ReceiptItem      `json:"items"`
	ReceivedAmount *money.Amount      `json:"received_amount,omitempty"`
}

// Total sums the item totals.
func (r *Receipt) Total() money.Amount {
	var total money.Amount
	for _, item := range r.Items {
		total += item.TotalPrice
	}
	return total
}

// ReceiptDocument is the fixed-width text rendering of a receipt.
type ReceiptDocument struct {
	Width int      `json:"width"`
	Lines []string `json:"lines"`
}

// Text joins the lines with newlines.
func (d *ReceiptDocument) Text() string {
	return strings.Join(d.Lines, "\n")
}
