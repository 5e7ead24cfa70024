package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/pkg/money"
	"github.com/sangkips/kassensystem/pkg/printer"
)

const (
	receiptWidth    = 48
	itemNameWidth   = 30
	receiptFeedRows = 4
)

// ReceiptFormatter lays out receipts for an 80mm thermal printer.
// It performs no I/O; the same receipt always yields the same lines and bytes.
type ReceiptFormatter struct {
	width    int
	codePage printer.CodePage
	header   entity.ReceiptHeader
	loc      *time.Location
}

// NewReceiptFormatter creates a formatter. Dates are printed in loc.
func NewReceiptFormatter(width int, codePage printer.CodePage, header entity.ReceiptHeader, loc *time.Location) *ReceiptFormatter {
	if width <= 0 {
		width = receiptWidth
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReceiptFormatter{
		width:    width,
		codePage: codePage,
		header:   header,
		loc:      loc,
	}
}

// Header returns the banner used when a receipt does not carry its own.
func (f *ReceiptFormatter) Header() entity.ReceiptHeader {
	return f.header
}

// FromSale builds the receipt for a persisted sale.
func (f *ReceiptFormatter) FromSale(detail *entity.SaleDetail) *entity.Receipt {
	items := make([]entity.ReceiptItem, 0, len(detail.Items))
	for _, it := range detail.Items {
		items = append(items, entity.ReceiptItem{
			Name:       it.ProductName,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}

	return &entity.Receipt{
		Header:         f.header,
		Number:         strconv.FormatUint(uint64(detail.ID), 10),
		Date:           detail.CreatedAt,
		Cashier:        detail.Cashier,
		PaymentMethod:  detail.PaymentMethod,
		Items:          items,
		ReceivedAmount: detail.ReceivedAmount,
	}
}

// TestReceipt is the fixed page printed by the printer test.
func (f *ReceiptFormatter) TestReceipt(now time.Time) *entity.Receipt {
	received := money.MustParse("10.00")
	return &entity.Receipt{
		Header:        f.header,
		Number:        "TEST-001",
		Date:          now,
		Cashier:       "System Test",
		PaymentMethod: enum.PaymentCash,
		Items: []entity.ReceiptItem{
			{Name: "Test Artikel 1", Quantity: 2, UnitPrice: money.MustParse("1.50"), TotalPrice: money.MustParse("3.00")},
			{Name: "Test Artikel 2", Quantity: 1, UnitPrice: money.MustParse("2.99"), TotalPrice: money.MustParse("2.99")},
		},
		ReceivedAmount: &received,
	}
}

// Format lays out the receipt as fixed-width lines.
func (f *ReceiptFormatter) Format(r *entity.Receipt) *entity.ReceiptDocument {
	header := r.Header
	if header.StoreName == "" {
		header = f.header
	}

	banner := strings.Repeat("=", f.width)
	rule := strings.Repeat("-", f.width)
	total := r.Total()

	lines := []string{
		f.center(banner),
		f.center(header.StoreName),
	}
	if header.Subtitle != "" {
		lines = append(lines, f.center(header.Subtitle))
	}
	lines = append(lines,
		f.center(banner),
		"",
		"Datum: "+r.Date.In(f.loc).Format("02.01.2006 15:04:05"),
		"Beleg-Nr: "+r.Number,
		"Kassierer: "+r.Cashier,
		rule,
		"ARTIKEL",
		rule,
	)

	for _, item := range r.Items {
		lines = append(lines,
			fmt.Sprintf("%-*s", itemNameWidth, truncateRunes(item.Name, itemNameWidth)),
			fmt.Sprintf("  %d x %s = %12s", item.Quantity, item.UnitPrice.Euro(), item.TotalPrice.Euro()),
		)
	}

	lines = append(lines,
		rule,
		fmt.Sprintf("%36s %10s", "GESAMT:", total.Euro()),
		"",
		"Zahlungsart: "+r.PaymentMethod.String(),
	)

	if r.PaymentMethod.IsCash() {
		received := total
		if r.ReceivedAmount != nil {
			received = *r.ReceivedAmount
		}
		lines = append(lines, fmt.Sprintf("Erhalten:    %10s", received.Euro()))
		if change := received - total; change > 0 {
			lines = append(lines, fmt.Sprintf("Rückgeld:    %10s", change.Euro()))
		}
	}

	lines = append(lines,
		"",
		f.center("Vielen Dank für Ihren Einkauf!"),
		f.center("Beleg bitte aufbewahren"),
		"",
	)
	if header.VATNote != "" {
		lines = append(lines, f.center(header.VATNote), "")
	}
	lines = append(lines, f.center(banner))
	for i := 0; i < receiptFeedRows; i++ {
		lines = append(lines, "")
	}

	return &entity.ReceiptDocument{Width: f.width, Lines: lines}
}

// Render returns the ESC/POS bytes for the receipt, ending with a paper cut.
func (f *ReceiptFormatter) Render(r *entity.Receipt) []byte {
	doc := f.Format(r)
	return printer.NewDocument(f.width, f.codePage).
		Lines(doc.Lines).
		Cut().
		Bytes()
}

// center pads s on the left so it sits in the middle of the line
func (f *ReceiptFormatter) center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= f.width {
		return s
	}
	return strings.Repeat(" ", (f.width-n)/2) + s
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
