package request

import "github.com/sangkips/kassensystem/pkg/money"

// ReceiptItemRequest is one line of an ad-hoc receipt
type ReceiptItemRequest struct {
	Name       string        `json:"name" binding:"required,max=255"`
	Quantity   int           `json:"quantity" binding:"required,min=1,max=100000"`
	UnitPrice  *money.Amount `json:"unit_price" binding:"required,min=0"`
	TotalPrice *money.Amount `json:"total_price" binding:"omitempty,min=0"`
}

// PrintReceiptRequest is the request body for printing a receipt that is not a stored sale.
type PrintReceiptRequest struct {
	ReceiptNumber  string               `json:"receipt_number" binding:"max=50"`
	Cashier        string               `json:"cashier" binding:"max=100"`
	PaymentMethod  string               `json:"payment_method" binding:"required,max=50"`
	ReceivedAmount *money.Amount        `json:"received_amount" binding:"omitempty,min=0"`
	Items          []ReceiptItemRequest `json:"items" binding:"required,min=1,dive"`
}
