package request

import "github.com/sangkips/kassensystem/pkg/money"

// SaleItemRequest is one cart line
type SaleItemRequest struct {
	ProductID  uint          `json:"product_id"`
	Quantity   int           `json:"quantity"`
	UnitPrice  *money.Amount `json:"unit_price"`
	TotalPrice *money.Amount `json:"total_price"`
}

// CreateSaleRequest represents a checkout. Cart rules are checked by the sale service.
type CreateSaleRequest struct {
	Items          []SaleItemRequest `json:"items"`
	TotalAmount    *money.Amount     `json:"total_amount"`
	PaymentMethod  string            `json:"payment_method" binding:"max=50"`
	Cashier        string            `json:"cashier" binding:"max=100"`
	AutoPrint      *bool             `json:"auto_print"`
	ReceivedAmount *money.Amount     `json:"received_amount" binding:"omitempty,min=0"`
}

// DayRequest selects a calendar date (YYYY-MM-DD), today when empty
type DayRequest struct {
	Date string `form:"date"`
}
