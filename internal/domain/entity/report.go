package entity

import (
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/pkg/money"
)

// PaymentSummary aggregates one payment method's sales for a day
type PaymentSummary struct {
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	Count         int64              `json:"count"`
	Amount        money.Amount       `json:"amount"`
}

// TopProduct is a product ranked by quantity sold on a day
type TopProduct struct {
	ProductID uint         `json:"product_id"`
	Name      string       `json:"name"`
	Quantity  int64        `json:"quantity"`
	Revenue   money.Amount `json:"revenue"`
}

// DailyReport summarizes all sales of one calendar date
type DailyReport struct {
	Date              string           `json:"date"`
	TotalRevenue      money.Amount     `json:"total_revenue"`
	TotalTransactions int64            `json:"total_transactions"`
	AvgTransaction    money.Amount     `json:"avg_transaction"`
	PaymentSummary    []PaymentSummary `json:"payment_summary"`
	TopProducts       []TopProduct     `json:"top_products"`
}
