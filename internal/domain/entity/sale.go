package entity

import (
	"time"

	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/pkg/money"
)

// Sale is one completed checkout. Immutable after creation except Printed.
type Sale struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	TotalAmount    money.Amount       `gorm:"not null" json:"total_amount"` // Stored in cents
	PaymentMethod  enum.PaymentMethod `gorm:"size:50;not null;index" json:"payment_method"`
	Cashier        string             `gorm:"size:100;not null" json:"cashier"`
	ReceivedAmount *money.Amount      `json:"received_amount,omitempty"` // Cash tendered, optional
	Printed        bool               `gorm:"not null;default:false" json:"printed"`
	CreatedAt      time.Time          `gorm:"not null;index" json:"created_at"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID" json:"-"`
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// Change returns received minus total for cash sales, zero otherwise
func (s *Sale) Change() money.Amount {
	if s.ReceivedAmount == nil || !s.PaymentMethod.IsCash() {
		return money.Zero
	}
	if c := *s.ReceivedAmount - s.TotalAmount; c > 0 {
		return c
	}
	return money.Zero
}

// SaleItem is one product line of a sale with the price captured at sale time
type SaleItem struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	SaleID     uint         `gorm:"not null;index" json:"sale_id"`
	ProductID  uint         `gorm:"not null;index" json:"product_id"`
	Quantity   int          `gorm:"not null" json:"quantity"`
	UnitPrice  money.Amount `gorm:"not null" json:"unit_price"`  // Stored in cents
	TotalPrice money.Amount `gorm:"not null" json:"total_price"` // Stored in cents

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// SaleItemDetail is a sale item joined with the product's current name and category
type SaleItemDetail struct {
	ID          uint         `json:"id"`
	ProductID   uint         `json:"product_id"`
	Quantity    int          `json:"quantity"`
	UnitPrice   money.Amount `json:"unit_price"`
	TotalPrice  money.Amount `json:"total_price"`
	ProductName string       `json:"product_name"`
	Category    string       `json:"category"`
}

// SaleDetail is a sale with its items for display and receipts
type SaleDetail struct {
	Sale
	Items []SaleItemDetail `json:"items"`
}

// SaleSummary is a sale row in the recent-sales list
type SaleSummary struct {
	Sale
	ItemCount int `json:"item_count"`
}
