package entity

import (
	"time"

	"github.com/sangkips/kassensystem/pkg/money"
)

// Product represents an article in the shop's catalog
type Product struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"size:255;not null;index" json:"name"`
	Price     money.Amount `gorm:"not null;default:0" json:"price"` // Stored in cents
	Category  string       `gorm:"size:100" json:"category"`
	Barcode   *string      `gorm:"size:64;uniqueIndex" json:"barcode"`
	Stock     int          `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
