package request

import "github.com/sangkips/kassensystem/pkg/money"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name     string        `json:"name" binding:"required,max=255"`
	Price    *money.Amount `json:"price" binding:"required,min=0"`
	Category string        `json:"category" binding:"max=100"`
	Barcode  string        `json:"barcode" binding:"max=64"`
	Stock    int           `json:"stock"`
}

// UpdateProductRequest represents a product update request. Omitted fields stay unchanged.
type UpdateProductRequest struct {
	Name     *string       `json:"name" binding:"omitempty,min=1,max=255"`
	Price    *money.Amount `json:"price" binding:"omitempty,min=0"`
	Category *string       `json:"category" binding:"omitempty,max=100"`
	Barcode  *string       `json:"barcode" binding:"omitempty,max=64"`
	Stock    *int          `json:"stock"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
}

// LowStockRequest selects the stock threshold; omitted means the configured default
type LowStockRequest struct {
	Threshold *int `form:"threshold" binding:"omitempty,min=0"`
}
