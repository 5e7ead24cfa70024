package repository

import (
	"context"

	"github.com/sangkips/kassensystem/internal/domain/entity"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	CreateBatch(ctx context.Context, products []entity.Product) error
	GetByID(ctx context.Context, id uint) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uint) ([]entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, error)
	Count(ctx context.Context) (int64, error)
	// AdjustStock applies a relative change: stock = stock + delta.
	AdjustStock(ctx context.Context, id uint, delta int) error
	// DecrementStockIfAvailable decrements only when stock >= amount.
	// Returns (true, nil) if successful, (false, nil) if insufficient stock.
	DecrementStockIfAvailable(ctx context.Context, id uint, amount int) (bool, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Search   string
	Category string
	// MaxStock limits the result to products with stock <= *MaxStock
	MaxStock *int
}
