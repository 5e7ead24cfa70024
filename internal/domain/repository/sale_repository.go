package repository

import (
	"context"
	"time"

	"github.com/sangkips/kassensystem/internal/domain/entity"
)

// SaleRepository defines the interface for the sale ledger
type SaleRepository interface {
	// Create inserts the sale together with its items
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uint) (*entity.Sale, error)
	// GetDetail returns the sale with items joined to product name and category
	GetDetail(ctx context.Context, id uint) (*entity.SaleDetail, error)
	// ListRecent returns the newest sales first with their item count
	ListRecent(ctx context.Context, limit int) ([]entity.SaleSummary, error)
	// ListBetween returns sales with from <= created_at < to, oldest first
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.SaleSummary, error)
	// MarkPrinted sets the printed flag; returns false if the sale does not exist
	MarkPrinted(ctx context.Context, id uint) (bool, error)
}

// Repositories bundles the repositories that take part in a sale transaction
type Repositories struct {
	Products ProductRepository
	Sales    SaleRepository
}

// TxManager runs a function with repositories bound to one database transaction.
// Returning an error rolls everything back.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}
