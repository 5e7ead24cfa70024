package repository

import (
	"context"
	"time"

	"github.com/sangkips/kassensystem/internal/domain/entity"
)

// ReportRepository defines interface for aggregation queries over the sale ledger.
// Ranges are half-open: from <= created_at < to.
type ReportRepository interface {
	// PaymentSummary returns count and summed total per payment method
	PaymentSummary(ctx context.Context, from, to time.Time) ([]entity.PaymentSummary, error)

	// TopProducts returns products ranked by quantity sold, ties broken by product id
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.TopProduct, error)
}
