package repository

import (
	"context"
	"time"

	"github.com/sangkips/kassensystem/internal/domain/entity"
	domainRepo "github.com/sangkips/kassensystem/internal/domain/repository"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) PaymentSummary(ctx context.Context, from, to time.Time) ([]entity.PaymentSummary, error) {
	results := []entity.PaymentSummary{}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			payment_method,
			COUNT(*) AS count,
			CAST(COALESCE(SUM(total_amount), 0) AS BIGINT) AS amount
		FROM sales
		WHERE created_at >= ? AND created_at < ?
		GROUP BY payment_method
		ORDER BY payment_method ASC
	`, from.UTC(), to.UTC()).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *reportRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.TopProduct, error) {
	results := []entity.TopProduct{}

	// Deleted products still rank, under a placeholder name
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			si.product_id AS product_id,
			COALESCE(p.name, 'Unbekannt') AS name,
			CAST(SUM(si.quantity) AS BIGINT) AS quantity,
			CAST(SUM(si.total_price) AS BIGINT) AS revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		LEFT JOIN products p ON p.id = si.product_id
		WHERE s.created_at >= ? AND s.created_at < ?
		GROUP BY si.product_id, p.name
		ORDER BY quantity DESC, si.product_id ASC
		LIMIT ?
	`, from.UTC(), to.UTC(), limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}
