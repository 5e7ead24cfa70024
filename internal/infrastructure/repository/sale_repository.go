package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/kassensystem/internal/domain/entity"
	domainRepo "github.com/sangkips/kassensystem/internal/domain/repository"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts the sale row and its items. gorm assigns IDs to both.
func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	if !sale.CreatedAt.IsZero() {
		sale.CreatedAt = sale.CreatedAt.UTC()
	}
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uint) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sale.CreatedAt = sale.CreatedAt.UTC()
	return &sale, nil
}

// GetDetail loads the sale with its items. Items whose product was deleted
// are kept and named "Unbekannt".
func (r *saleRepository) GetDetail(ctx context.Context, id uint) (*entity.SaleDetail, error) {
	sale, err := r.GetByID(ctx, id)
	if err != nil || sale == nil {
		return nil, err
	}

	items := []entity.SaleItemDetail{}
	err = r.db.WithContext(ctx).Raw(`
		SELECT
			si.id, si.product_id, si.quantity, si.unit_price, si.total_price,
			COALESCE(p.name, 'Unbekannt') AS product_name,
			COALESCE(p.category, '') AS category
		FROM sale_items si
		LEFT JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = ?
		ORDER BY si.id ASC
	`, id).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return &entity.SaleDetail{Sale: *sale, Items: items}, nil
}

func (r *saleRepository) ListRecent(ctx context.Context, limit int) ([]entity.SaleSummary, error) {
	var sales []entity.Sale
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return r.withItemCounts(ctx, sales)
}

func (r *saleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]entity.SaleSummary, error) {
	var sales []entity.Sale
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC").Order("id ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return r.withItemCounts(ctx, sales)
}

func (r *saleRepository) MarkPrinted(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Where("id = ?", id).
		Update("printed", true)
	return result.RowsAffected > 0, result.Error
}

type itemCount struct {
	SaleID uint
	Count  int
}

// withItemCounts attaches the number of item lines to each sale in one query
func (r *saleRepository) withItemCounts(ctx context.Context, sales []entity.Sale) ([]entity.SaleSummary, error) {
	summaries := make([]entity.SaleSummary, 0, len(sales))
	if len(sales) == 0 {
		return summaries, nil
	}

	ids := make([]uint, 0, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
	}

	var counts []itemCount
	err := r.db.WithContext(ctx).Model(&entity.SaleItem{}).
		Select("sale_id, COUNT(*) AS count").
		Where("sale_id IN ?", ids).
		Group("sale_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	bySale := make(map[uint]int, len(counts))
	for _, c := range counts {
		bySale[c.SaleID] = c.Count
	}

	for _, s := range sales {
		s.CreatedAt = s.CreatedAt.UTC()
		summaries = append(summaries, entity.SaleSummary{Sale: s, ItemCount: bySale[s.ID]})
	}
	return summaries, nil
}
