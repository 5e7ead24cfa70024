package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sangkips/kassensystem/internal/domain/entity"
	domainRepo "github.com/sangkips/kassensystem/internal/domain/repository"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// CreateBatch inserts all products in one transaction
func (r *productRepository) CreateBatch(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&products, 100).Error
	})
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uint) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "barcode = ?", barcode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, error) {
	var products []entity.Product

	query := r.db.WithContext(ctx).Model(&entity.Product{})
	if params != nil {
		if params.Search != "" {
			like := "%" + strings.ToLower(params.Search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR barcode LIKE ?", like, like)
		}
		if params.Category != "" {
			query = query.Where("category = ?", params.Category)
		}
		if params.MaxStock != nil {
			query = query.Where("stock <= ?", *params.MaxStock)
		}
	}

	err := query.Order("name ASC").Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error
	return count, err
}

// AdjustStock applies a relative stock change.
// Uses: UPDATE products SET stock = stock + delta WHERE id = ?
func (r *productRepository) AdjustStock(ctx context.Context, id uint, delta int) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStockIfAvailable atomically decrements stock only if sufficient quantity exists.
// Uses: UPDATE products SET stock = stock - amount WHERE id = ? AND stock >= amount
func (r *productRepository) DecrementStockIfAvailable(ctx context.Context, id uint, amount int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Update("stock", gorm.Expr("stock - ?", amount))

	if result.Error != nil {
		return false, result.Error
	}

	// If no rows were affected, insufficient stock
	return result.RowsAffected > 0, nil
}
