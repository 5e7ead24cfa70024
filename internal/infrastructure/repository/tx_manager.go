package repository

import (
	"context"

	domainRepo "github.com/sangkips/kassensystem/internal/domain/repository"
	"gorm.io/gorm"
)

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over db
func NewTxManager(db *gorm.DB) domainRepo.TxManager {
	return &txManager{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// fn must only use the repositories it is given.
func (m *txManager) WithinTransaction(ctx context.Context, fn func(repos domainRepo.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(domainRepo.Repositories{
			Products: NewProductRepository(tx),
			Sales:    NewSaleRepository(tx),
		})
	})
}
