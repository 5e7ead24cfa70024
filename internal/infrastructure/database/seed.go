package database

import (
	"github.com/pkg/errors"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/pkg/money"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedProduct struct {
	name     string
	price    string
	category string
	barcode  string
	stock    int
}

var defaultProducts = []seedProduct{
	{"Apfel", "0.50", "Obst", "1234567890123", 100},
	{"Banane", "0.30", "Obst", "1234567890124", 80},
	{"Brot", "2.50", "Backwaren", "1234567890125", 20},
	{"Milch", "1.20", "Molkereiprodukte", "1234567890126", 30},
	{"Kaffee", "4.99", "Getränke", "1234567890127", 15},
	{"Cola", "1.50", "Getränke", "1234567890128", 50},
	{"Schokolade", "2.99", "Süßwaren", "1234567890129", 25},
	{"Chips", "1.99", "Snacks", "1234567890130", 40},
}

// SeedDefaultData fills an empty catalog with the demo assortment
func SeedDefaultData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Product{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count products")
	}
	if count > 0 {
		return nil
	}

	zap.S().Info("Seeding default products...")

	products := make([]entity.Product, 0, len(defaultProducts))
	for _, p := range defaultProducts {
		barcode := p.barcode
		products = append(products, entity.Product{
			Name:     p.name,
			Price:    money.MustParse(p.price),
			Category: p.category,
			Barcode:  &barcode,
			Stock:    p.stock,
		})
	}

	if err := db.Create(&products).Error; err != nil {
		return errors.Wrap(err, "failed to seed products")
	}

	zap.S().Infof("Seeded %d products", len(products))
	return nil
}
