package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/repository"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ProductService handles catalog operations
type ProductService struct {
	productRepo       repository.ProductRepository
	lowStockThreshold int
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, lowStockThreshold int) *ProductService {
	return &ProductService{
		productRepo:       productRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name     string
	Price    money.Amount
	Category string
	Barcode  string
	Stock    int
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name ist erforderlich")
	}
	if input.Price < 0 {
		return nil, apperror.NewFieldError("price", "Preis darf nicht negativ sein")
	}

	barcode := normalizeBarcode(input.Barcode)
	if err := s.ensureBarcodeFree(ctx, barcode, 0); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:     name,
		Price:    input.Price,
		Category: strings.TrimSpace(input.Category),
		Barcode:  barcode,
		Stock:    input.Stock,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, catalogError(err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, catalogError(err)
	}
	if product == nil {
		return nil, apperror.ErrProductMissing
	}
	return product, nil
}

// GetByBarcode looks up a product by its scanned barcode
func (s *ProductService) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	product, err := s.productRepo.GetByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, catalogError(err)
	}
	if product == nil {
		return nil, apperror.ErrProductMissing
	}
	return product, nil
}

// ListProducts lists products ordered by name
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, error) {
	products, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, catalogError(err)
	}
	return products, nil
}

// UpdateProductInput represents the update product input. Nil fields are left unchanged.
type UpdateProductInput struct {
	Name     *string
	Price    *money.Amount
	Category *string
	Barcode  *string
	Stock    *int
}

// UpdateProduct updates a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "Name ist erforderlich")
		}
		product.Name = name
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperror.NewFieldError("price", "Preis darf nicht negativ sein")
		}
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Barcode != nil {
		barcode := normalizeBarcode(*input.Barcode)
		if err := s.ensureBarcodeFree(ctx, barcode, product.ID); err != nil {
			return nil, err
		}
		product.Barcode = barcode
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, catalogError(err)
	}

	return product, nil
}

// DeleteProduct deletes a product. Historical sale items keep their product id.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return catalogError(err)
	}
	if !deleted {
		return apperror.ErrProductMissing
	}
	return nil
}

// GetLowStockProducts returns products whose stock is at or below threshold.
// A negative threshold selects the configured default.
func (s *ProductService) GetLowStockProducts(ctx context.Context, threshold int) ([]entity.Product, error) {
	if threshold < 0 {
		threshold = s.lowStockThreshold
	}
	return s.ListProducts(ctx, &repository.ProductFilterParams{MaxStock: &threshold})
}

func (s *ProductService) ensureBarcodeFree(ctx context.Context, barcode *string, selfID uint) error {
	if barcode == nil {
		return nil
	}
	existing, err := s.productRepo.GetByBarcode(ctx, *barcode)
	if err != nil {
		return catalogError(err)
	}
	if existing != nil && existing.ID != selfID {
		return apperror.ErrDuplicate
	}
	return nil
}

func normalizeBarcode(barcode string) *string {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil
	}
	return &barcode
}

// catalogError maps storage errors; a unique violation that slipped past
// the pre-check is still a duplicate barcode.
func catalogError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrDuplicate
	}
	return apperror.NewPersistenceError(err)
}

// ImportProductRow represents a single row from the import file
type ImportProductRow struct {
	Name     string `csv:"name"`
	Price    string `csv:"price"`
	Category string `csv:"category"`
	Barcode  string `csv:"barcode"`
	Stock    string `csv:"stock"`
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseImportCSV reads import rows from a CSV file with a header line
func ParseImportCSV(r io.Reader) ([]ImportProductRow, error) {
	var rows []ImportProductRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, apperror.NewBadRequestError(apperror.CodeBadRequest, "CSV-Datei konnte nicht gelesen werden: "+err.Error())
	}
	return rows, nil
}

// ParseImportXLSX reads import rows from the first sheet of an XLSX workbook.
// Columns are matched by their header names.
func ParseImportXLSX(r io.Reader) ([]ImportProductRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewBadRequestError(apperror.CodeBadRequest, "XLSX-Datei konnte nicht gelesen werden: "+err.Error())
	}
	defer f.Close()

	sheetRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, apperror.NewBadRequestError(apperror.CodeBadRequest, "XLSX-Datei konnte nicht gelesen werden: "+err.Error())
	}
	if len(sheetRows) == 0 {
		return []ImportProductRow{}, nil
	}

	columns := make(map[string]int, len(sheetRows[0]))
	for i, h := range sheetRows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rows := make([]ImportProductRow, 0, len(sheetRows)-1)
	for _, row := range sheetRows[1:] {
		rows = append(rows, ImportProductRow{
			Name:     cell(row, "name"),
			Price:    cell(row, "price"),
			Category: cell(row, "category"),
			Barcode:  cell(row, "barcode"),
			Stock:    cell(row, "stock"),
		})
	}
	return rows, nil
}

// ImportProducts validates and bulk-creates products from parsed import rows
func (s *ProductService) ImportProducts(ctx context.Context, rows []ImportProductRow) (*ImportResult, error) {
	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError

	// barcode -> row number, for duplicates within the file
	seenBarcodes := make(map[string]int)

	var validProducts []entity.Product

	for i, row := range rows {
		rowNum := i + 2 // row 1 is the header

		name := strings.TrimSpace(row.Name)
		if name == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "name", Message: "Name ist erforderlich"})
			continue
		}

		price, err := money.Parse(strings.TrimSpace(row.Price))
		if err != nil || price < 0 {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "price", Message: fmt.Sprintf("Ungültiger Preis '%s'", row.Price)})
			continue
		}

		stock := 0
		if v := strings.TrimSpace(row.Stock); v != "" {
			stock, err = strconv.Atoi(v)
			if err != nil {
				rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "stock", Message: fmt.Sprintf("Ungültiger Bestand '%s'", row.Stock)})
				continue
			}
		}

		barcode := normalizeBarcode(row.Barcode)
		if barcode != nil {
			if prevRow, exists := seenBarcodes[*barcode]; exists {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "barcode",
					Message: fmt.Sprintf("Barcode '%s' doppelt (wie Zeile %d)", *barcode, prevRow),
				})
				continue
			}

			existing, err := s.productRepo.GetByBarcode(ctx, *barcode)
			if err != nil {
				return nil, catalogError(err)
			}
			if existing != nil {
				rowErrors = append(rowErrors, ImportRowError{
					Row:     rowNum,
					Field:   "barcode",
					Message: fmt.Sprintf("Barcode '%s' bereits vorhanden", *barcode),
				})
				continue
			}
			seenBarcodes[*barcode] = rowNum
		}

		validProducts = append(validProducts, entity.Product{
			Name:     name,
			Price:    price,
			Category: strings.TrimSpace(row.Category),
			Barcode:  barcode,
			Stock:    stock,
		})
	}

	if len(validProducts) > 0 {
		if err := s.productRepo.CreateBatch(ctx, validProducts); err != nil {
			return nil, catalogError(err)
		}
	}

	result.Successful = len(validProducts)
	result.Failed = len(rowErrors)
	result.Errors = rowErrors

	return result, nil
}
