package handler

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/repository"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/request"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
)

// maxImportSize caps uploaded catalog files
const maxImportSize = 10 << 20

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products ordered by name
func (h *ProductHandler) List(c *gin.Context) {
	var req request.ProductFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), &repository.ProductFilterParams{
		Search:   req.Search,
		Category: req.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Produkte geladen", products)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Name:     req.Name,
		Price:    *req.Price,
		Category: req.Category,
		Barcode:  req.Barcode,
		Stock:    req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Produkt erstellt", product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Produkt geladen", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &service.UpdateProductInput{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Barcode:  req.Barcode,
		Stock:    req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Produkt aktualisiert", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Produkt gelöscht", nil)
}

// SearchByBarcode handles the scanner lookup
func (h *ProductHandler) SearchByBarcode(c *gin.Context) {
	product, err := h.productService.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Produkt gefunden", product)
}

// GetLowStock handles getting low stock products
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	var req request.LowStockRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	threshold := -1
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	products, err := h.productService.GetLowStockProducts(c.Request.Context(), threshold)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Produkte mit niedrigem Bestand geladen", products)
}

// Import handles a multipart CSV or XLSX upload in the "file" field
func (h *ProductHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Datei fehlt (Feld 'file')")
		return
	}
	if fileHeader.Size > maxImportSize {
		response.BadRequest(c, "Datei ist zu groß")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Datei konnte nicht geöffnet werden")
		return
	}
	defer file.Close()

	var rows []service.ImportProductRow
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		rows, err = service.ParseImportCSV(file)
	case ".xlsx":
		rows, err = service.ParseImportXLSX(file)
	default:
		response.BadRequest(c, "Nur .csv und .xlsx werden unterstützt")
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.productService.ImportProducts(c.Request.Context(), rows)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Import abgeschlossen", result)
}
