package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/request"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
)

// SaleHandler handles checkout and sale ledger requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create completes a sale
func (h *SaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	items := make([]service.SaleItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.SaleItemInput{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}

	result, err := h.saleService.CompleteSale(c.Request.Context(), &service.CompleteSaleInput{
		Items:          items,
		TotalAmount:    req.TotalAmount,
		PaymentMethod:  enum.PaymentMethod(req.PaymentMethod),
		Cashier:        req.Cashier,
		AutoPrint:      req.AutoPrint,
		ReceivedAmount: req.ReceivedAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Verkauf abgeschlossen"
	if result.PrintResult != nil && !result.PrintResult.Success {
		message = "Verkauf abgeschlossen, Beleg wurde nicht gedruckt"
	}
	response.Created(c, message, result)
}

// List returns the most recent sales
func (h *SaleHandler) List(c *gin.Context) {
	sales, err := h.saleService.ListRecentSales(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Verkäufe geladen", sales)
}

// Get returns one sale with its items
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Verkauf geladen", sale)
}

// Receipt returns the formatted receipt text of a sale
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.saleService.Receipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Beleg erstellt", doc)
}

// Print prints the receipt of a stored sale again
func (h *SaleHandler) Print(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	outcome, err := h.saleService.Reprint(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	writeOutcome(c, *outcome, outcome)
}

// Export streams all sales of a day as CSV
func (h *SaleHandler) Export(c *gin.Context) {
	var req request.DayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.saleService.ExportDayCSV(c.Request.Context(), req.Date, &buf); err != nil {
		response.Error(c, err)
		return
	}

	name := "verkaeufe.csv"
	if req.Date != "" {
		name = fmt.Sprintf("verkaeufe-%s.csv", req.Date)
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
