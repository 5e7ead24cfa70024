package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/request"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Druckerstatus geladen", h.printerService.GetStatus())
}

// TestPrint sends a test page to the printer.
// The formatted page is part of the response even when printing failed.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	result := h.printerService.TestPrint(c.Request.Context())
	writeOutcome(c, result.PrintOutcome, result)
}

// PrintReceipt prints an ad-hoc receipt that is not stored as a sale.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	receipt := &entity.Receipt{
		Number:         req.ReceiptNumber,
		Cashier:        req.Cashier,
		PaymentMethod:  enum.PaymentMethod(req.PaymentMethod).Normalize(),
		ReceivedAmount: req.ReceivedAmount,
		Items:          make([]entity.ReceiptItem, 0, len(req.Items)),
	}
	totals := make([]money.Amount, 0, len(req.Items))
	for i, it := range req.Items {
		total, err := it.UnitPrice.Mul(it.Quantity)
		if err != nil {
			response.Error(c, apperror.NewAmountOutOfRangeError(fmt.Sprintf("items[%d].total_price", i)))
			return
		}
		if it.TotalPrice != nil {
			total = *it.TotalPrice
		}
		totals = append(totals, total)
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  *it.UnitPrice,
			TotalPrice: total,
		})
	}

	if _, err := money.Sum(totals...); err != nil {
		response.Error(c, apperror.NewAmountOutOfRangeError("items"))
		return
	}

	result := h.printerService.PrintReceipt(c.Request.Context(), receipt)
	writeOutcome(c, result.PrintOutcome, result)
}

// Cut cuts the paper.
func (h *PrinterHandler) Cut(c *gin.Context) {
	outcome := h.printerService.Cut(c.Request.Context())
	writeOutcome(c, outcome, outcome)
}

// OpenDrawer kicks the cash drawer.
func (h *PrinterHandler) OpenDrawer(c *gin.Context) {
	outcome := h.printerService.OpenDrawer(c.Request.Context())
	writeOutcome(c, outcome, outcome)
}

func writeOutcome(c *gin.Context, outcome service.PrintOutcome, data interface{}) {
	response.Outcome(c, outcomeStatus(outcome), outcome.Success, outcome.Code, outcome.Message, data)
}
