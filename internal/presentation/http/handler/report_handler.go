package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/request"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ReportHandler serves the daily report and its exports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Daily returns the report of ?date=YYYY-MM-DD, today when omitted
func (h *ReportHandler) Daily(c *gin.Context) {
	report, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, "Tagesbericht erstellt", report)
}

// DailyXLSX downloads the daily report as a workbook
func (h *ReportHandler) DailyXLSX(c *gin.Context) {
	h.export(c, ".xlsx", contentTypeXLSX, service.WriteDailyReportXLSX)
}

// DailyPDF downloads the daily report as a PDF
func (h *ReportHandler) DailyPDF(c *gin.Context) {
	h.export(c, ".pdf", contentTypePDF, service.WriteDailyReportPDF)
}

func (h *ReportHandler) load(c *gin.Context) (*entity.DailyReport, bool) {
	var req request.DayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return nil, false
	}

	report, err := h.reportService.DailyReport(c.Request.Context(), req.Date)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return report, true
}

func (h *ReportHandler) export(c *gin.Context, ext, contentType string, write func(*entity.DailyReport, io.Writer) error) {
	report, ok := h.load(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := write(report, &buf); err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="tagesbericht-`+report.Date+ext+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
