package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
	"github.com/sangkips/kassensystem/internal/presentation/http/middleware"
	"gorm.io/gorm"
)

// features advertised by /api/system/info
var features = []string{
	"products",
	"sales",
	"receipts",
	"daily_reports",
	"report_export",
	"product_import",
}

// SystemInfo describes the running instance
type SystemInfo struct {
	Name             string   `json:"name"`
	Version          string   `json:"version"`
	PrinterAvailable bool     `json:"printer_available"`
	PrinterType      string   `json:"printer_type"`
	Features         []string `json:"features"`
	PaymentMethods   []string `json:"payment_methods"`

	RateLimit *middleware.RateLimiterStats `json:"rate_limit,omitempty"`
}

// RateLimitStats is implemented by the request rate limiter
type RateLimitStats interface {
	Stats() middleware.RateLimiterStats
}

// SystemHandler serves health and instance information
type SystemHandler struct {
	db             *gorm.DB
	printerService *service.PrinterService
	limiter        RateLimitStats
	name           string
	version        string
}

// NewSystemHandler creates a new system handler. limiter may be nil when
// rate limiting is off.
func NewSystemHandler(db *gorm.DB, printerService *service.PrinterService, limiter RateLimitStats, name, version string) *SystemHandler {
	return &SystemHandler{
		db:             db,
		printerService: printerService,
		limiter:        limiter,
		name:           name,
		version:        version,
	}
}

// Health reports whether the database answers
func (h *SystemHandler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": h.name,
	})
}

// Info returns version, printer availability and features
func (h *SystemHandler) Info(c *gin.Context) {
	printer := h.printerService.GetStatus()
	info := SystemInfo{
		Name:             h.name,
		Version:          h.version,
		PrinterAvailable: printer.Available,
		PrinterType:      printer.Type,
		Features:         features,
		PaymentMethods:   paymentMethods(),
	}
	if h.limiter != nil {
		stats := h.limiter.Stats()
		info.RateLimit = &stats
	}
	response.OK(c, "Systeminformationen", info)
}

func paymentMethods() []string {
	known := enum.KnownPaymentMethods()
	out := make([]string, 0, len(known))
	for _, m := range known {
		out = append(out, m.String())
	}
	return out
}
