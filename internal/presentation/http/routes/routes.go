package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/config"
	domainRepo "github.com/sangkips/kassensystem/internal/domain/repository"
	"github.com/sangkips/kassensystem/internal/presentation/http/handler"
	"github.com/sangkips/kassensystem/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	System  *handler.SystemHandler
	Product *handler.ProductHandler
	Sale    *handler.SaleHandler
	Report  *handler.ReportHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Logger          *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.IPRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	handler.UseJSONFieldNames()

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.System.Health)

	api := router.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}
	{
		api.GET("/system/info", h.System.Info)

		registerProductRoutes(api, h)
		registerSaleRoutes(api, h, deps, log)
		registerReportRoutes(api, h)
		registerPrinterRoutes(api, h)
	}

	return router
}

func registerProductRoutes(api *gin.RouterGroup, h *Handlers) {
	products := api.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/search/:barcode", h.Product.SearchByBarcode)
		products.POST("/import", h.Product.Import)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerSaleRoutes(api *gin.RouterGroup, h *Handlers, deps *Deps, log *zap.Logger) {
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:     deps.IdempotencyRepo,
		TTL:      deps.Cfg.Idempotency.TTL,
		Required: deps.Cfg.Sales.RequireIdempotencyKey,
		Logger:   log,
	})

	sales := api.Group("/sales")
	{
		sales.POST("", idempotency, h.Sale.Create)
		sales.GET("", h.Sale.List)
		sales.GET("/export", h.Sale.Export)
		sales.GET("/:id", h.Sale.Get)
		sales.GET("/:id/receipt", h.Sale.Receipt)
		sales.POST("/:id/print", h.Sale.Print)
	}
}

func registerReportRoutes(api *gin.RouterGroup, h *Handlers) {
	reports := api.Group("/reports")
	{
		reports.GET("/daily", h.Report.Daily)
		reports.GET("/daily/xlsx", h.Report.DailyXLSX)
		reports.GET("/daily/pdf", h.Report.DailyPDF)
	}
}

func registerPrinterRoutes(api *gin.RouterGroup, h *Handlers) {
	printer := api.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.GET("/test", h.Printer.TestPrint)
		printer.POST("/test", h.Printer.TestPrint)
		printer.POST("/receipt", h.Printer.PrintReceipt)
		printer.GET("/cut", h.Printer.Cut)
		printer.POST("/cut", h.Printer.Cut)
		printer.GET("/drawer", h.Printer.OpenDrawer)
		printer.POST("/drawer", h.Printer.OpenDrawer)
	}
}
