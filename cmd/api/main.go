package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/config"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/infrastructure/database"
	"github.com/sangkips/kassensystem/internal/infrastructure/logger"
	"github.com/sangkips/kassensystem/internal/infrastructure/repository"
	"github.com/sangkips/kassensystem/internal/infrastructure/scheduler"
	"github.com/sangkips/kassensystem/internal/presentation/http/handler"
	"github.com/sangkips/kassensystem/internal/presentation/http/middleware"
	"github.com/sangkips/kassensystem/internal/presentation/http/routes"
	"github.com/sangkips/kassensystem/pkg/printer"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.Init(cfg.Log, cfg.App.IsProduction())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := database.SeedDefaultData(db); err != nil {
		log.Warn("failed to seed default data", zap.Error(err))
	}

	loc := cfg.App.Location()

	// Repositories
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	txManager := repository.NewTxManager(db)

	// Thermal printer; a missing printer only disables printing
	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	switch {
	case errors.Is(err, printer.ErrNotConfigured):
		log.Info("no printer configured, receipts will not be printed")
	case err != nil:
		log.Warn("failed to initialize printer", zap.Error(err))
		thermalPrinter = nil
	}

	dispatcher, err := service.NewPrintDispatcher(thermalPrinter, cfg.Printer.Workers, cfg.Printer.Timeout)
	if err != nil {
		log.Fatal("failed to start print dispatcher", zap.Error(err))
	}
	defer dispatcher.Close()

	formatter := service.NewReceiptFormatter(cfg.Printer.Width, printer.CodePage(cfg.Printer.CodePage), entity.ReceiptHeader{
		StoreName: cfg.Store.Name,
		Subtitle:  cfg.Store.Subtitle,
		VATNote:   cfg.Store.VATNote,
	}, loc)

	// Services
	productService := service.NewProductService(productRepo, cfg.Sales.LowStockThreshold)
	saleService := service.NewSaleService(txManager, saleRepo, formatter, dispatcher, service.SaleServiceOptions{
		DefaultCashier: cfg.Store.DefaultCashier,
		RejectOversell: cfg.Sales.RejectOversell,
		Location:       loc,
	})
	reportService := service.NewReportService(reportRepo, loc)
	printerService := service.NewPrinterService(dispatcher, formatter, cfg.Printer.Type)

	rateLimiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	handlers := &routes.Handlers{
		System:  handler.NewSystemHandler(db, printerService, rateLimiter, cfg.App.Name, cfg.App.Version),
		Product: handler.NewProductHandler(productService),
		Sale:    handler.NewSaleHandler(saleService),
		Report:  handler.NewReportHandler(reportService),
		Printer: handler.NewPrinterHandler(printerService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Logger:          log,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	// Background jobs
	sched := scheduler.New(loc, log)
	if err := sched.AddIdempotencyCleanup(cfg.Idempotency.CleanupSpec, idempotencyRepo); err != nil {
		log.Fatal("failed to schedule cleanup", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	port := cfg.App.Port
	if port == "" {
		port = "5000"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server",
			zap.String("name", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.Bool("printer", dispatcher.Available()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
