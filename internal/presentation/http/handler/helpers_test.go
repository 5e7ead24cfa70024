package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/config"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/infrastructure/database"
	"github.com/sangkips/kassensystem/internal/infrastructure/repository"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
	"github.com/sangkips/kassensystem/internal/presentation/http/handler"
	"github.com/sangkips/kassensystem/internal/presentation/http/middleware"
	"github.com/sangkips/kassensystem/internal/presentation/http/routes"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
	"github.com/sangkips/kassensystem/pkg/printer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope mirrors response.APIResponse with a raw payload
type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Code    apperror.Code         `json:"code"`
	Data    json.RawMessage       `json:"data"`
	Errors  []apperror.FieldError `json:"errors"`
	Meta    *response.Meta        `json:"meta"`
}

type app struct {
	router *gin.Engine
	db     *gorm.DB
}

type appOptions struct {
	printer            printer.Printer
	requireIdempotency bool
	rateLimiter        *middleware.IPRateLimiter
}

func newApp(t *testing.T, opts appOptions) *app {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "api.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		App:         config.AppConfig{Name: "kassensystem", Version: "2.0"},
		Sales:       config.SalesConfig{RequireIdempotencyKey: opts.requireIdempotency, LowStockThreshold: 5},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}

	formatter := service.NewReceiptFormatter(48, printer.CodePageUTF8, entity.ReceiptHeader{StoreName: "KASSENSYSTEM"}, time.UTC)
	dispatcher, err := service.NewPrintDispatcher(opts.printer, 1, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dispatcher.Close() })

	printerType := "none"
	if opts.printer != nil {
		printerType = "network"
	}

	productService := service.NewProductService(repository.NewProductRepository(db), cfg.Sales.LowStockThreshold)
	saleService := service.NewSaleService(repository.NewTxManager(db), repository.NewSaleRepository(db), formatter, dispatcher,
		service.SaleServiceOptions{DefaultCashier: "System", Location: time.UTC})
	reportService := service.NewReportService(repository.NewReportRepository(db), time.UTC)
	printerService := service.NewPrinterService(dispatcher, formatter, printerType)

	var limiter handler.RateLimitStats
	if opts.rateLimiter != nil {
		limiter = opts.rateLimiter
	}

	router := routes.Setup(&routes.Handlers{
		System:  handler.NewSystemHandler(db, printerService, limiter, cfg.App.Name, cfg.App.Version),
		Product: handler.NewProductHandler(productService),
		Sale:    handler.NewSaleHandler(saleService),
		Report:  handler.NewReportHandler(reportService),
		Printer: handler.NewPrinterHandler(printerService),
	}, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
		RateLimiter:     opts.rateLimiter,
	})

	return &app{router: router, db: db}
}

func (a *app) product(t *testing.T, name, price string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: name, Price: money.MustParse(price), Stock: stock}
	require.NoError(t, a.db.Create(p).Error)
	return p
}

func (a *app) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

type recordingPrinter struct {
	mu   sync.Mutex
	jobs [][]byte
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *recordingPrinter) Close() error      { return nil }
func (p *recordingPrinter) IsConnected() bool { return true }
func (p *recordingPrinter) Name() string      { return "recording" }

func (p *recordingPrinter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}
