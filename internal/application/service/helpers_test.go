package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	domainRepo "github.com/sangkips/kassensystem/internal/domain/repository"
	"github.com/sangkips/kassensystem/internal/infrastructure/database"
	"github.com/sangkips/kassensystem/internal/infrastructure/repository"
	"github.com/sangkips/kassensystem/pkg/money"
	"github.com/sangkips/kassensystem/pkg/printer"
)

var berlin = mustLoad("Europe/Berlin")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testHeader() entity.ReceiptHeader {
	return entity.ReceiptHeader{
		StoreName: "KASSENSYSTEM",
		Subtitle:  "Ihr Geschäft",
		VATNote:   "Alle Preise inkl. 19% MwSt",
	}
}

func newFormatter() *service.ReceiptFormatter {
	return service.NewReceiptFormatter(48, printer.CodePageUTF8, testHeader(), berlin)
}

func newDispatcher(t *testing.T, p printer.Printer, workers int, timeout time.Duration) *service.PrintDispatcher {
	t.Helper()
	d, err := service.NewPrintDispatcher(p, workers, timeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

type fixture struct {
	db       *gorm.DB
	products domainRepo.ProductRepository
	sales    domainRepo.SaleRepository
	service  *service.SaleService
}

func newSaleFixture(t *testing.T, p printer.Printer, rejectOversell bool) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:       db,
		products: repository.NewProductRepository(db),
		sales:    repository.NewSaleRepository(db),
	}
	f.service = service.NewSaleService(
		repository.NewTxManager(db),
		f.sales,
		newFormatter(),
		newDispatcher(t, p, 2, time.Second),
		service.SaleServiceOptions{DefaultCashier: "System", RejectOversell: rejectOversell, Location: berlin},
	)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: name, Price: money.MustParse(price), Category: "Test", Stock: stock}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) saleCount(t *testing.T) (sales, items int64) {
	t.Helper()
	require.NoError(t, f.db.Model(&entity.Sale{}).Count(&sales).Error)
	require.NoError(t, f.db.Model(&entity.SaleItem{}).Count(&items).Error)
	return sales, items
}

func amount(s string) *money.Amount {
	a := money.MustParse(s)
	return &a
}

// recordingPrinter keeps every payload it receives
type recordingPrinter struct {
	mu   sync.Mutex
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *recordingPrinter) Close() error      { return nil }
func (p *recordingPrinter) IsConnected() bool { return p.err == nil }
func (p *recordingPrinter) Name() string      { return "recording" }

func (p *recordingPrinter) Jobs() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobs
}

// blockingPrinter holds each job until released or the context ends
type blockingPrinter struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingPrinter() *blockingPrinter {
	return &blockingPrinter{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (p *blockingPrinter) Print(ctx context.Context, _ []byte) error {
	p.started <- struct{}{}
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *blockingPrinter) Close() error      { return nil }
func (p *blockingPrinter) IsConnected() bool { return true }
func (p *blockingPrinter) Name() string      { return "blocking" }

type panickingPrinter struct{}

func (panickingPrinter) Print(context.Context, []byte) error { panic("paper jam") }
func (panickingPrinter) Close() error                        { return nil }
func (panickingPrinter) IsConnected() bool                   { return true }
func (panickingPrinter) Name() string                        { return "panicking" }

var errOffline = errors.New("device offline")
