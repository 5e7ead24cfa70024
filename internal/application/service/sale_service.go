package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/internal/domain/repository"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
	"go.uber.org/zap"
)

// RecentSalesLimit is how many sales the sales list returns
const RecentSalesLimit = 100

// MaxQuantity caps the quantity of a single cart line
const MaxQuantity = 100_000

// SaleService completes checkouts and serves the sale ledger
type SaleService struct {
	txManager      repository.TxManager
	saleRepo       repository.SaleRepository
	formatter      *ReceiptFormatter
	dispatcher     *PrintDispatcher
	loc            *time.Location
	defaultCashier string
	rejectOversell bool
}

// SaleServiceOptions holds the sale policies taken from configuration
type SaleServiceOptions struct {
	DefaultCashier string
	RejectOversell bool
	Location       *time.Location
}

// NewSaleService creates a new sale service
func NewSaleService(
	txManager repository.TxManager,
	saleRepo repository.SaleRepository,
	formatter *ReceiptFormatter,
	dispatcher *PrintDispatcher,
	opts SaleServiceOptions,
) *SaleService {
	if opts.DefaultCashier == "" {
		opts.DefaultCashier = "System"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &SaleService{
		txManager:      txManager,
		saleRepo:       saleRepo,
		formatter:      formatter,
		dispatcher:     dispatcher,
		loc:            opts.Location,
		defaultCashier: opts.DefaultCashier,
		rejectOversell: opts.RejectOversell,
	}
}

// SaleItemInput is one cart line. A nil UnitPrice takes the catalog price,
// a nil TotalPrice is computed.
type SaleItemInput struct {
	ProductID  uint
	Quantity   int
	UnitPrice  *money.Amount
	TotalPrice *money.Amount
}

// CompleteSaleInput represents a checkout request
type CompleteSaleInput struct {
	Items          []SaleItemInput
	TotalAmount    *money.Amount
	PaymentMethod  enum.PaymentMethod
	Cashier        string
	AutoPrint      *bool
	ReceivedAmount *money.Amount
}

// SaleResult is returned for a completed sale. PrintResult is set when a
// print was attempted.
type SaleResult struct {
	SaleID      uint          `json:"sale_id"`
	PrintResult *PrintOutcome `json:"print_result,omitempty"`
}

// CompleteSale records the sale with its items and decrements stock in one
// transaction, then prints the receipt if requested. A failed print never
// fails the sale.
func (s *SaleService) CompleteSale(ctx context.Context, input *CompleteSaleInput) (*SaleResult, error) {
	if len(input.Items) == 0 {
		return nil, apperror.ErrEmptyCart
	}

	method := input.PaymentMethod.Normalize()
	if fieldErrs := validateCart(input, method); len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}

	cashier := strings.TrimSpace(input.Cashier)
	if cashier == "" {
		cashier = s.defaultCashier
	}

	sale := &entity.Sale{
		PaymentMethod:  method,
		Cashier:        cashier,
		ReceivedAmount: input.ReceivedAmount,
	}

	err := s.txManager.WithinTransaction(ctx, func(repos repository.Repositories) error {
		products, err := loadCartProducts(ctx, repos.Products, input.Items)
		if err != nil {
			return err
		}

		items, err := buildSaleItems(input.Items, products)
		if err != nil {
			return err
		}
		sale.Items = items
		if sale.TotalAmount, err = sumItems(items); err != nil {
			return err
		}

		if input.TotalAmount != nil && *input.TotalAmount != sale.TotalAmount {
			return &apperror.AppError{
				Status:  http.StatusUnprocessableEntity,
				Code:    apperror.CodeTotalMismatch,
				Message: fmt.Sprintf("Gesamtbetrag %s stimmt nicht mit der Summe der Positionen %s überein", input.TotalAmount.Euro(), sale.TotalAmount.Euro()),
			}
		}
		if method.IsCash() && sale.ReceivedAmount != nil && *sale.ReceivedAmount < sale.TotalAmount {
			return apperror.NewFieldError("received_amount", "Erhaltener Betrag ist kleiner als der Gesamtbetrag")
		}

		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}

		return s.decrementStock(ctx, repos.Products, items, products)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		zap.S().Errorw("sale transaction failed", "error", err)
		return nil, apperror.NewPersistenceError(err)
	}

	zap.S().Infow("sale completed",
		"sale_id", sale.ID,
		"total", sale.TotalAmount.String(),
		"payment_method", sale.PaymentMethod,
		"items", len(sale.Items),
	)

	result := &SaleResult{SaleID: sale.ID}
	autoPrint := input.AutoPrint == nil || *input.AutoPrint
	if autoPrint && s.dispatcher.Available() {
		outcome := s.printSale(ctx, sale.ID)
		result.PrintResult = &outcome
	}

	return result, nil
}

func validateCart(input *CompleteSaleInput, method enum.PaymentMethod) []apperror.FieldError {
	var fieldErrs []apperror.FieldError
	if method == "" {
		fieldErrs = append(fieldErrs, apperror.FieldError{Field: "payment_method", Message: "Zahlungsart ist erforderlich"})
	}
	if input.TotalAmount != nil && *input.TotalAmount < 0 {
		fieldErrs = append(fieldErrs, apperror.FieldError{Field: "total_amount", Message: "Betrag darf nicht negativ sein"})
	}
	for i, item := range input.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if item.ProductID == 0 {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: prefix + "product_id", Message: "Produkt-ID ist erforderlich"})
		}
		if item.Quantity <= 0 {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: prefix + "quantity", Message: "Menge muss größer als 0 sein"})
		} else if item.Quantity > MaxQuantity {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: prefix + "quantity", Message: fmt.Sprintf("Menge darf höchstens %d sein", MaxQuantity)})
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: prefix + "unit_price", Message: "Preis darf nicht negativ sein"})
		}
	}
	return fieldErrs
}

func loadCartProducts(ctx context.Context, repo repository.ProductRepository, items []SaleItemInput) (map[uint]entity.Product, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	found, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	products := make(map[uint]entity.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, apperror.NewNotFoundError(apperror.CodeProductNotFound, fmt.Sprintf("Produkt %d nicht gefunden", id))
		}
	}
	return products, nil
}

func buildSaleItems(inputs []SaleItemInput, products map[uint]entity.Product) ([]entity.SaleItem, error) {
	items := make([]entity.SaleItem, 0, len(inputs))
	for i, in := range inputs {
		unitPrice := products[in.ProductID].Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}

		lineTotal, err := unitPrice.Mul(in.Quantity)
		if err != nil {
			return nil, apperror.NewAmountOutOfRangeError(fmt.Sprintf("items[%d].total_price", i))
		}
		if in.TotalPrice != nil && *in.TotalPrice != lineTotal {
			return nil, &apperror.AppError{
				Status:  http.StatusUnprocessableEntity,
				Code:    apperror.CodeLineTotalMismatch,
				Message: fmt.Sprintf("Position %d: %d x %s ergibt %s, nicht %s", i+1, in.Quantity, unitPrice.Euro(), lineTotal.Euro(), in.TotalPrice.Euro()),
				Errors:  []apperror.FieldError{{Field: fmt.Sprintf("items[%d].total_price", i), Message: "Positionsbetrag stimmt nicht"}},
			}
		}

		items = append(items, entity.SaleItem{
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
	}
	return items, nil
}

func sumItems(items []entity.SaleItem) (money.Amount, error) {
	totals := make([]money.Amount, 0, len(items))
	for _, item := range items {
		totals = append(totals, item.TotalPrice)
	}
	total, err := money.Sum(totals...)
	if err != nil {
		return 0, apperror.NewAmountOutOfRangeError("total_amount")
	}
	return total, nil
}

// decrementStock applies relative stock updates, one per product in id order
// so concurrent sales lock rows in the same sequence.
func (s *SaleService) decrementStock(ctx context.Context, repo repository.ProductRepository, items []entity.SaleItem, products map[uint]entity.Product) error {
	quantities := make(map[uint]int, len(items))
	for _, item := range items {
		quantities[item.ProductID] += item.Quantity
	}

	ids := make([]uint, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		qty := quantities[id]
		if !s.rejectOversell {
			if err := repo.AdjustStock(ctx, id, -qty); err != nil {
				return err
			}
			continue
		}

		ok, err := repo.DecrementStockIfAvailable(ctx, id, qty)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.New(http.StatusConflict, apperror.CodeInsufficientStock,
				fmt.Sprintf("Nicht genügend Bestand für %s", products[id].Name))
		}
	}
	return nil
}

// printSale formats a stored sale and dispatches it; printed is set on success only
func (s *SaleService) printSale(ctx context.Context, saleID uint) PrintOutcome {
	detail, err := s.saleRepo.GetDetail(ctx, saleID)
	if err != nil || detail == nil {
		zap.S().Errorw("failed to load sale for printing", "sale_id", saleID, "error", err)
		return printFailure(apperror.CodePrintFailed, "Beleg konnte nicht geladen werden", err)
	}

	outcome := s.dispatcher.Dispatch(ctx, s.formatter.Render(s.formatter.FromSale(detail)))
	if !outcome.Success {
		return outcome
	}

	if _, err := s.saleRepo.MarkPrinted(ctx, saleID); err != nil {
		zap.S().Errorw("failed to mark sale printed", "sale_id", saleID, "error", err)
	}
	return outcome
}

// ListRecentSales returns the newest sales first
func (s *SaleService) ListRecentSales(ctx context.Context) ([]entity.SaleSummary, error) {
	sales, err := s.saleRepo.ListRecent(ctx, RecentSalesLimit)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	return sales, nil
}

// GetSale returns a sale with its items
func (s *SaleService) GetSale(ctx context.Context, id uint) (*entity.SaleDetail, error) {
	detail, err := s.saleRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if detail == nil {
		return nil, apperror.ErrSaleNotFound
	}
	return detail, nil
}

// Receipt returns the formatted receipt of a stored sale without printing it
func (s *SaleService) Receipt(ctx context.Context, id uint) (*entity.ReceiptDocument, error) {
	detail, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.formatter.Format(s.formatter.FromSale(detail)), nil
}

// Reprint prints the receipt of a stored sale again
func (s *SaleService) Reprint(ctx context.Context, id uint) (*PrintOutcome, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if sale == nil {
		return nil, apperror.ErrSaleNotFound
	}

	outcome := s.printSale(ctx, id)
	return &outcome, nil
}

// saleExportRow is one line of the daily sales CSV
type saleExportRow struct {
	ID            uint         `csv:"sale_id"`
	CreatedAt     string       `csv:"created_at"`
	PaymentMethod string       `csv:"payment_method"`
	Cashier       string       `csv:"cashier"`
	ItemCount     int          `csv:"item_count"`
	TotalAmount   money.Amount `csv:"total_amount"`
	Printed       bool         `csv:"printed"`
}

// ExportDayCSV writes all sales of one calendar date as CSV
func (s *SaleService) ExportDayCSV(ctx context.Context, date string, w io.Writer) error {
	day, err := ParseDay(date, s.loc, time.Now())
	if err != nil {
		return err
	}

	sales, err := s.saleRepo.ListBetween(ctx, day.From, day.To)
	if err != nil {
		return apperror.NewPersistenceError(err)
	}

	rows := make([]saleExportRow, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, saleExportRow{
			ID:            sale.ID,
			CreatedAt:     sale.CreatedAt.In(s.loc).Format("2006-01-02 15:04:05"),
			PaymentMethod: sale.PaymentMethod.String(),
			Cashier:       sale.Cashier,
			ItemCount:     sale.ItemCount,
			TotalAmount:   sale.TotalAmount,
			Printed:       sale.Printed,
		})
	}

	return gocsv.Marshal(&rows, w)
}
