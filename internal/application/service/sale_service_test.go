package service_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
)

func TestSaleService_CompleteSale(t *testing.T) {
	ctx := context.Background()

	t.Run("Should record a two item cash sale and decrement stock", func(t *testing.T) {
		p := &recordingPrinter{}
		f := newSaleFixture(t, p, false)
		a := f.product(t, "Apfel", "0.50", 10)
		b := f.product(t, "Brot", "2.50", 10)

		result, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items: []service.SaleItemInput{
				{ProductID: a.ID, Quantity: 3, UnitPrice: amount("0.50"), TotalPrice: amount("1.50")},
				{ProductID: b.ID, Quantity: 1, UnitPrice: amount("2.50"), TotalPrice: amount("2.50")},
			},
			TotalAmount:   amount("4.00"),
			PaymentMethod: enum.PaymentCash,
		})
		require.NoError(t, err)
		assert.NotZero(t, result.SaleID)

		detail, err := f.service.GetSale(ctx, result.SaleID)
		require.NoError(t, err)
		assert.Equal(t, money.MustParse("4.00"), detail.TotalAmount)
		assert.Equal(t, "System", detail.Cashier)
		require.Len(t, detail.Items, 2)

		var sum money.Amount
		for _, it := range detail.Items {
			want, err := it.UnitPrice.Mul(it.Quantity)
			require.NoError(t, err)
			assert.Equal(t, want, it.TotalPrice)
			sum += it.TotalPrice
		}
		assert.Equal(t, detail.TotalAmount, sum)

		assert.Equal(t, 7, f.stock(t, a.ID))
		assert.Equal(t, 9, f.stock(t, b.ID))

		sales, items := f.saleCount(t)
		assert.Equal(t, int64(1), sales)
		assert.Equal(t, int64(2), items)
	})

	t.Run("Should print and flag the sale when a printer is attached", func(t *testing.T) {
		p := &recordingPrinter{}
		f := newSaleFixture(t, p, false)
		a := f.product(t, "Apfel", "0.50", 10)

		result, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 2}},
			PaymentMethod: enum.PaymentCash,
		})
		require.NoError(t, err)
		require.NotNil(t, result.PrintResult)
		assert.True(t, result.PrintResult.Success)

		require.Len(t, p.Jobs(), 1)
		assert.True(t, bytes.Contains(p.Jobs()[0], []byte("GESAMT:")))

		detail, err := f.service.GetSale(ctx, result.SaleID)
		require.NoError(t, err)
		assert.True(t, detail.Printed)
		assert.Equal(t, money.MustParse("1.00"), detail.TotalAmount)
	})

	t.Run("Should keep the sale when printing fails", func(t *testing.T) {
		f := newSaleFixture(t, &recordingPrinter{err: errOffline}, false)
		a := f.product(t, "Apfel", "0.50", 10)

		result, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 1}},
			PaymentMethod: enum.PaymentCard,
		})
		require.NoError(t, err)
		require.NotNil(t, result.PrintResult)
		assert.False(t, result.PrintResult.Success)
		assert.Equal(t, apperror.CodePrintFailed, result.PrintResult.Code)

		detail, err := f.service.GetSale(ctx, result.SaleID)
		require.NoError(t, err)
		assert.False(t, detail.Printed)
		assert.Equal(t, 9, f.stock(t, a.ID))
	})

	t.Run("Should skip printing without a printer or when disabled", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 10)

		result, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 1}},
			PaymentMethod: enum.PaymentCard,
		})
		require.NoError(t, err)
		assert.Nil(t, result.PrintResult)

		p := &recordingPrinter{}
		g := newSaleFixture(t, p, false)
		b := g.product(t, "Brot", "2.50", 10)
		off := false
		result, err = g.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: b.ID, Quantity: 1}},
			PaymentMethod: enum.PaymentCard,
			AutoPrint:     &off,
		})
		require.NoError(t, err)
		assert.Nil(t, result.PrintResult)
		assert.Empty(t, p.Jobs())
	})

	t.Run("Should reject an empty cart", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{PaymentMethod: enum.PaymentCash})
		assert.True(t, apperror.IsCode(err, apperror.CodeEmptyCart))

		sales, _ := f.saleCount(t)
		assert.Zero(t, sales)
	})

	t.Run("Should fail atomically on an unknown product", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 10)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items: []service.SaleItemInput{
				{ProductID: a.ID, Quantity: 1},
				{ProductID: 9999, Quantity: 1},
			},
			PaymentMethod: enum.PaymentCash,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeProductNotFound))

		sales, items := f.saleCount(t)
		assert.Zero(t, sales)
		assert.Zero(t, items)
		assert.Equal(t, 10, f.stock(t, a.ID))
	})

	t.Run("Should reject non-positive quantities and missing fields", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 10)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items: []service.SaleItemInput{
				{ProductID: a.ID, Quantity: 0},
				{Quantity: 1},
			},
		})
		require.Error(t, err)
		appErr := apperror.GetAppError(err)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)

		fields := make([]string, 0, len(appErr.Errors))
		for _, fe := range appErr.Errors {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"payment_method", "items[0].quantity", "items[1].product_id"}, fields)
	})

	t.Run("Should cap line quantities", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "10.00", 10)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 1 << 62, UnitPrice: amount("10.00")}},
			PaymentMethod: enum.PaymentCash,
		})
		require.Error(t, err)
		appErr := apperror.GetAppError(err)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		require.Len(t, appErr.Errors, 1)
		assert.Equal(t, "items[0].quantity", appErr.Errors[0].Field)

		sales, _ := f.saleCount(t)
		assert.Zero(t, sales)
		assert.Equal(t, 10, f.stock(t, a.ID))
	})

	t.Run("Should reject totals beyond the amount range without writing", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 10)
		top := money.MaxAmount

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 2, UnitPrice: &top}},
			PaymentMethod: enum.PaymentCard,
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeAmountOutOfRange))

		_, err = f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items: []service.SaleItemInput{
				{ProductID: a.ID, Quantity: 1, UnitPrice: &top},
				{ProductID: a.ID, Quantity: 1, UnitPrice: &top},
			},
			PaymentMethod: enum.PaymentCard,
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeAmountOutOfRange))

		sales, _ := f.saleCount(t)
		assert.Zero(t, sales)
		assert.Equal(t, 10, f.stock(t, a.ID))
	})

	t.Run("Should reject inconsistent totals without writing", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 10)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 3, UnitPrice: amount("0.50"), TotalPrice: amount("1.49")}},
			PaymentMethod: enum.PaymentCash,
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeLineTotalMismatch))

		_, err = f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 3, UnitPrice: amount("0.50")}},
			TotalAmount:   amount("2.00"),
			PaymentMethod: enum.PaymentCash,
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeTotalMismatch))

		sales, _ := f.saleCount(t)
		assert.Zero(t, sales)
		assert.Equal(t, 10, f.stock(t, a.ID))
	})

	t.Run("Should reject cash tendered below the total", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 10)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:          []service.SaleItemInput{{ProductID: a.ID, Quantity: 4}},
			PaymentMethod:  enum.PaymentCash,
			ReceivedAmount: amount("1.00"),
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("Should allow negative stock by default", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 1)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 3}},
			PaymentMethod: enum.PaymentCash,
		})
		require.NoError(t, err)
		assert.Equal(t, -2, f.stock(t, a.ID))
	})

	t.Run("Should reject oversell when configured", func(t *testing.T) {
		f := newSaleFixture(t, nil, true)
		a := f.product(t, "Apfel", "0.50", 5)
		b := f.product(t, "Brot", "2.50", 1)

		_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items: []service.SaleItemInput{
				{ProductID: a.ID, Quantity: 2},
				{ProductID: b.ID, Quantity: 2},
			},
			PaymentMethod: enum.PaymentCash,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
		assert.Contains(t, err.Error(), "Brot")

		sales, _ := f.saleCount(t)
		assert.Zero(t, sales)
		assert.Equal(t, 5, f.stock(t, a.ID))
		assert.Equal(t, 1, f.stock(t, b.ID))
	})

	t.Run("Should not lose decrements under concurrent sales", func(t *testing.T) {
		f := newSaleFixture(t, nil, false)
		a := f.product(t, "Apfel", "0.50", 100)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
					Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: 2}},
					PaymentMethod: enum.PaymentCard,
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, 80, f.stock(t, a.ID))
		sales, _ := f.saleCount(t)
		assert.Equal(t, int64(10), sales)
	})
}

func TestSaleService_Ledger(t *testing.T) {
	ctx := context.Background()
	p := &recordingPrinter{}
	f := newSaleFixture(t, p, false)
	a := f.product(t, "Apfel", "0.50", 10)

	off := false
	var ids []uint
	for i := 0; i < 3; i++ {
		res, err := f.service.CompleteSale(ctx, &service.CompleteSaleInput{
			Items:         []service.SaleItemInput{{ProductID: a.ID, Quantity: i + 1}},
			PaymentMethod: enum.PaymentCard,
			Cashier:       "Anna",
			AutoPrint:     &off,
		})
		require.NoError(t, err)
		ids = append(ids, res.SaleID)
	}

	t.Run("Should list newest first", func(t *testing.T) {
		sales, err := f.service.ListRecentSales(ctx)
		require.NoError(t, err)
		require.Len(t, sales, 3)
		assert.Equal(t, ids[2], sales[0].ID)
		assert.Equal(t, 1, sales[0].ItemCount)
		assert.Equal(t, "Anna", sales[0].Cashier)
		assert.False(t, sales[0].Printed)
	})

	t.Run("Should return not found for a missing sale", func(t *testing.T) {
		_, err := f.service.GetSale(ctx, 9999)
		assert.True(t, apperror.IsCode(err, apperror.CodeSaleNotFound))

		_, err = f.service.Reprint(ctx, 9999)
		assert.True(t, apperror.IsCode(err, apperror.CodeSaleNotFound))
	})

	t.Run("Should reprint and flag a stored sale", func(t *testing.T) {
		out, err := f.service.Reprint(ctx, ids[0])
		require.NoError(t, err)
		assert.True(t, out.Success)
		require.Len(t, p.Jobs(), 1)

		detail, err := f.service.GetSale(ctx, ids[0])
		require.NoError(t, err)
		assert.True(t, detail.Printed)
	})

	t.Run("Should render the stored receipt", func(t *testing.T) {
		doc, err := f.service.Receipt(ctx, ids[1])
		require.NoError(t, err)
		assert.Contains(t, doc.Lines, "Kassierer: Anna")
		assert.Contains(t, doc.Lines, "  2 x 0.50€ =        1.00€")
	})

	t.Run("Should export the day as CSV", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.service.ExportDayCSV(ctx, time.Now().In(berlin).Format("2006-01-02"), &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "sale_id,created_at,payment_method,cashier,item_count,total_amount,printed", lines[0])
		assert.Contains(t, lines[3], ",Karte,Anna,1,1.50,")
	})

	t.Run("Should reject a malformed export date", func(t *testing.T) {
		err := f.service.ExportDayCSV(ctx, "14.03.2026", &bytes.Buffer{})
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidDate))
	})
}

func TestSaleService_StoredSaleHistory(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture(t, nil, false)
	a := f.product(t, "Apfel", "0.50", 10)

	sale := &entity.Sale{
		TotalAmount:   money.MustParse("1.00"),
		PaymentMethod: enum.PaymentCash,
		Cashier:       "System",
		Items:         []entity.SaleItem{{ProductID: a.ID, Quantity: 2, UnitPrice: a.Price, TotalPrice: a.Price * 2}},
	}
	require.NoError(t, f.sales.Create(ctx, sale))

	t.Run("Should keep historical unit prices after a price change", func(t *testing.T) {
		a.Price = money.MustParse("0.80")
		require.NoError(t, f.products.Update(ctx, a))

		detail, err := f.service.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, money.MustParse("0.50"), detail.Items[0].UnitPrice)
		assert.Equal(t, money.MustParse("1.00"), detail.TotalAmount)
	})
}
