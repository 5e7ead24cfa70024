package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/kassensystem/internal/application/service"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/enum"
	"github.com/sangkips/kassensystem/internal/infrastructure/repository"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
)

func TestParseDay(t *testing.T) {
	t.Run("Should map a Berlin date to its UTC range", func(t *testing.T) {
		day, err := service.ParseDay("2026-03-14", berlin, time.Now())
		require.NoError(t, err)
		assert.Equal(t, "2026-03-14", day.Date)
		assert.Equal(t, time.Date(2026, 3, 13, 23, 0, 0, 0, time.UTC), day.From)
		assert.Equal(t, time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC), day.To)
	})

	t.Run("Should span 23 hours on the spring DST switch", func(t *testing.T) {
		day, err := service.ParseDay("2026-03-29", berlin, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 23*time.Hour, day.To.Sub(day.From))
	})

	t.Run("Should default to today in the location", func(t *testing.T) {
		now := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC) // already the 15th in Berlin
		day, err := service.ParseDay("", berlin, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-15", day.Date)
	})

	t.Run("Should reject malformed dates", func(t *testing.T) {
		for _, in := range []string{"14.03.2026", "2026-13-01", "yesterday"} {
			_, err := service.ParseDay(in, berlin, time.Now())
			assert.True(t, apperror.IsCode(err, apperror.CodeInvalidDate), in)
		}
	})
}

func TestReportService_DailyReport(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture(t, nil, false)
	reports := service.NewReportService(repository.NewReportRepository(f.db), berlin)

	a := f.product(t, "Apfel", "0.50", 100)
	b := f.product(t, "Brot", "2.50", 100)
	c := f.product(t, "Cola", "1.50", 100)

	record := func(at time.Time, method enum.PaymentMethod, lines ...entity.SaleItem) {
		var total money.Amount
		for _, l := range lines {
			total += l.TotalPrice
		}
		require.NoError(t, f.sales.Create(ctx, &entity.Sale{
			TotalAmount: total, PaymentMethod: method, Cashier: "System", CreatedAt: at, Items: lines,
		}))
	}
	item := func(p *entity.Product, qty int) entity.SaleItem {
		return entity.SaleItem{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price, TotalPrice: p.Price * money.Amount(qty)}
	}

	// 2026-03-14 in Berlin is 2026-03-13T23:00Z .. 2026-03-14T23:00Z
	record(time.Date(2026, 3, 13, 22, 59, 0, 0, time.UTC), enum.PaymentCash, item(c, 50)) // 13th, 23:59 local
	record(time.Date(2026, 3, 13, 23, 0, 0, 0, time.UTC), enum.PaymentCash, item(a, 3), item(b, 1))
	record(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), enum.PaymentCard, item(b, 1))
	record(time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC), enum.PaymentCard, item(c, 1), item(a, 1))
	record(time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC), enum.PaymentContactless, item(c, 9)) // 15th, 00:00 local

	t.Run("Should aggregate one calendar day", func(t *testing.T) {
		report, err := reports.DailyReport(ctx, "2026-03-14")
		require.NoError(t, err)

		assert.Equal(t, "2026-03-14", report.Date)
		assert.Equal(t, int64(3), report.TotalTransactions)
		assert.Equal(t, money.MustParse("8.50"), report.TotalRevenue)
		assert.Equal(t, money.MustParse("2.83"), report.AvgTransaction)

		require.Len(t, report.PaymentSummary, 2)
		for _, p := range report.PaymentSummary {
			switch p.PaymentMethod {
			case enum.PaymentCash:
				assert.Equal(t, int64(1), p.Count)
				assert.Equal(t, money.MustParse("4.00"), p.Amount)
			case enum.PaymentCard:
				assert.Equal(t, int64(2), p.Count)
				assert.Equal(t, money.MustParse("4.50"), p.Amount)
			default:
				t.Fatalf("unexpected payment method %s", p.PaymentMethod)
			}
		}

		require.Len(t, report.TopProducts, 3)
		assert.Equal(t, "Apfel", report.TopProducts[0].Name)
		assert.Equal(t, int64(4), report.TopProducts[0].Quantity)
		assert.Equal(t, money.MustParse("2.00"), report.TopProducts[0].Revenue)
		assert.Equal(t, "Brot", report.TopProducts[1].Name)
		assert.Equal(t, money.MustParse("5.00"), report.TopProducts[1].Revenue)
		assert.Equal(t, "Cola", report.TopProducts[2].Name)
	})

	t.Run("Should return the same report on repeated calls", func(t *testing.T) {
		first, err := reports.DailyReport(ctx, "2026-03-14")
		require.NoError(t, err)
		second, err := reports.DailyReport(ctx, "2026-03-14")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Should not leak sales into neighbouring days", func(t *testing.T) {
		prev, err := reports.DailyReport(ctx, "2026-03-13")
		require.NoError(t, err)
		assert.Equal(t, int64(1), prev.TotalTransactions)
		assert.Equal(t, int64(50), prev.TopProducts[0].Quantity)

		next, err := reports.DailyReport(ctx, "2026-03-15")
		require.NoError(t, err)
		assert.Equal(t, int64(1), next.TotalTransactions)
		assert.Equal(t, enum.PaymentContactless, next.PaymentSummary[0].PaymentMethod)
	})

	t.Run("Should return zeros for a day without sales", func(t *testing.T) {
		report, err := reports.DailyReport(ctx, "2026-01-01")
		require.NoError(t, err)
		assert.Zero(t, report.TotalTransactions)
		assert.Equal(t, money.Zero, report.TotalRevenue)
		assert.Equal(t, money.Zero, report.AvgTransaction)
		assert.NotNil(t, report.PaymentSummary)
		assert.Empty(t, report.PaymentSummary)
		assert.NotNil(t, report.TopProducts)
		assert.Empty(t, report.TopProducts)
	})

	t.Run("Should reject an invalid date", func(t *testing.T) {
		_, err := reports.DailyReport(ctx, "2026-02-30")
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidDate))
	})
}

func TestReportExports(t *testing.T) {
	report := &entity.DailyReport{
		Date:              "2026-03-14",
		TotalRevenue:      money.MustParse("10.50"),
		TotalTransactions: 3,
		AvgTransaction:    money.MustParse("3.50"),
		PaymentSummary: []entity.PaymentSummary{
			{PaymentMethod: enum.PaymentCash, Count: 1, Amount: money.MustParse("4.00")},
		},
		TopProducts: []entity.TopProduct{
			{ProductID: 1, Name: "Süßwaren-Mix", Quantity: 4, Revenue: money.MustParse("2.00")},
		},
	}

	t.Run("Should write a workbook with three sheets", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, service.WriteDailyReportXLSX(report, &buf))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Übersicht", "Zahlungsarten", "Top-Artikel"}, f.GetSheetList())

		v, err := f.GetCellValue("Übersicht", "B1")
		require.NoError(t, err)
		assert.Equal(t, "2026-03-14", v)

		v, err = f.GetCellValue("Top-Artikel", "B2")
		require.NoError(t, err)
		assert.Equal(t, "Süßwaren-Mix", v)

		v, err = f.GetCellValue("Zahlungsarten", "A2")
		require.NoError(t, err)
		assert.Equal(t, "Bargeld", v)
	})

	t.Run("Should render a PDF", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, service.WriteDailyReportPDF(report, &buf))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	})
}
