package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
)

func TestReportHandler(t *testing.T) {
	t.Run("Should summarize today's sales", func(t *testing.T) {
		a := newApp(t, appOptions{})
		apple := a.product(t, "Apfel", "0.50", 10)
		bread := a.product(t, "Brot", "2.50", 5)
		require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/sales", cart(apple, bread)).Code)

		w := a.do(t, http.MethodGet, "/api/reports/daily", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var report entity.DailyReport
		decode(t, w, &report)
		assert.NotEmpty(t, report.Date)
		assert.Equal(t, int64(1), report.TotalTransactions)
		assert.Equal(t, money.MustParse("4.00"), report.TotalRevenue)
		require.Len(t, report.TopProducts, 2)
		assert.Equal(t, "Apfel", report.TopProducts[0].Name)
	})

	t.Run("Should return empty lists for a quiet day", func(t *testing.T) {
		a := newApp(t, appOptions{})

		w := a.do(t, http.MethodGet, "/api/reports/daily?date=2020-01-01", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"payment_summary":[]`)
		assert.Contains(t, w.Body.String(), `"top_products":[]`)
	})

	t.Run("Should reject an invalid date", func(t *testing.T) {
		a := newApp(t, appOptions{})

		w := a.do(t, http.MethodGet, "/api/reports/daily?date=14.03.2026", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidDate, decode(t, w, nil).Code)
	})

	t.Run("Should download the report as xlsx and pdf", func(t *testing.T) {
		a := newApp(t, appOptions{})

		w := a.do(t, http.MethodGet, "/api/reports/daily/xlsx?date=2026-03-14", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "tagesbericht-2026-03-14.xlsx")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

		w = a.do(t, http.MethodGet, "/api/reports/daily/pdf?date=2026-03-14", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	})
}
