package service

import (
	"context"
	"net/http"
	"time"

	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/repository"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"github.com/sangkips/kassensystem/pkg/money"
	"golang.org/x/sync/errgroup"
)

// TopProductsLimit caps the product ranking of the daily report
const TopProductsLimit = 10

const dayLayout = "2006-01-02"

// Day is one calendar date as a half-open UTC range [From, To)
type Day struct {
	Date string
	From time.Time
	To   time.Time
}

// ParseDay resolves a YYYY-MM-DD date in loc. An empty date means today.
func ParseDay(date string, loc *time.Location, now time.Time) (Day, error) {
	if loc == nil {
		loc = time.UTC
	}

	var start time.Time
	if date == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation(dayLayout, date, loc)
		if err != nil {
			return Day{}, apperror.New(http.StatusBadRequest, apperror.CodeInvalidDate, "Ungültiges Datum, erwartet JJJJ-MM-TT")
		}
		start = t
	}

	// AddDate keeps DST days at 23 or 25 hours
	end := start.AddDate(0, 0, 1)
	return Day{
		Date: start.Format(dayLayout),
		From: start.UTC(),
		To:   end.UTC(),
	}, nil
}

// ReportService aggregates the sale ledger
type ReportService struct {
	reportRepo repository.ReportRepository
	loc        *time.Location
	now        func() time.Time
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.ReportRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		reportRepo: reportRepo,
		loc:        loc,
		now:        time.Now,
	}
}

// DailyReport summarizes the sales of one calendar date
func (s *ReportService) DailyReport(ctx context.Context, date string) (*entity.DailyReport, error) {
	day, err := ParseDay(date, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	var (
		payments []entity.PaymentSummary
		top      []entity.TopProduct
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = s.reportRepo.PaymentSummary(gctx, day.From, day.To)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.reportRepo.TopProducts(gctx, day.From, day.To, TopProductsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	report := &entity.DailyReport{
		Date:           day.Date,
		PaymentSummary: payments,
		TopProducts:    top,
	}
	if report.PaymentSummary == nil {
		report.PaymentSummary = []entity.PaymentSummary{}
	}
	if report.TopProducts == nil {
		report.TopProducts = []entity.TopProduct{}
	}

	for _, p := range payments {
		report.TotalRevenue += p.Amount
		report.TotalTransactions += p.Count
	}
	report.AvgTransaction = money.Zero
	if report.TotalTransactions > 0 {
		report.AvgTransaction = report.TotalRevenue.DivRound(report.TotalTransactions)
	}

	return report, nil
}
