// Package reports aggregates sales into daily totals and dense date series.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carwashpos/backend/pkg/db/models"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
)

const (
	// DateLayout is the calendar date format used in requests and series keys.
	DateLayout = "2006-01-02"

	DefaultWindowDays = 30
	MaxWindowDays     = 366
	recentLimit       = 20
)

// Service answers reporting queries. All dates are UTC calendar days.
type Service interface {
	DailyTotal(ctx context.Context, date string) (*DailyReport, error)
	RollingWindow(ctx context.Context, days int) ([]DayTotal, error)
	Summary(ctx context.Context) (*Summary, error)
}

type DailyReport struct {
	Date  string
	Count int64
	Total decimal.Decimal
}

type DayTotal struct {
	Date  string
	Total decimal.Decimal
}

// Summary feeds the dashboard page.
type Summary struct {
	Counts          Counts
	Series          []DayTotal
	RecentSales     []models.Sale
	RecentCustomers []models.Customer
}

type service struct {
	repo       Repository
	windowDays int
	now        func() time.Time
}

func NewService(repo Repository, windowDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &service{repo: repo, windowDays: windowDays, now: time.Now}, nil
}

func (s *service) DailyTotal(ctx context.Context, date string) (*DailyReport, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.SalesTotals(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "daily totals")
	}
	return &DailyReport{Date: day.Format(DateLayout), Count: totals.Count, Total: totals.Total}, nil
}

// RollingWindow returns one entry per day for the last days days ending
// today, oldest first, with zero for days without sales.
func (s *service) RollingWindow(ctx context.Context, days int) ([]DayTotal, error) {
	if days <= 0 {
		days = s.windowDays
	}
	if days > MaxWindowDays {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "days must be at most %d", MaxWindowDays)
	}

	today := truncateDay(s.now())
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	points, err := s.repo.SalesBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rolling window")
	}
	return bucket(points, start, days), nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "entity counts")
	}
	series, err := s.RollingWindow(ctx, s.windowDays)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.RecentSales(ctx, recentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent sales")
	}
	customers, err := s.repo.RecentCustomers(ctx, recentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent customers")
	}
	return &Summary{Counts: counts, Series: series, RecentSales: sales, RecentCustomers: customers}, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date parameter required")
	}
	day, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date must use the format YYYY-MM-DD").
			WithDetails(map[string]any{"date": value})
	}
	return day, nil
}

func bucket(points []SalePoint, start time.Time, days int) []DayTotal {
	series := make([]DayTotal, days)
	index := make(map[string]int, days)
	for i := range series {
		key := start.AddDate(0, 0, i).Format(DateLayout)
		series[i] = DayTotal{Date: key, Total: decimal.Zero}
		index[key] = i
	}
	for _, p := range points {
		if i, ok := index[p.Timestamp.UTC().Format(DateLayout)]; ok {
			series[i].Total = series[i].Total.Add(p.Total)
		}
	}
	return series
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
