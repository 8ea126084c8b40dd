package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
)

// Repository runs read-only aggregate queries over sales.
type Repository interface {
	SalesTotals(ctx context.Context, start, end time.Time) (Totals, error)
	SalesBetween(ctx context.Context, start, end time.Time) ([]SalePoint, error)
	Counts(ctx context.Context) (Counts, error)
	RecentSales(ctx context.Context, limit int) ([]models.Sale, error)
	RecentCustomers(ctx context.Context, limit int) ([]models.Customer, error)
}

// Totals is the count and revenue of sales in a range.
type Totals struct {
	Count int64
	Total decimal.Decimal
}

// SalePoint is the minimum a sale contributes to a time series.
type SalePoint struct {
	Total     decimal.Decimal
	Timestamp time.Time
}

// Counts holds row counts for the dashboard tiles.
type Counts struct {
	Customers int64
	Vehicles  int64
	Services  int64
	Sales     int64
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) SalesTotals(ctx context.Context, start, end time.Time) (Totals, error) {
	var out Totals
	err := r.DB(ctx).
		Model(&models.Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("timestamp >= ? AND timestamp < ?", start.UTC(), end.UTC()).
		Scan(&out).Error
	return out, err
}

func (r *repository) SalesBetween(ctx context.Context, start, end time.Time) ([]SalePoint, error) {
	var rows []SalePoint
	err := r.DB(ctx).
		Model(&models.Sale{}).
		Select("total, timestamp").
		Where("timestamp >= ? AND timestamp < ?", start.UTC(), end.UTC()).
		Order("timestamp ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Counts(ctx context.Context) (Counts, error) {
	var out Counts
	targets := []struct {
		model any
		dest  *int64
	}{
		{&models.Customer{}, &out.Customers},
		{&models.Vehicle{}, &out.Vehicles},
		{&models.Service{}, &out.Services},
		{&models.Sale{}, &out.Sales},
	}
	for _, t := range targets {
		if err := r.DB(ctx).Model(t.model).Count(t.dest).Error; err != nil {
			return Counts{}, err
		}
	}
	return out, nil
}

func (r *repository) RecentSales(ctx context.Context, limit int) ([]models.Sale, error) {
	var rows []models.Sale
	if err := r.DB(ctx).Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RecentCustomers(ctx context.Context, limit int) ([]models.Customer, error) {
	var rows []models.Customer
	if err := r.DB(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
