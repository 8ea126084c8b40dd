package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
)

// Repository exposes sale and sale item persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) error
	CreateItems(ctx context.Context, items []models.SaleItem) error
	FindByID(ctx context.Context, id int64) (*models.Sale, error)
	Items(ctx context.Context, saleID int64) ([]ItemLine, error)
	ListRecent(ctx context.Context, limit int) ([]RecentSale, error)
	Delete(ctx context.Context, id int64) error
}

// ItemLine is a sale item joined with its service name.
type ItemLine struct {
	ID          int64
	ServiceID   int64
	ServiceName string
	Qty         int
	Price       decimal.Decimal
	LineTotal   decimal.Decimal
}

// RecentSale is a sale row joined with its customer name and registration.
type RecentSale struct {
	ID           int64
	CustomerName *string
	RegNo        *string
	Total        decimal.Decimal
	Timestamp    time.Time
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.DB(ctx).Create(sale).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Sale, error) {
	return repo.FindByID[models.Sale](ctx, r.Base, id)
}

func (r *repository) Items(ctx context.Context, saleID int64) ([]ItemLine, error) {
	var rows []ItemLine
	err := r.DB(ctx).
		Table("sale_items AS si").
		Select("si.id, si.service_id, COALESCE(sv.name, '') AS service_name, si.qty, si.price, si.line_total").
		Joins("LEFT JOIN services sv ON sv.id = si.service_id").
		Where("si.sale_id = ?", saleID).
		Order("si.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]RecentSale, error) {
	var rows []RecentSale
	err := r.DB(ctx).
		Table("sales AS sa").
		Select("sa.id, c.name AS customer_name, v.reg_no, sa.total, sa.timestamp").
		Joins("LEFT JOIN customers c ON c.id = sa.customer_id").
		Joins("LEFT JOIN vehicles v ON v.id = sa.vehicle_id").
		Order("sa.timestamp DESC").
		Order("sa.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if err := r.DB(ctx).Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	return repo.DeleteByID[models.Sale](ctx, r.Base, id)
}
