package export

import (
	"context"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
)

// Repository loads every row of each exported table in id order.
type Repository interface {
	Customers(ctx context.Context) ([]models.Customer, error)
	Vehicles(ctx context.Context) ([]models.Vehicle, error)
	Services(ctx context.Context) ([]models.Service, error)
	Sales(ctx context.Context) ([]models.Sale, error)
	SaleItems(ctx context.Context) ([]models.SaleItem, error)
	Appointments(ctx context.Context) ([]models.Appointment, error)
	Payments(ctx context.Context) ([]models.Payment, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func findAll[T any](ctx context.Context, r *repository) ([]T, error) {
	var rows []T
	if err := r.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Customers(ctx context.Context) ([]models.Customer, error) {
	return findAll[models.Customer](ctx, r)
}

func (r *repository) Vehicles(ctx context.Context) ([]models.Vehicle, error) {
	return findAll[models.Vehicle](ctx, r)
}

func (r *repository) Services(ctx context.Context) ([]models.Service, error) {
	return findAll[models.Service](ctx, r)
}

func (r *repository) Sales(ctx context.Context) ([]models.Sale, error) {
	return findAll[models.Sale](ctx, r)
}

func (r *repository) SaleItems(ctx context.Context) ([]models.SaleItem, error) {
	return findAll[models.SaleItem](ctx, r)
}

func (r *repository) Appointments(ctx context.Context) ([]models.Appointment, error) {
	return findAll[models.Appointment](ctx, r)
}

func (r *repository) Payments(ctx context.Context) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, r)
}
