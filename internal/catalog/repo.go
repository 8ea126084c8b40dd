package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
)

// Repository exposes service catalog persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, svc *models.Service) error
	FindByID(ctx context.Context, id int64) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	IsReferenced(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository constructs a catalog repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, svc *models.Service) error {
	return r.DB(ctx).Create(svc).Error
}

// FindByID returns gorm.ErrRecordNotFound when the service is absent.
func (r *repository) FindByID(ctx context.Context, id int64) (*models.Service, error) {
	return repo.FindByID[models.Service](ctx, r.Base, id)
}

func (r *repository) List(ctx context.Context) ([]models.Service, error) {
	var rows []models.Service
	if err := r.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) error {
	return repo.UpdateByID[models.Service](ctx, r.Base, id, fields)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return repo.DeleteByID[models.Service](ctx, r.Base, id)
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Service{}).Count(&count).Error
	return count, err
}

// IsReferenced reports whether any sale line or appointment points at the service.
func (r *repository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var hit models.SaleItem
	err := r.DB(ctx).Select("id").Where("service_id = ?", id).Take(&hit).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var appt models.Appointment
	err = r.DB(ctx).Select("id").Where("service_id = ?", id).Take(&appt).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
