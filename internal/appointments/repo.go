package appointments

import (
	"context"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
)

// Repository exposes appointment persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id int64) (*models.Appointment, error)
	List(ctx context.Context, opts ListQuery) ([]models.Appointment, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
}

// ListQuery filters appointment listings.
type ListQuery struct {
	Status    *enums.AppointmentStatus
	VehicleID *int64
	Limit     int
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

func (r *repository) Create(ctx context.Context, appt *models.Appointment) error {
	return r.DB(ctx).Create(appt).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Appointment, error) {
	return repo.FindByID[models.Appointment](ctx, r.Base, id)
}

func (r *repository) List(ctx context.Context, opts ListQuery) ([]models.Appointment, error) {
	query := r.DB(ctx).Model(&models.Appointment{})
	if opts.Status != nil {
		query = query.Where("status = ?", *opts.Status)
	}
	if opts.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *opts.VehicleID)
	}
	var rows []models.Appointment
	if err := query.Order("scheduled_at DESC").Order("id DESC").Limit(opts.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) error {
	return repo.UpdateByID[models.Appointment](ctx, r.Base, id, fields)
}
