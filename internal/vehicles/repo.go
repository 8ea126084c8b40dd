package vehicles

import (
	"context"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
)

// Repository exposes vehicle persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.Vehicle, error)
	List(ctx context.Context, customerID *int64, limit int) ([]models.Vehicle, error)
	Count(ctx context.Context) (int64, error)
	CountAppointments(ctx context.Context, vehicleID int64) (int64, error)
	DetachSales(ctx context.Context, vehicleID int64) error
	Delete(ctx context.Context, id int64) error
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

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.DB(ctx).Create(vehicle).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	return repo.FindByID[models.Vehicle](ctx, r.Base, id)
}

func (r *repository) FindByRegNo(ctx context.Context, regNo string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.DB(ctx).Where("reg_no = ?", regNo).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) List(ctx context.Context, customerID *int64, limit int) ([]models.Vehicle, error) {
	query := r.DB(ctx).Model(&models.Vehicle{})
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	var rows []models.Vehicle
	if err := query.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Vehicle{}).Count(&count).Error
	return count, err
}

func (r *repository) CountAppointments(ctx context.Context, vehicleID int64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Appointment{}).Where("vehicle_id = ?", vehicleID).Count(&count).Error
	return count, err
}

func (r *repository) DetachSales(ctx context.Context, vehicleID int64) error {
	return r.DB(ctx).Model(&models.Sale{}).Where("vehicle_id = ?", vehicleID).Update("vehicle_id", nil).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return repo.DeleteByID[models.Vehicle](ctx, r.Base, id)
}
