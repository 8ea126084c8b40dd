package customers

import (
	"context"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
)

// Repository exposes customer persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
	FindByNamePhone(ctx context.Context, name string, phone *string) (*models.Customer, error)
	List(ctx context.Context, limit int) ([]models.Customer, error)
	Count(ctx context.Context) (int64, error)
	VehicleIDs(ctx context.Context, customerID int64) ([]int64, error)
	CountAppointmentsForVehicles(ctx context.Context, vehicleIDs []int64) (int64, error)
	DetachSales(ctx context.Context, customerID int64, vehicleIDs []int64) error
	DeleteVehicles(ctx context.Context, vehicleIDs []int64) error
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

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.DB(ctx).Create(customer).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	return repo.FindByID[models.Customer](ctx, r.Base, id)
}

// FindByNamePhone matches name and phone exactly; a nil phone only matches NULL.
func (r *repository) FindByNamePhone(ctx context.Context, name string, phone *string) (*models.Customer, error) {
	query := r.DB(ctx).Where("name = ?", name)
	if phone == nil {
		query = query.Where("phone IS NULL")
	} else {
		query = query.Where("phone = ?", *phone)
	}
	var customer models.Customer
	if err := query.Order("id ASC").First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns the newest customers first.
func (r *repository) List(ctx context.Context, limit int) ([]models.Customer, error) {
	var rows []models.Customer
	if err := r.DB(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}

func (r *repository) VehicleIDs(ctx context.Context, customerID int64) ([]int64, error) {
	var ids []int64
	err := r.DB(ctx).Model(&models.Vehicle{}).Where("customer_id = ?", customerID).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) CountAppointmentsForVehicles(ctx context.Context, vehicleIDs []int64) (int64, error) {
	if len(vehicleIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB(ctx).Model(&models.Appointment{}).Where("vehicle_id IN ?", vehicleIDs).Count(&count).Error
	return count, err
}

// DetachSales clears sale references to the customer and its vehicles.
func (r *repository) DetachSales(ctx context.Context, customerID int64, vehicleIDs []int64) error {
	if err := r.DB(ctx).Model(&models.Sale{}).Where("customer_id = ?", customerID).Update("customer_id", nil).Error; err != nil {
		return err
	}
	if len(vehicleIDs) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Sale{}).Where("vehicle_id IN ?", vehicleIDs).Update("vehicle_id", nil).Error
}

func (r *repository) DeleteVehicles(ctx context.Context, vehicleIDs []int64) error {
	if len(vehicleIDs) == 0 {
		return nil
	}
	return r.DB(ctx).Where("id IN ?", vehicleIDs).Delete(&models.Vehicle{}).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return repo.DeleteByID[models.Customer](ctx, r.Base, id)
}
