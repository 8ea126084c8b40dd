package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/repo"
	"github.com/carwashpos/backend/pkg/db/models"
)

// Repository exposes payment persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id int64) (*models.Payment, error)
	List(ctx context.Context, appointmentID *int64, limit int) ([]models.Payment, error)
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

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Payment, error) {
	return repo.FindByID[models.Payment](ctx, r.Base, id)
}

func (r *repository) List(ctx context.Context, appointmentID *int64, limit int) ([]models.Payment, error) {
	query := r.DB(ctx).Model(&models.Payment{})
	if appointmentID != nil {
		query = query.Where("appointment_id = ?", *appointmentID)
	}
	var rows []models.Payment
	if err := query.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
