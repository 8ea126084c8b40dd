package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/pkg/db/models"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages customer records.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Customer, error)
	Get(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context, limit int) ([]models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type CreateInput struct {
	Name  string
	Phone *string
	Email *string
}

type service struct {
	tx   txRunner
	repo Repository
}

func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	customer := &models.Customer{
		Name:  name,
		Phone: TrimOptional(input.Phone),
		Email: TrimOptional(input.Email),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "customer %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.Customer, error) {
	rows, err := s.repo.List(ctx, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return rows, nil
}

// Delete removes the customer together with their vehicles. Sales keep their
// history with the references cleared. Customers whose vehicles have
// appointments cannot be deleted.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		vehicleIDs, err := repo.VehicleIDs(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer vehicles")
		}
		booked, err := repo.CountAppointmentsForVehicles(ctx, vehicleIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vehicle appointments")
		}
		if booked > 0 {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "customer %d has vehicles with appointments", id).
				WithDetails(map[string]any{"appointments": booked})
		}
		if err := repo.DetachSales(ctx, id, vehicleIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach sales")
		}
		if err := repo.DeleteVehicles(ctx, vehicleIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicles")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
		}
		return nil
	})
}

// TrimOptional trims v and maps blank strings to nil.
func TrimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
