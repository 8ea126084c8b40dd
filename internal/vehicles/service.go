package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/pkg/db"
	"github.com/carwashpos/backend/pkg/db/models"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
}

// Service manages registered vehicles.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Vehicle, error)
	Get(ctx context.Context, id int64) (*models.Vehicle, error)
	List(ctx context.Context, customerID *int64, limit int) ([]models.Vehicle, error)
	Delete(ctx context.Context, id int64) error
}

type CreateInput struct {
	RegNo      string
	Model      *string
	CustomerID *int64
}

type service struct {
	tx        txRunner
	repo      Repository
	customers customerLoader
}

func NewService(tx txRunner, repo Repository, customers customerLoader) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	return &service{tx: tx, repo: repo, customers: customers}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Vehicle, error) {
	regNo := strings.TrimSpace(input.RegNo)
	if regNo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reg_no is required")
	}
	if input.CustomerID != nil {
		if _, err := s.customers.FindByID(ctx, *input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "customer %d not found", *input.CustomerID)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
		}
	}

	vehicle := &models.Vehicle{RegNo: regNo, CustomerID: input.CustomerID}
	if input.Model != nil {
		if model := strings.TrimSpace(*input.Model); model != "" {
			vehicle.Model = &model
		}
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("vehicle %s already registered", regNo)).
				WithDetails(map[string]any{"reg_no": regNo})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return vehicle, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "vehicle %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) List(ctx context.Context, customerID *int64, limit int) ([]models.Vehicle, error) {
	rows, err := s.repo.List(ctx, customerID, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return rows, nil
}

// Delete is refused while any appointment references the vehicle; sales keep
// their rows with vehicle_id cleared.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booked, err := repo.CountAppointments(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count appointments")
		}
		if booked > 0 {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "vehicle %d has %d appointment(s)", id, booked)
		}
		if err := repo.DetachSales(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach sales")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
		}
		return nil
	})
}
