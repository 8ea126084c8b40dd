package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/pkg/db/models"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
)

// DefaultServices seeds an empty catalog.
var DefaultServices = []CreateInput{
	{Name: "Exterior Wash", Price: decimal.NewFromInt(150)},
	{Name: "Full Wash + Interior", Price: decimal.NewFromInt(400)},
	{Name: "Polish & Wax", Price: decimal.NewFromInt(700)},
}

// Service manages the catalog of washable services.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Service, error)
	List(ctx context.Context) ([]models.Service, error)
	Get(ctx context.Context, id int64) (*models.Service, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Service, error)
	Delete(ctx context.Context, id int64) error
	SeedDefaults(ctx context.Context) (int, error)
}

type CreateInput struct {
	Name  string
	Price decimal.Decimal
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name  *string
	Price *decimal.Decimal
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Service, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be >= 0")
	}
	svc := &models.Service{Name: name, Price: input.Price}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service")
	}
	return svc, nil
}

func (s *service) List(ctx context.Context) ([]models.Service, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Service, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, id)
	}
	return svc, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Service, error) {
	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		fields["name"] = name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be >= 0")
		}
		fields["price"] = *input.Price
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, mapLookupErr(err, id)
	}
	return s.Get(ctx, id)
}

// Delete refuses to remove a service that sales or appointments still reference.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	used, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check service references")
	}
	if used {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "service %d is referenced by sales or appointments", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupErr(err, id)
	}
	return nil
}

// SeedDefaults inserts DefaultServices when the catalog is empty and returns how many were added.
func (s *service) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count services")
	}
	if count > 0 {
		return 0, nil
	}
	for _, def := range DefaultServices {
		if _, err := s.Create(ctx, def); err != nil {
			return 0, err
		}
	}
	return len(DefaultServices), nil
}

func mapLookupErr(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "service %d not found", id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
}
