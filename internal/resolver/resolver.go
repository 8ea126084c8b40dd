// Package resolver finds or creates the customer and vehicle a sale refers to.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/customers"
	"github.com/carwashpos/backend/internal/vehicles"
	"github.com/carwashpos/backend/pkg/db"
	"github.com/carwashpos/backend/pkg/db/models"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
)

// CustomerRef identifies a customer either by id or by contact details.
type CustomerRef struct {
	ID    *int64
	Name  string
	Phone *string
	Email *string
}

// VehicleRef identifies a vehicle by registration number.
type VehicleRef struct {
	RegNo string
	Model *string
}

// Resolver turns loose references into persisted rows.
type Resolver interface {
	ResolveCustomer(ctx context.Context, ref CustomerRef) (*models.Customer, error)
	ResolveVehicle(ctx context.Context, ref VehicleRef, ownerID *int64) (*models.Vehicle, error)
}

type resolver struct {
	customers customers.Repository
	vehicles  vehicles.Repository
}

func New(customerRepo customers.Repository, vehicleRepo vehicles.Repository) (Resolver, error) {
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if vehicleRepo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	return &resolver{customers: customerRepo, vehicles: vehicleRepo}, nil
}

// ResolveCustomer returns nil without error when nothing can be resolved.
// An explicit id that does not exist yields no customer and does not fall
// back to the contact details.
func (r *resolver) ResolveCustomer(ctx context.Context, ref CustomerRef) (*models.Customer, error) {
	if ref.ID != nil {
		customer, err := r.customers.FindByID(ctx, *ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		return customer, nil
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return nil, nil
	}
	phone := customers.TrimOptional(ref.Phone)

	existing, err := r.customers.FindByNamePhone(ctx, name, phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find customer")
	}

	customer := &models.Customer{Name: name, Phone: phone, Email: customers.TrimOptional(ref.Email)}
	if err := r.customers.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

// ResolveVehicle finds a vehicle by registration number or registers it
// with the given owner. An existing vehicle keeps its current owner.
func (r *resolver) ResolveVehicle(ctx context.Context, ref VehicleRef, ownerID *int64) (*models.Vehicle, error) {
	regNo := strings.TrimSpace(ref.RegNo)
	if regNo == "" {
		return nil, nil
	}

	existing, err := r.findVehicle(ctx, regNo)
	if err != nil || existing != nil {
		return existing, err
	}

	vehicle := &models.Vehicle{RegNo: regNo, Model: customers.TrimOptional(ref.Model), CustomerID: ownerID}
	if err := r.vehicles.Create(ctx, vehicle); err != nil {
		if db.IsUniqueViolation(err, "") {
			// lost a race with a concurrent registration
			winner, findErr := r.findVehicle(ctx, regNo)
			if findErr != nil {
				return nil, findErr
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return vehicle, nil
}

func (r *resolver) findVehicle(ctx context.Context, regNo string) (*models.Vehicle, error) {
	vehicle, err := r.vehicles.FindByRegNo(ctx, regNo)
	if err == nil {
		return vehicle, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find vehicle")
}
