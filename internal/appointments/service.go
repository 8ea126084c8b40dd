package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/pagination"
)

type vehicleLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
}

type serviceLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Service, error)
}

// Service handles standalone appointment booking and status changes.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Appointment, error)
	Get(ctx context.Context, id int64) (*models.Appointment, error)
	List(ctx context.Context, opts ListQuery) ([]models.Appointment, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Appointment, error)
}

type CreateInput struct {
	VehicleID   int64
	ServiceID   int64
	ScheduledAt *time.Time
}

// UpdateInput moves an appointment forward. Status follows
// AppointmentStatus.CanTransitionTo and Paid may only go from false to true.
type UpdateInput struct {
	Status *enums.AppointmentStatus
	Paid   *bool
}

type service struct {
	repo     Repository
	vehicles vehicleLoader
	catalog  serviceLoader
	now      func() time.Time
}

func NewService(repo Repository, vehicles vehicleLoader, catalog serviceLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("appointment repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle loader required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("service loader required")
	}
	return &service{repo: repo, vehicles: vehicles, catalog: catalog, now: time.Now}, nil
}

// Create books a scheduled, unpaid appointment.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Appointment, error) {
	if input.VehicleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle_id is required")
	}
	if input.ServiceID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_id is required")
	}
	if _, err := s.vehicles.FindByID(ctx, input.VehicleID); err != nil {
		return nil, lookupErr(err, "vehicle", input.VehicleID)
	}
	if _, err := s.catalog.FindByID(ctx, input.ServiceID); err != nil {
		return nil, lookupErr(err, "service", input.ServiceID)
	}

	scheduled := s.now().UTC()
	if input.ScheduledAt != nil {
		scheduled = input.ScheduledAt.UTC()
	}
	appt := &models.Appointment{
		VehicleID:   input.VehicleID,
		ServiceID:   input.ServiceID,
		ScheduledAt: scheduled,
		Status:      enums.AppointmentStatusScheduled,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
	}
	return appt, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "appointment", id)
	}
	return appt, nil
}

func (s *service) List(ctx context.Context, opts ListQuery) ([]models.Appointment, error) {
	if opts.Status != nil && !opts.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *opts.Status)
	}
	opts.Limit = pagination.NormalizeLimit(opts.Limit)
	rows, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Appointment, error) {
	if input.Status == nil && input.Paid == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status or paid is required")
	}
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Status != nil && *input.Status != appt.Status {
		next := *input.Status
		if !next.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", next)
		}
		if !appt.Status.CanTransitionTo(next) {
			return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move appointment from %s to %s", appt.Status, next).
				WithDetails(map[string]any{"from": appt.Status, "to": next})
		}
		fields["status"] = next
	}
	if input.Paid != nil && *input.Paid != appt.Paid {
		if !*input.Paid {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a paid appointment cannot be marked unpaid")
		}
		status := appt.Status
		if next, ok := fields["status"].(enums.AppointmentStatus); ok {
			status = next
		}
		if status == enums.AppointmentStatusCancelled {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a cancelled appointment cannot be paid")
		}
		fields["paid"] = true
	}
	if len(fields) == 0 {
		return appt, nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, lookupErr(err, "appointment", id)
	}
	return s.Get(ctx, id)
}

func lookupErr(err error, entity string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s %d not found", entity, id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
