package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/appointments"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records money received outside of a checkout.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Payment, error)
	List(ctx context.Context, appointmentID *int64, limit int) ([]models.Payment, error)
}

type RecordInput struct {
	AppointmentID *int64
	Amount        decimal.Decimal
	Method        string
}

type service struct {
	tx           txRunner
	repo         Repository
	appointments appointments.Repository
	now          func() time.Time
}

func NewService(tx txRunner, repo Repository, appts appointments.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if appts == nil {
		return nil, fmt.Errorf("appointment repository required")
	}
	return &service{tx: tx, repo: repo, appointments: appts, now: time.Now}, nil
}

// Record stores a payment. When it settles an appointment the appointment is
// flagged paid in the same transaction.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.Payment, error) {
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be at least 0.01")
	}
	payment := &models.Payment{
		AppointmentID: input.AppointmentID,
		Amount:        amount,
		Method:        enums.NormalizePaymentMethod(input.Method).String(),
		Timestamp:     s.now().UTC(),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if input.AppointmentID != nil {
			apptRepo := s.appointments.WithTx(tx)
			appt, err := apptRepo.FindByID(ctx, *input.AppointmentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Newf(pkgerrors.CodeNotFound, "appointment %d not found", *input.AppointmentID)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
			}
			if appt.Status == enums.AppointmentStatusCancelled {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "a cancelled appointment cannot be paid")
			}
			if !appt.Paid {
				if err := apptRepo.Update(ctx, appt.ID, map[string]any{"paid": true}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark appointment paid")
				}
			}
		}
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) List(ctx context.Context, appointmentID *int64, limit int) ([]models.Payment, error) {
	rows, err := s.repo.List(ctx, appointmentID, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}
