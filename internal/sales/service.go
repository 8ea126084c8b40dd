// Package sales records sales through the cart checkout and quick charge
// entry points and serves sale history.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/appointments"
	"github.com/carwashpos/backend/internal/catalog"
	"github.com/carwashpos/backend/internal/payments"
	"github.com/carwashpos/backend/internal/resolver"
	"github.com/carwashpos/backend/internal/vehicles"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/metrics"
	"github.com/carwashpos/backend/pkg/pagination"
)

const (
	EntryPointCheckout    = "checkout"
	EntryPointQuickCharge = "quick_charge"

	// ScheduledAtLayout is the wall-clock format accepted for checkout appointments.
	ScheduledAtLayout = "2006-01-02 15:04"
)

var quickChargeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	ScheduledAtLayout,
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records and reads sales.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*Receipt, error)
	QuickCharge(ctx context.Context, input QuickChargeInput) (*Receipt, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	ListRecent(ctx context.Context, limit int) ([]RecentSale, error)
	Delete(ctx context.Context, id int64) error
}

// CheckoutInput is a multi-line cart sale priced from the catalog.
type CheckoutInput struct {
	Customer             resolver.CustomerRef
	Vehicle              resolver.VehicleRef
	Items                []LineInput
	Method               string
	CreateAppointment    bool
	AppointmentServiceID *int64
	ScheduledAt          string
}

// QuickChargeInput is a counter sale priced from the request.
type QuickChargeInput struct {
	Customer              resolver.CustomerRef
	Vehicle               resolver.VehicleRef
	Items                 []LineInput
	Total                 *decimal.Decimal
	Method                string
	CreateAppointment     bool
	CreateAppointmentDone bool
	Timestamp             string
}

// Invoice is a sale with its priced lines.
type Invoice struct {
	Sale  models.Sale
	Items []ItemLine
}

type ServiceParams struct {
	Tx           txRunner
	Repo         Repository
	Resolver     resolver.Resolver
	Catalog      catalog.Repository
	Vehicles     vehicles.Repository
	Appointments appointments.Repository
	Payments     payments.Repository
	Metrics      *metrics.SalesMetrics
	Logger       *logger.Logger
	RecentLimit  int
}

type service struct {
	tx           txRunner
	repo         Repository
	resolver     resolver.Resolver
	catalog      catalog.Repository
	vehicles     vehicles.Repository
	appointments appointments.Repository
	payments     payments.Repository
	metrics      *metrics.SalesMetrics
	logg         *logger.Logger
	recentLimit  int
	now          func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Vehicles == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if params.Appointments == nil {
		return nil, fmt.Errorf("appointment repository required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	recentLimit := params.RecentLimit
	if recentLimit <= 0 {
		recentLimit = pagination.DefaultLimit
	}
	return &service{
		tx:           params.Tx,
		repo:         params.Repo,
		resolver:     params.Resolver,
		catalog:      params.Catalog,
		vehicles:     params.Vehicles,
		appointments: params.Appointments,
		payments:     params.Payments,
		metrics:      params.Metrics,
		logg:         params.Logger,
		recentLimit:  recentLimit,
		now:          time.Now,
	}, nil
}

// Checkout records a paid cart sale. Prices come from the catalog and any
// appointment is created already done.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Receipt, error) {
	scheduled, err := parseScheduledAt(input.ScheduledAt)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, recordInput{
		Customer:             input.Customer,
		Vehicle:              input.Vehicle,
		Items:                input.Items,
		Method:               input.Method,
		CreateAppointment:    input.CreateAppointment,
		AppointmentServiceID: input.AppointmentServiceID,
		ScheduledAt:          scheduled,
	}, WorkflowOptions{
		EntryPoint:        EntryPointCheckout,
		PriceSource:       enums.PriceSourceLookup,
		AppointmentStatus: enums.AppointmentStatusDone,
		RequireItems:      true,
		SettledOnCreate:   true,
	})
}

// QuickCharge records a counter sale. The tendered total becomes a payment
// row and decides whether the sale and its appointment count as paid.
func (s *service) QuickCharge(ctx context.Context, input QuickChargeInput) (*Receipt, error) {
	stamp, err := parseQuickTimestamp(input.Timestamp)
	if err != nil {
		return nil, err
	}
	tendered := decimal.Zero
	if input.Total != nil {
		tendered = *input.Total
	}
	status := enums.AppointmentStatusScheduled
	if input.CreateAppointmentDone {
		status = enums.AppointmentStatusDone
	}
	return s.record(ctx, recordInput{
		Customer:          input.Customer,
		Vehicle:           input.Vehicle,
		Items:             input.Items,
		Method:            input.Method,
		CreateAppointment: input.CreateAppointment || input.CreateAppointmentDone,
		ScheduledAt:       stamp,
		Tendered:          tendered,
	}, WorkflowOptions{
		EntryPoint:              EntryPointQuickCharge,
		PriceSource:             enums.PriceSourceRequest,
		AppointmentStatus:       status,
		RecordStandalonePayment: true,
	})
}

func (s *service) Get(ctx context.Context, id int64) (*Invoice, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, id)
	}
	items, err := s.repo.Items(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale items")
	}
	return &Invoice{Sale: *sale, Items: items}, nil
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]RecentSale, error) {
	rows, err := s.repo.ListRecent(ctx, pagination.NormalizeLimitWith(limit, s.recentLimit, s.recentLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return rows, nil
}

// Delete removes a sale and its items. Appointments and payments recorded
// with it are kept.
func (s *service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return mapLookupErr(err, id)
	}
	return nil
}

func parseScheduledAt(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(ScheduledAtLayout, value, time.UTC)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled_at must use the format YYYY-MM-DD HH:MM").
			WithDetails(map[string]any{"scheduled_at": value})
	}
	return &parsed, nil
}

func parseQuickTimestamp(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range quickChargeLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "timestamp must be an ISO-8601 date time").
		WithDetails(map[string]any{"timestamp": value})
}

func mapLookupErr(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "sale %d not found", id)
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sale lookup")
}
