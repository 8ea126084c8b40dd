package sales

import (
	"context"
	"errors"
	"fmt"
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
)

// WorkflowOptions selects the behaviour of one sale recording entry point.
type WorkflowOptions struct {
	EntryPoint string
	// PriceSource decides whether line prices come from the request or the catalog.
	PriceSource enums.PriceSource
	// AppointmentStatus is the status given to an appointment created alongside the sale.
	AppointmentStatus enums.AppointmentStatus
	// RecordStandalonePayment writes a payment row for the tendered amount.
	RecordStandalonePayment bool
	RequireItems            bool
	// SettledOnCreate marks the sale paid regardless of the tendered amount.
	SettledOnCreate bool
}

// LineInput is one requested line. Price is only read when the price source is request.
type LineInput struct {
	ServiceID int64
	Qty       int
	Price     *decimal.Decimal
}

type recordInput struct {
	Customer             resolver.CustomerRef
	Vehicle              resolver.VehicleRef
	Items                []LineInput
	Method               string
	CreateAppointment    bool
	AppointmentServiceID *int64
	ScheduledAt          *time.Time
	Tendered             decimal.Decimal
}

// Receipt reports every row the workflow touched.
type Receipt struct {
	SaleID        *int64
	CustomerID    *int64
	VehicleID     *int64
	AppointmentID *int64
	PaymentID     *int64
	Total         decimal.Decimal
}

// session bundles the repositories bound to one transaction.
type session struct {
	sales        Repository
	catalog      catalog.Repository
	vehicles     vehicles.Repository
	appointments appointments.Repository
	payments     payments.Repository
}

func (s *service) session(tx *gorm.DB) session {
	return session{
		sales:        s.repo.WithTx(tx),
		catalog:      s.catalog.WithTx(tx),
		vehicles:     s.vehicles.WithTx(tx),
		appointments: s.appointments.WithTx(tx),
		payments:     s.payments.WithTx(tx),
	}
}

type pricedLine struct {
	service *models.Service
	qty     int
	price   decimal.Decimal
	total   decimal.Decimal
}

func (s *service) record(ctx context.Context, input recordInput, opts WorkflowOptions) (*Receipt, error) {
	started := time.Now()
	ctx = s.logg.WithEntryPoint(ctx, opts.EntryPoint)

	receipt, err := s.runWorkflow(ctx, input, opts)
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.ObserveFailed(opts.EntryPoint, string(code))
		if code == pkgerrors.CodeDependency || code == pkgerrors.CodeInternal {
			s.logg.Error(ctx, "sale recording failed", err)
		}
		return nil, err
	}

	s.metrics.ObserveRecorded(opts.EntryPoint, receipt.Total.InexactFloat64(), time.Since(started))
	if receipt.SaleID != nil {
		ctx = s.logg.WithSaleID(ctx, *receipt.SaleID)
	}
	s.logg.Info(s.logg.WithField(ctx, "total", receipt.Total.StringFixed(2)), "sale recorded")
	return receipt, nil
}

func (s *service) runWorkflow(ctx context.Context, input recordInput, opts WorkflowOptions) (*Receipt, error) {
	lines, err := normalizeLines(input.Items, opts)
	if err != nil {
		return nil, err
	}
	tendered := input.Tendered.Round(2)
	if tendered.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total must not be negative")
	}

	customer, err := s.resolver.ResolveCustomer(ctx, input.Customer)
	if err != nil {
		return nil, err
	}
	var customerID *int64
	if customer != nil {
		customerID = &customer.ID
		ctx = s.logg.WithCustomerID(ctx, customer.ID)
	}
	vehicle, err := s.resolver.ResolveVehicle(ctx, input.Vehicle, customerID)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{CustomerID: customerID, Total: decimal.Zero}
	if vehicle != nil {
		receipt.VehicleID = &vehicle.ID
	}
	now := s.now().UTC()
	method := enums.NormalizePaymentMethod(input.Method).String()
	paid := opts.SettledOnCreate || tendered.IsPositive()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sess := s.session(tx)

		priced, err := priceLines(ctx, sess.catalog, lines, opts.PriceSource)
		if err != nil {
			return err
		}

		var sale *models.Sale
		if len(priced) > 0 {
			sale = &models.Sale{
				CustomerID: customerID,
				VehicleID:  receipt.VehicleID,
				Paid:       paid,
				Method:     method,
				Timestamp:  now,
			}
			items := make([]models.SaleItem, len(priced))
			total := decimal.Zero
			for i, line := range priced {
				items[i] = models.SaleItem{
					ServiceID: line.service.ID,
					Qty:       line.qty,
					Price:     line.price,
					LineTotal: line.total,
				}
				total = total.Add(line.total)
			}
			sale.Total = total
			if err := sess.sales.CreateSale(ctx, sale); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
			}
			for i := range items {
				items[i].SaleID = sale.ID
			}
			if err := sess.sales.CreateItems(ctx, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale items")
			}
			receipt.SaleID = &sale.ID
			receipt.Total = total
		}

		var apptID *int64
		if input.CreateAppointment && sale != nil {
			appt, err := createAppointment(ctx, sess, appointmentPlan{
				sale:        sale,
				vehicle:     vehicle,
				ownerID:     customerID,
				serviceID:   input.AppointmentServiceID,
				fallbackID:  priced[0].service.ID,
				status:      opts.AppointmentStatus,
				scheduledAt: scheduledAt(input.ScheduledAt, now),
			})
			if err != nil {
				return err
			}
			apptID = &appt.ID
			receipt.AppointmentID = apptID
		}

		if opts.RecordStandalonePayment && tendered.IsPositive() {
			payment := &models.Payment{
				AppointmentID: apptID,
				Amount:        tendered,
				Method:        method,
				Timestamp:     now,
			}
			if err := sess.payments.Create(ctx, payment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
			}
			receipt.PaymentID = &payment.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// normalizeLines validates request lines before anything is written.
func normalizeLines(items []LineInput, opts WorkflowOptions) ([]LineInput, error) {
	if opts.RequireItems && len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}
	out := make([]LineInput, 0, len(items))
	for i, item := range items {
		if item.ServiceID <= 0 {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].service_id is required", i)
		}
		if item.Qty < 0 {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].qty must not be negative", i)
		}
		if item.Qty == 0 {
			item.Qty = 1
		}
		if opts.PriceSource == enums.PriceSourceRequest && item.Price != nil && item.Price.IsNegative() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].price must not be negative", i)
		}
		out = append(out, item)
	}
	return out, nil
}

func priceLines(ctx context.Context, repo catalog.Repository, lines []LineInput, source enums.PriceSource) ([]pricedLine, error) {
	priced := make([]pricedLine, 0, len(lines))
	for _, line := range lines {
		svc, err := loadService(ctx, repo, line.ServiceID)
		if err != nil {
			return nil, err
		}
		price := svc.Price
		if source == enums.PriceSourceRequest && line.Price != nil {
			price = *line.Price
		}
		price = price.Round(2)
		priced = append(priced, pricedLine{
			service: svc,
			qty:     line.Qty,
			price:   price,
			total:   price.Mul(decimal.NewFromInt(int64(line.Qty))).Round(2),
		})
	}
	return priced, nil
}

type appointmentPlan struct {
	sale        *models.Sale
	vehicle     *models.Vehicle
	ownerID     *int64
	serviceID   *int64
	fallbackID  int64
	status      enums.AppointmentStatus
	scheduledAt time.Time
}

func createAppointment(ctx context.Context, sess session, plan appointmentPlan) (*models.Appointment, error) {
	serviceID := plan.fallbackID
	if plan.serviceID != nil {
		svc, err := loadService(ctx, sess.catalog, *plan.serviceID)
		if err != nil {
			return nil, err
		}
		serviceID = svc.ID
	}

	vehicle := plan.vehicle
	if vehicle == nil {
		placeholder, err := placeholderVehicle(ctx, sess.vehicles, plan.sale.ID, plan.ownerID)
		if err != nil {
			return nil, err
		}
		vehicle = placeholder
	}

	status := plan.status
	if status == "" {
		status = enums.AppointmentStatusScheduled
	}
	appt := &models.Appointment{
		VehicleID:   vehicle.ID,
		ServiceID:   serviceID,
		ScheduledAt: plan.scheduledAt,
		Status:      status,
		Paid:        plan.sale.Paid,
	}
	if err := sess.appointments.Create(ctx, appt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
	}
	return appt, nil
}

// PlaceholderRegNo is the registration given to the stand-in vehicle of a walk-in sale.
func PlaceholderRegNo(saleID int64) string {
	return fmt.Sprintf("WALKIN-%d", saleID)
}

func placeholderVehicle(ctx context.Context, repo vehicles.Repository, saleID int64, ownerID *int64) (*models.Vehicle, error) {
	regNo := PlaceholderRegNo(saleID)
	existing, err := repo.FindByRegNo(ctx, regNo)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find placeholder vehicle")
	}
	vehicle := &models.Vehicle{RegNo: regNo, CustomerID: ownerID}
	if err := repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create placeholder vehicle")
	}
	return vehicle, nil
}

func loadService(ctx context.Context, repo catalog.Repository, id int64) (*models.Service, error) {
	svc, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "service %d not found", id).
				WithDetails(map[string]any{"service_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	return svc, nil
}

func scheduledAt(requested *time.Time, now time.Time) time.Time {
	if requested == nil {
		return now
	}
	return requested.UTC()
}
