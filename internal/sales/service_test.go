package sales

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/appointments"
	"github.com/carwashpos/backend/internal/catalog"
	"github.com/carwashpos/backend/internal/customers"
	"github.com/carwashpos/backend/internal/payments"
	"github.com/carwashpos/backend/internal/resolver"
	"github.com/carwashpos/backend/internal/testutil"
	"github.com/carwashpos/backend/internal/vehicles"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/metrics"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc      *service
	conn     *gorm.DB
	registry *prometheus.Registry
	wash     *models.Service
	full     *models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := testutil.NewClient(t)
	res, err := resolver.New(customers.NewRepository(conn), vehicles.NewRepository(conn))
	require.NoError(t, err)
	registry := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Tx:           client,
		Repo:         NewRepository(conn),
		Resolver:     res,
		Catalog:      catalog.NewRepository(conn),
		Vehicles:     vehicles.NewRepository(conn),
		Appointments: appointments.NewRepository(conn),
		Payments:     payments.NewRepository(conn),
		Metrics:      metrics.NewSalesMetrics(registry),
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = testutil.Clock(fixedNow)
	return &fixture{
		svc:      impl,
		conn:     conn,
		registry: registry,
		wash:     testutil.MustCreateService(t, conn, "Exterior Wash", "150"),
		full:     testutil.MustCreateService(t, conn, "Full Wash + Interior", "400"),
	}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(model).Count(&n).Error)
	return n
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCheckoutPricesFromCatalog(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.Checkout(context.Background(), CheckoutInput{
		Customer: resolver.CustomerRef{Name: "Asha", Phone: testutil.Str("555")},
		Vehicle:  resolver.VehicleRef{RegNo: "KA01AB1234", Model: testutil.Str("Swift")},
		Items: []LineInput{
			{ServiceID: f.wash.ID, Qty: 2, Price: dec("1")},
			{ServiceID: f.full.ID},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.SaleID)
	require.NotNil(t, receipt.CustomerID)
	require.NotNil(t, receipt.VehicleID)
	assert.Nil(t, receipt.AppointmentID)
	assert.Nil(t, receipt.PaymentID)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(700)))

	invoice, err := f.svc.Get(context.Background(), *receipt.SaleID)
	require.NoError(t, err)
	assert.True(t, invoice.Sale.Paid)
	assert.Equal(t, "cash", invoice.Sale.Method)
	assert.True(t, invoice.Sale.Timestamp.Equal(fixedNow))
	assert.Equal(t, *receipt.CustomerID, *invoice.Sale.CustomerID)
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "Exterior Wash", invoice.Items[0].ServiceName)
	assert.Equal(t, 2, invoice.Items[0].Qty)
	assert.True(t, invoice.Items[0].Price.Equal(decimal.NewFromInt(150)))
	assert.True(t, invoice.Items[0].LineTotal.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 1, invoice.Items[1].Qty)

	sum := decimal.Zero
	for _, item := range invoice.Items {
		sum = sum.Add(item.LineTotal)
	}
	assert.True(t, sum.Equal(invoice.Sale.Total))

	var vehicle models.Vehicle
	require.NoError(t, f.conn.First(&vehicle, *receipt.VehicleID).Error)
	assert.Equal(t, *receipt.CustomerID, *vehicle.CustomerID)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.svc.metrics.Recorded(EntryPointCheckout)))
}

func TestCheckoutRequiresItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), CheckoutInput{Customer: resolver.CustomerRef{Name: "Asha"}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, f.count(t, &models.Customer{}))
	assert.Zero(t, f.count(t, &models.Sale{}))
}

func TestCheckoutValidatesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, CheckoutInput{Items: []LineInput{{ServiceID: f.wash.ID, Qty: -1}}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Checkout(ctx, CheckoutInput{Items: []LineInput{{Qty: 1}}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Checkout(ctx, CheckoutInput{
		Items:       []LineInput{{ServiceID: f.wash.ID}},
		ScheduledAt: "14/03/2025",
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, f.count(t, &models.Sale{}))
}

func TestCheckoutUnknownServiceRollsBack(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), CheckoutInput{
		Customer: resolver.CustomerRef{Name: "Asha"},
		Items:    []LineInput{{ServiceID: f.wash.ID}, {ServiceID: 999}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Zero(t, f.count(t, &models.Sale{}))
	assert.Zero(t, f.count(t, &models.SaleItem{}))
	// the resolver commits before the sale transaction starts
	assert.Equal(t, int64(1), f.count(t, &models.Customer{}))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.svc.metrics.Failed(EntryPointCheckout, string(pkgerrors.CodeNotFound))))
}

func TestCheckoutAppointmentUsesPlaceholderVehicle(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.Checkout(context.Background(), CheckoutInput{
		Customer:          resolver.CustomerRef{Name: "Asha"},
		Items:             []LineInput{{ServiceID: f.wash.ID}},
		CreateAppointment: true,
		ScheduledAt:       "2025-03-15 10:00",
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.AppointmentID)
	assert.Nil(t, receipt.VehicleID)

	var appt models.Appointment
	require.NoError(t, f.conn.First(&appt, *receipt.AppointmentID).Error)
	assert.Equal(t, enums.AppointmentStatusDone, appt.Status)
	assert.True(t, appt.Paid)
	assert.Equal(t, f.wash.ID, appt.ServiceID)
	assert.True(t, appt.ScheduledAt.Equal(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)))

	var vehicle models.Vehicle
	require.NoError(t, f.conn.First(&vehicle, appt.VehicleID).Error)
	assert.Equal(t, PlaceholderRegNo(*receipt.SaleID), vehicle.RegNo)
	assert.Nil(t, vehicle.Model)
	assert.Equal(t, *receipt.CustomerID, *vehicle.CustomerID)

	var sale models.Sale
	require.NoError(t, f.conn.First(&sale, *receipt.SaleID).Error)
	assert.Nil(t, sale.VehicleID)
}

func TestCheckoutAppointmentServiceOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	receipt, err := f.svc.Checkout(ctx, CheckoutInput{
		Vehicle:              resolver.VehicleRef{RegNo: "KA02"},
		Items:                []LineInput{{ServiceID: f.wash.ID}},
		CreateAppointment:    true,
		AppointmentServiceID: &f.full.ID,
	})
	require.NoError(t, err)
	var appt models.Appointment
	require.NoError(t, f.conn.First(&appt, *receipt.AppointmentID).Error)
	assert.Equal(t, f.full.ID, appt.ServiceID)
	assert.Equal(t, *receipt.VehicleID, appt.VehicleID)
	assert.True(t, appt.ScheduledAt.Equal(fixedNow))

	_, err = f.svc.Checkout(ctx, CheckoutInput{
		Items:                []LineInput{{ServiceID: f.wash.ID}},
		CreateAppointment:    true,
		AppointmentServiceID: testutil.ID(999),
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, int64(1), f.count(t, &models.Sale{}))
	assert.Equal(t, int64(1), f.count(t, &models.Appointment{}))
}

func TestQuickChargePricesFromRequestAndRecordsPayment(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.QuickCharge(context.Background(), QuickChargeInput{
		Customer:          resolver.CustomerRef{Name: "Ravi", Phone: testutil.Str("9000")},
		Vehicle:           resolver.VehicleRef{RegNo: "MH12"},
		Items:             []LineInput{{ServiceID: f.wash.ID, Qty: 1, Price: dec("120")}},
		Total:             dec("120"),
		Method:            "upi",
		CreateAppointment: true,
		Timestamp:         "2025-03-14T08:00:00.000Z",
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.SaleID)
	require.NotNil(t, receipt.PaymentID)
	require.NotNil(t, receipt.AppointmentID)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(120)))

	var sale models.Sale
	require.NoError(t, f.conn.First(&sale, *receipt.SaleID).Error)
	assert.True(t, sale.Paid)
	assert.Equal(t, "upi", sale.Method)

	var appt models.Appointment
	require.NoError(t, f.conn.First(&appt, *receipt.AppointmentID).Error)
	assert.Equal(t, enums.AppointmentStatusScheduled, appt.Status)
	assert.True(t, appt.Paid)
	assert.Equal(t, *receipt.VehicleID, appt.VehicleID)
	assert.True(t, appt.ScheduledAt.Equal(time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)))

	var payment models.Payment
	require.NoError(t, f.conn.First(&payment, *receipt.PaymentID).Error)
	assert.Equal(t, *receipt.AppointmentID, *payment.AppointmentID)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "upi", payment.Method)
}

func TestQuickChargeDoneAppointment(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.QuickCharge(context.Background(), QuickChargeInput{
		Items:                 []LineInput{{ServiceID: f.full.ID}},
		CreateAppointmentDone: true,
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.AppointmentID)
	assert.Nil(t, receipt.PaymentID)
	// no price sent, so the catalog price applies
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(400)))

	var appt models.Appointment
	require.NoError(t, f.conn.First(&appt, *receipt.AppointmentID).Error)
	assert.Equal(t, enums.AppointmentStatusDone, appt.Status)
	assert.False(t, appt.Paid)

	var sale models.Sale
	require.NoError(t, f.conn.First(&sale, *receipt.SaleID).Error)
	assert.False(t, sale.Paid)
}

func TestQuickChargePaymentOnly(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.QuickCharge(context.Background(), QuickChargeInput{
		Customer:          resolver.CustomerRef{ID: testutil.ID(42)},
		Total:             dec("80"),
		CreateAppointment: true,
	})
	require.NoError(t, err)
	assert.Nil(t, receipt.SaleID)
	assert.Nil(t, receipt.CustomerID)
	assert.Nil(t, receipt.AppointmentID)
	require.NotNil(t, receipt.PaymentID)
	assert.Zero(t, f.count(t, &models.Sale{}))
	assert.Equal(t, int64(1), f.count(t, &models.Payment{}))

	var payment models.Payment
	require.NoError(t, f.conn.First(&payment, *receipt.PaymentID).Error)
	assert.Nil(t, payment.AppointmentID)
	assert.Equal(t, "cash", payment.Method)
}

func TestQuickChargeSubCentTotalIsUnpaid(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.QuickCharge(context.Background(), QuickChargeInput{
		Items:             []LineInput{{ServiceID: f.wash.ID, Price: dec("0")}},
		Total:             dec("0.004"),
		CreateAppointment: true,
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.SaleID)
	require.NotNil(t, receipt.AppointmentID)
	assert.Nil(t, receipt.PaymentID)
	assert.Zero(t, f.count(t, &models.Payment{}))

	var sale models.Sale
	require.NoError(t, f.conn.First(&sale, *receipt.SaleID).Error)
	assert.False(t, sale.Paid)

	var appt models.Appointment
	require.NoError(t, f.conn.First(&appt, *receipt.AppointmentID).Error)
	assert.False(t, appt.Paid)
}

func TestQuickChargeRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.QuickCharge(ctx, QuickChargeInput{Total: dec("-1")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.QuickCharge(ctx, QuickChargeInput{Timestamp: "yesterday"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.QuickCharge(ctx, QuickChargeInput{Items: []LineInput{{ServiceID: f.wash.ID, Price: dec("-5")}}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestParseQuickTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	cases := []string{
		"2025-03-14T08:00:00Z",
		"2025-03-14T13:30:00+05:30",
		"2025-03-14T08:00:00",
		"2025-03-14T08:00",
		"2025-03-14 08:00",
	}
	for _, input := range cases {
		got, err := parseQuickTimestamp(input)
		require.NoError(t, err, input)
		assert.True(t, got.Equal(want), input)
	}
	got, err := parseQuickTimestamp("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListRecentNewestFirst(t *testing.T) {
	f := newFixture(t)
	customer := testutil.MustCreateCustomer(t, f.conn, "Asha", nil)
	vehicle := testutil.MustCreateVehicle(t, f.conn, "KA01", &customer.ID)
	older := testutil.MustCreateSale(t, f.conn, &customer.ID, &vehicle.ID, f.wash.ID, "150", fixedNow.Add(-2*time.Hour))
	newer := testutil.MustCreateSale(t, f.conn, nil, nil, f.full.ID, "400", fixedNow)

	rows, err := f.svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Nil(t, rows[0].CustomerName)
	assert.Nil(t, rows[0].RegNo)
	assert.Equal(t, older.ID, rows[1].ID)
	require.NotNil(t, rows[1].CustomerName)
	assert.Equal(t, "Asha", *rows[1].CustomerName)
	assert.Equal(t, "KA01", *rows[1].RegNo)
	assert.True(t, rows[1].Total.Equal(decimal.NewFromInt(150)))

	limited, err := f.svc.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDeleteSale(t *testing.T) {
	f := newFixture(t)
	sale := testutil.MustCreateSale(t, f.conn, nil, nil, f.wash.ID, "150", fixedNow)

	require.NoError(t, f.svc.Delete(context.Background(), sale.ID))
	assert.Zero(t, f.count(t, &models.Sale{}))
	assert.Zero(t, f.count(t, &models.SaleItem{}))

	err := f.svc.Delete(context.Background(), sale.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Get(context.Background(), sale.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
