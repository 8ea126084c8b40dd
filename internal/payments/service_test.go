package payments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/appointments"
	"github.com/carwashpos/backend/internal/testutil"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	client, conn := testutil.NewClient(t)
	svc, err := NewService(client, NewRepository(conn), appointments.NewRepository(conn))
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = testutil.Clock(fixedNow)
	return impl, conn
}

func TestRecordStandalonePayment(t *testing.T) {
	svc, _ := newService(t)

	payment, err := svc.Record(context.Background(), RecordInput{Amount: decimal.RequireFromString("250")})
	require.NoError(t, err)
	assert.Nil(t, payment.AppointmentID)
	assert.Equal(t, "cash", payment.Method)
	assert.True(t, payment.Timestamp.Equal(fixedNow))
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(250)))
}

func TestRecordRoundsToCents(t *testing.T) {
	svc, _ := newService(t)

	payment, err := svc.Record(context.Background(), RecordInput{Amount: decimal.RequireFromString("0.005")})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, payment.Amount.IsPositive())
}

func TestRecordMarksAppointmentPaid(t *testing.T) {
	svc, conn := newService(t)
	vehicle := testutil.MustCreateVehicle(t, conn, "KA01", nil)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	appt := testutil.MustCreateAppointment(t, conn, vehicle.ID, wash.ID, fixedNow, enums.AppointmentStatusDone)

	payment, err := svc.Record(context.Background(), RecordInput{
		AppointmentID: &appt.ID,
		Amount:        decimal.RequireFromString("150"),
		Method:        "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "card", payment.Method)

	var reloaded models.Appointment
	require.NoError(t, conn.First(&reloaded, appt.ID).Error)
	assert.True(t, reloaded.Paid)
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordInput{Amount: decimal.Zero})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Record(ctx, RecordInput{Amount: decimal.RequireFromString("0.004")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Record(ctx, RecordInput{AppointmentID: testutil.ID(404), Amount: decimal.NewFromInt(10)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	vehicle := testutil.MustCreateVehicle(t, conn, "KA01", nil)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	appt := testutil.MustCreateAppointment(t, conn, vehicle.ID, wash.ID, fixedNow, enums.AppointmentStatusCancelled)
	_, err = svc.Record(ctx, RecordInput{AppointmentID: &appt.ID, Amount: decimal.NewFromInt(10)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	var count int64
	require.NoError(t, conn.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListNewestFirst(t *testing.T) {
	svc, conn := newService(t)
	first := testutil.MustCreatePayment(t, conn, nil, "10", fixedNow.Add(-time.Hour))
	second := testutil.MustCreatePayment(t, conn, nil, "20", fixedNow)

	rows, err := svc.List(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
}
