package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/catalog"
	"github.com/carwashpos/backend/internal/testutil"
	"github.com/carwashpos/backend/internal/vehicles"
	"github.com/carwashpos/backend/pkg/enums"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := testutil.NewDB(t)
	svc, err := NewService(NewRepository(conn), vehicles.NewRepository(conn), catalog.NewRepository(conn))
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = testutil.Clock(fixedNow)
	return impl, conn
}

func TestCreateStandaloneAppointment(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	vehicle := testutil.MustCreateVehicle(t, conn, "KA01", nil)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")

	appt, err := svc.Create(ctx, CreateInput{VehicleID: vehicle.ID, ServiceID: wash.ID})
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusScheduled, appt.Status)
	assert.False(t, appt.Paid)
	assert.True(t, appt.ScheduledAt.Equal(fixedNow))

	_, err = svc.Create(ctx, CreateInput{VehicleID: 999, ServiceID: wash.ID})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Create(ctx, CreateInput{VehicleID: vehicle.ID, ServiceID: 999})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Create(ctx, CreateInput{ServiceID: wash.ID})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	vehicle := testutil.MustCreateVehicle(t, conn, "KA01", nil)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	appt := testutil.MustCreateAppointment(t, conn, vehicle.ID, wash.ID, fixedNow, enums.AppointmentStatusScheduled)

	done := enums.AppointmentStatusDone
	paid := true
	updated, err := svc.Update(ctx, appt.ID, UpdateInput{Status: &done, Paid: &paid})
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusDone, updated.Status)
	assert.True(t, updated.Paid)

	cancelled := enums.AppointmentStatusCancelled
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Status: &cancelled})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	unpaid := false
	_, err = svc.Update(ctx, appt.ID, UpdateInput{Paid: &unpaid})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Update(ctx, appt.ID, UpdateInput{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCancelledAppointmentCannotBePaid(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	vehicle := testutil.MustCreateVehicle(t, conn, "KA01", nil)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	appt := testutil.MustCreateAppointment(t, conn, vehicle.ID, wash.ID, fixedNow, enums.AppointmentStatusScheduled)

	cancelled := enums.AppointmentStatusCancelled
	paid := true
	_, err := svc.Update(ctx, appt.ID, UpdateInput{Status: &cancelled, Paid: &paid})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	reloaded, err := svc.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusScheduled, reloaded.Status)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, conn := newService(t)
	vehicle := testutil.MustCreateVehicle(t, conn, "KA01", nil)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	testutil.MustCreateAppointment(t, conn, vehicle.ID, wash.ID, fixedNow, enums.AppointmentStatusScheduled)
	testutil.MustCreateAppointment(t, conn, vehicle.ID, wash.ID, fixedNow.Add(time.Hour), enums.AppointmentStatusDone)

	done := enums.AppointmentStatusDone
	rows, err := svc.List(context.Background(), ListQuery{Status: &done})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AppointmentStatusDone, rows[0].Status)

	all, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bogus := enums.AppointmentStatus("lost")
	_, err = svc.List(context.Background(), ListQuery{Status: &bogus})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
