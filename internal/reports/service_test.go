package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/internal/testutil"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 30, 18, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := testutil.NewDB(t)
	svc, err := NewService(NewRepository(conn), 0)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = testutil.Clock(fixedNow)
	return impl, conn
}

func TestDailyTotal(t *testing.T) {
	svc, conn := newService(t)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	testutil.MustCreateSale(t, conn, nil, nil, wash.ID, "150", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	testutil.MustCreateSale(t, conn, nil, nil, wash.ID, "400.50", time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC))
	testutil.MustCreateSale(t, conn, nil, nil, wash.ID, "700", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))

	report, err := svc.DailyTotal(context.Background(), "2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", report.Date)
	assert.Equal(t, int64(2), report.Count)
	assert.True(t, report.Total.Equal(decimal.RequireFromString("550.50")), report.Total.String())
}

func TestDailyTotalEmptyDay(t *testing.T) {
	svc, _ := newService(t)

	report, err := svc.DailyTotal(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Zero(t, report.Count)
	assert.True(t, report.Total.IsZero())
}

func TestDailyTotalRejectsBadDates(t *testing.T) {
	svc, _ := newService(t)
	for _, input := range []string{"", "14-03-2025", "2025-02-30"} {
		_, err := svc.DailyTotal(context.Background(), input)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), input)
	}
}

func TestRollingWindowIsDense(t *testing.T) {
	svc, conn := newService(t)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	// day 10 of the 30 day window ending 2025-03-30
	testutil.MustCreateSale(t, conn, nil, nil, wash.ID, "150", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	// outside the window
	testutil.MustCreateSale(t, conn, nil, nil, wash.ID, "999", time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC))

	series, err := svc.RollingWindow(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, series, 30)
	assert.Equal(t, "2025-03-01", series[0].Date)
	assert.Equal(t, "2025-03-30", series[29].Date)

	sum := decimal.Zero
	for i, day := range series {
		sum = sum.Add(day.Total)
		if i == 9 {
			assert.Equal(t, "2025-03-10", day.Date)
			assert.True(t, day.Total.Equal(decimal.NewFromInt(150)))
			continue
		}
		assert.True(t, day.Total.IsZero(), day.Date)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(150)))
}

func TestRollingWindowBounds(t *testing.T) {
	svc, _ := newService(t)

	series, err := svc.RollingWindow(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, series, 7)

	_, err = svc.RollingWindow(context.Background(), MaxWindowDays+1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSummary(t *testing.T) {
	svc, conn := newService(t)
	wash := testutil.MustCreateService(t, conn, "Exterior Wash", "150")
	customer := testutil.MustCreateCustomer(t, conn, "Asha", nil)
	testutil.MustCreateVehicle(t, conn, "KA01", &customer.ID)
	sale := testutil.MustCreateSale(t, conn, &customer.ID, nil, wash.ID, "150", fixedNow)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{Customers: 1, Vehicles: 1, Services: 1, Sales: 1}, summary.Counts)
	assert.Len(t, summary.Series, DefaultWindowDays)
	require.Len(t, summary.RecentSales, 1)
	assert.Equal(t, sale.ID, summary.RecentSales[0].ID)
	require.Len(t, summary.RecentCustomers, 1)
	assert.True(t, summary.Series[DefaultWindowDays-1].Total.Equal(decimal.NewFromInt(150)))
}
