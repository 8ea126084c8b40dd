package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carwashpos/backend/api/validators"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/logger"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCustomerRefDropsNonPositiveID(t *testing.T) {
	zero := int64(0)
	name := "Ravi"
	ref := (&customerRefRequest{ID: &zero, Name: &name}).ref()
	assert.Nil(t, ref.ID)
	assert.Equal(t, "Ravi", ref.Name)

	var missing *customerRefRequest
	assert.Nil(t, missing.ref().ID)
	assert.Empty(t, missing.ref().Name)

	var noVehicle *vehicleRefRequest
	assert.Empty(t, noVehicle.ref().RegNo)
}

func TestCheckoutRequestDecodesRefs(t *testing.T) {
	body := `{"customer":{"name":"Asha","phone":"98450"},"vehicle":{"reg_no":"KA01AB1234"},"items":[{"service_id":1,"qty":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/sale", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var payload checkoutRequest
	require.NoError(t, validators.DecodeJSONBody(req, &payload))

	customer := payload.Customer.ref()
	assert.Equal(t, "Asha", customer.Name)
	require.NotNil(t, customer.Phone)
	assert.Equal(t, "98450", *customer.Phone)
	assert.Nil(t, customer.ID)

	vehicle := payload.Vehicle.ref()
	assert.Equal(t, "KA01AB1234", vehicle.RegNo)
	assert.Nil(t, vehicle.Model)

	partial := (&customerRefRequest{}).ref()
	assert.Empty(t, partial.Name)
}

func TestParseAppointmentTime(t *testing.T) {
	at, err := parseAppointmentTime("2025-03-20 08:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 20, 8, 30, 0, 0, time.UTC), *at)

	at, err = parseAppointmentTime("  ")
	require.NoError(t, err)
	assert.Nil(t, at)

	_, err = parseAppointmentTime("20/03/2025")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestHealthReadySkipsNilPingers(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	calls := 0
	handler := HealthReady("test", map[string]Pinger{
		"db":    pingerFunc(func(context.Context) error { calls++; return nil }),
		"redis": nil,
	}, logg)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "test", rec.Header().Get("X-Carwash-Env"))

	failing := HealthReady("test", map[string]Pinger{
		"db": pingerFunc(func(context.Context) error { return errors.New("down") }),
	}, logg)
	rec = httptest.NewRecorder()
	failing(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
