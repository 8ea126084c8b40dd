package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/carwashpos/backend/api/responses"
	"github.com/carwashpos/backend/api/validators"
	"github.com/carwashpos/backend/internal/appointments"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/pagination"
)

// appointmentTimeLayout is the wall-clock format the booking form submits.
const appointmentTimeLayout = "2006-01-02 15:04"

type appointmentRequest struct {
	VehicleID   int64  `json:"vehicle_id" validate:"required,gt=0"`
	ServiceID   int64  `json:"service_id" validate:"required,gt=0"`
	ScheduledAt string `json:"scheduled_at"`
}

type appointmentUpdateRequest struct {
	Status *string `json:"status"`
	Paid   *bool   `json:"paid"`
}

type appointmentResponse struct {
	ID          int64  `json:"id"`
	VehicleID   int64  `json:"vehicle_id"`
	ServiceID   int64  `json:"service_id"`
	ScheduledAt string `json:"scheduled_at"`
	Status      string `json:"status"`
	Paid        bool   `json:"paid"`
}

func toAppointmentResponse(a models.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID,
		VehicleID:   a.VehicleID,
		ServiceID:   a.ServiceID,
		ScheduledAt: timestamp(a.ScheduledAt),
		Status:      a.Status.String(),
		Paid:        a.Paid,
	}
}

func parseAppointmentTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{appointmentTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled_at must be YYYY-MM-DD HH:MM").
		WithDetails(map[string]any{"field": "scheduled_at"})
}

func ListAppointments(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := appointments.ListQuery{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAppointmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			query.Status = &status
		}
		vehicleID, err := validators.ParseQueryID(r, "vehicle_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.VehicleID = vehicleID
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.Limit = limit

		rows, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]appointmentResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, toAppointmentResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

func CreateAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scheduledAt, err := parseAppointmentTime(req.ScheduledAt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), appointments.CreateInput{
			VehicleID:   req.VehicleID,
			ServiceID:   req.ServiceID,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, created.ID)
	}
}

// UpdateAppointment changes status and/or marks the appointment paid.
func UpdateAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req appointmentUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := appointments.UpdateInput{Paid: req.Paid}
		if req.Status != nil {
			status, err := enums.ParseAppointmentStatus(strings.TrimSpace(*req.Status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAppointmentResponse(*updated))
	}
}
