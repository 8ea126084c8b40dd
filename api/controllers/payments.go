package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/carwashpos/backend/api/responses"
	"github.com/carwashpos/backend/api/validators"
	"github.com/carwashpos/backend/internal/payments"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/pagination"
)

type paymentRequest struct {
	AppointmentID *int64           `json:"appointment_id" validate:"omitempty,gt=0"`
	Amount        *decimal.Decimal `json:"amount" validate:"required"`
	Method        string           `json:"method"`
}

type paymentResponse struct {
	ID            int64   `json:"id"`
	AppointmentID *int64  `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Timestamp     string  `json:"timestamp"`
}

func ListPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, err := validators.ParseQueryID(r, "appointment_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), appointmentID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]paymentResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, paymentResponse{
				ID:            row.ID,
				AppointmentID: row.AppointmentID,
				Amount:        money(row.Amount),
				Method:        row.Method,
				Timestamp:     timestamp(row.Timestamp),
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// RecordPayment stores a payment and settles the linked appointment, if any.
func RecordPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Record(r.Context(), payments.RecordInput{
			AppointmentID: req.AppointmentID,
			Amount:        *req.Amount,
			Method:        req.Method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, created.ID)
	}
}
