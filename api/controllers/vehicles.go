package controllers

import (
	"net/http"

	"github.com/carwashpos/backend/api/responses"
	"github.com/carwashpos/backend/api/validators"
	"github.com/carwashpos/backend/internal/vehicles"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/pagination"
)

type vehicleRequest struct {
	RegNo      string  `json:"reg_no" validate:"required"`
	Model      *string `json:"model"`
	CustomerID *int64  `json:"customer_id" validate:"omitempty,gt=0"`
}

type vehicleResponse struct {
	ID         int64   `json:"id"`
	RegNo      string  `json:"reg_no"`
	Model      *string `json:"model"`
	CustomerID *int64  `json:"customer_id"`
}

func ListVehicles(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParseQueryID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), customerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]vehicleResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, toVehicleResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

func toVehicleResponse(v models.Vehicle) vehicleResponse {
	return vehicleResponse{ID: v.ID, RegNo: v.RegNo, Model: v.Model, CustomerID: v.CustomerID}
}

// CreateVehicle registers a vehicle; a duplicate reg_no is a conflict.
func CreateVehicle(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req vehicleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), vehicles.CreateInput{RegNo: req.RegNo, Model: req.Model, CustomerID: req.CustomerID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, created.ID)
	}
}

func DeleteVehicle(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, Deleted{Deleted: true})
	}
}
