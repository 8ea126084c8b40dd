package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/carwashpos/backend/api/responses"
	"github.com/carwashpos/backend/api/validators"
	"github.com/carwashpos/backend/internal/resolver"
	"github.com/carwashpos/backend/internal/sales"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/pagination"
)

type customerRefRequest struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

func (c *customerRefRequest) ref() resolver.CustomerRef {
	if c == nil {
		return resolver.CustomerRef{}
	}
	return resolver.CustomerRef{ID: positiveID(c.ID), Name: derefString(c.Name), Phone: c.Phone, Email: c.Email}
}

type vehicleRefRequest struct {
	RegNo *string `json:"reg_no"`
	Model *string `json:"model"`
}

func (v *vehicleRefRequest) ref() resolver.VehicleRef {
	if v == nil {
		return resolver.VehicleRef{}
	}
	return resolver.VehicleRef{RegNo: derefString(v.RegNo), Model: v.Model}
}

type cartItemRequest struct {
	ServiceID int64 `json:"service_id" validate:"required,gt=0"`
	Qty       int   `json:"qty"`
}

type checkoutRequest struct {
	Customer             *customerRefRequest `json:"customer"`
	Vehicle              *vehicleRefRequest  `json:"vehicle"`
	Items                []cartItemRequest   `json:"items" validate:"dive"`
	Method               string              `json:"method"`
	CreateAppointment    bool                `json:"create_appointment"`
	AppointmentServiceID *int64              `json:"appointment_service_id" validate:"omitempty,gt=0"`
	ScheduledAt          string              `json:"scheduled_at"`
}

type quickItemRequest struct {
	ServiceID int64            `json:"service_id" validate:"required,gt=0"`
	Qty       int              `json:"qty"`
	Price     *decimal.Decimal `json:"price"`
}

// quickChargeRequest mirrors the POS counter payload. Subtotal and tax are
// display-only on the client and are not read.
type quickChargeRequest struct {
	Customer              *customerRefRequest `json:"customer"`
	Vehicle               *vehicleRefRequest  `json:"vehicle"`
	Items                 []quickItemRequest  `json:"items" validate:"dive"`
	Total                 *decimal.Decimal    `json:"total"`
	Method                string              `json:"method"`
	CreateAppointment     bool                `json:"create_appointment"`
	CreateAppointmentDone bool                `json:"create_appointment_done"`
	Timestamp             string              `json:"timestamp"`
}

type checkoutResponse struct {
	SaleID        *int64 `json:"sale_id"`
	AppointmentID *int64 `json:"appointment_id,omitempty"`
}

type quickChargeResponse struct {
	OK            bool   `json:"ok"`
	SaleID        *int64 `json:"sale_id"`
	CustomerID    *int64 `json:"customer_id"`
	VehicleID     *int64 `json:"vehicle_id"`
	AppointmentID *int64 `json:"appointment_id"`
	PaymentID     *int64 `json:"payment_id"`
}

type recentSaleResponse struct {
	ID        int64   `json:"id"`
	Customer  *string `json:"customer"`
	RegNo     *string `json:"reg_no"`
	Total     float64 `json:"total"`
	Timestamp string  `json:"timestamp"`
}

type saleItemResponse struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Qty         int     `json:"qty"`
	Price       float64 `json:"price"`
	LineTotal   float64 `json:"line_total"`
}

type saleResponse struct {
	ID         int64              `json:"id"`
	CustomerID *int64             `json:"customer_id"`
	VehicleID  *int64             `json:"vehicle_id"`
	Total      float64            `json:"total"`
	Paid       bool               `json:"paid"`
	Method     string             `json:"method"`
	Timestamp  string             `json:"timestamp"`
	Items      []saleItemResponse `json:"items"`
}

// Checkout records a cart sale priced from the catalog.
func Checkout(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]sales.LineInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, sales.LineInput{ServiceID: item.ServiceID, Qty: item.Qty})
		}
		receipt, err := svc.Checkout(r.Context(), sales.CheckoutInput{
			Customer:             req.Customer.ref(),
			Vehicle:              req.Vehicle.ref(),
			Items:                items,
			Method:               req.Method,
			CreateAppointment:    req.CreateAppointment,
			AppointmentServiceID: req.AppointmentServiceID,
			ScheduledAt:          req.ScheduledAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			SaleID:        receipt.SaleID,
			AppointmentID: receipt.AppointmentID,
		})
	}
}

// QuickCharge records a counter sale priced from the request.
func QuickCharge(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quickChargeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]sales.LineInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, sales.LineInput{ServiceID: item.ServiceID, Qty: item.Qty, Price: item.Price})
		}
		receipt, err := svc.QuickCharge(r.Context(), sales.QuickChargeInput{
			Customer:              req.Customer.ref(),
			Vehicle:               req.Vehicle.ref(),
			Items:                 items,
			Total:                 req.Total,
			Method:                req.Method,
			CreateAppointment:     req.CreateAppointment,
			CreateAppointmentDone: req.CreateAppointmentDone,
			Timestamp:             req.Timestamp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quickChargeResponse{
			OK:            true,
			SaleID:        receipt.SaleID,
			CustomerID:    receipt.CustomerID,
			VehicleID:     receipt.VehicleID,
			AppointmentID: receipt.AppointmentID,
			PaymentID:     receipt.PaymentID,
		})
	}
}

func ListSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListRecent(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]recentSaleResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, recentSaleResponse{
				ID:        row.ID,
				Customer:  row.CustomerName,
				RegNo:     row.RegNo,
				Total:     money(row.Total),
				Timestamp: timestamp(row.Timestamp),
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func GetSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]saleItemResponse, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			items = append(items, saleItemResponse{
				ServiceID:   item.ServiceID,
				ServiceName: item.ServiceName,
				Qty:         item.Qty,
				Price:       money(item.Price),
				LineTotal:   money(item.LineTotal),
			})
		}
		sale := invoice.Sale
		responses.WriteSuccess(w, saleResponse{
			ID:         sale.ID,
			CustomerID: sale.CustomerID,
			VehicleID:  sale.VehicleID,
			Total:      money(sale.Total),
			Paid:       sale.Paid,
			Method:     sale.Method,
			Timestamp:  timestamp(sale.Timestamp),
			Items:      items,
		})
	}
}

func DeleteSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
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
