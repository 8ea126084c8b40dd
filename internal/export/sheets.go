// Package export flattens every table into spreadsheet sheets.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/carwashpos/backend/pkg/errors"
)

// Filename is the download name of the workbook.
const Filename = "carwash_export.xlsx"

const timeLayout = "2006-01-02 15:04:05"

// Sheet is one table: a fixed header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

var (
	customerHeader    = []string{"id", "name", "phone", "email"}
	vehicleHeader     = []string{"id", "reg_no", "model", "customer_id"}
	serviceHeader     = []string{"id", "name", "price"}
	saleHeader        = []string{"sale_id", "customer_id", "vehicle_id", "total", "method", "timestamp"}
	saleItemHeader    = []string{"id", "sale_id", "service_id", "qty", "price", "line_total"}
	appointmentHeader = []string{"id", "vehicle_id", "service_id", "scheduled_at", "status", "paid"}
	paymentHeader     = []string{"id", "appointment_id", "amount", "method", "timestamp"}
)

// Service builds and encodes the export workbook.
type Service interface {
	Build(ctx context.Context) ([]Sheet, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("export repository required")
	}
	return &service{repo: repo}, nil
}

// Build reads every table. The result always has seven sheets in a fixed order.
func (s *service) Build(ctx context.Context) ([]Sheet, error) {
	builders := []func(context.Context) (Sheet, error){
		s.customers,
		s.vehicles,
		s.services,
		s.sales,
		s.saleItems,
		s.appointments,
		s.payments,
	}
	sheets := make([]Sheet, 0, len(builders))
	for _, build := range builders {
		sheet, err := build(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build export")
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func (s *service) customers(ctx context.Context) (Sheet, error) {
	rows, err := s.repo.Customers(ctx)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Name: "Customers", Header: customerHeader, Rows: make([][]any, 0, len(rows))}
	for _, c := range rows {
		sheet.Rows = append(sheet.Rows, []any{c.ID, c.Name, str(c.Phone), str(c.Email)})
	}
	return sheet, nil
}

func (s *service) vehicles(ctx context.Context) (Sheet, error) {
	rows, err := s.repo.Vehicles(ctx)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Name: "Vehicles", Header: vehicleHeader, Rows: make([][]any, 0, len(rows))}
	for _, v := range rows {
		sheet.Rows = append(sheet.Rows, []any{v.ID, v.RegNo, str(v.Model), id(v.CustomerID)})
	}
	return sheet, nil
}

func (s *service) services(ctx context.Context) (Sheet, error) {
	rows, err := s.repo.Services(ctx)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Name: "Services", Header: serviceHeader, Rows: make([][]any, 0, len(rows))}
	for _, svc := range rows {
		sheet.Rows = append(sheet.Rows, []any{svc.ID, svc.Name, money(svc.Price)})
	}
	return sheet, nil
}

func (s *service) sales(ctx context.Context) (Sheet, error) {
	rows, err := s.repo.Sales(ctx)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Name: "Sales", Header: saleHeader, Rows: make([][]any, 0, len(rows))}
	for _, sale := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			sale.ID, id(sale.CustomerID), id(sale.VehicleID), money(sale.Total), sale.Method, stamp(sale.Timestamp),
		})
	}
	return sheet, nil
}

func (s *service) saleItems(ctx context.Context) (Sheet, error) {
	rows, err := s.repo.SaleItems(ctx)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Name: "SaleItems", Header: saleItemHeader, Rows: make([][]any, 0, len(rows))}
	for _, item := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			item.ID, item.SaleID, item.ServiceID, item.Qty, money(item.Price), money(item.LineTotal),
		})
	}
	return sheet, nil
}

func (s *service) appointments(ctx context.Context) (Sheet, error) {
	rows, err := s.repo.Appointments(ctx)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Name: "Appointments", Header: appointmentHeader, Rows: make([][]any, 0, len(rows))}
	for _, a := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			a.ID, a.VehicleID, a.ServiceID, stamp(a.ScheduledAt), a.Status.String(), a.Paid,
		})
	}
	return sheet, nil
}

func (s *service) payments(ctx context.Context) (Sheet, error) {
	rows, err := s.repo.Payments(ctx)
	if err != nil {
		return Sheet{}, err
	}
	sheet := Sheet{Name: "Payments", Header: paymentHeader, Rows: make([][]any, 0, len(rows))}
	for _, p := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			p.ID, id(p.AppointmentID), money(p.Amount), p.Method, stamp(p.Timestamp),
		})
	}
	return sheet, nil
}

// nullable cells render as empty strings

func str(v *string) any {
	if v == nil {
		return ""
	}
	return *v
}

func id(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

