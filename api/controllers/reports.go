package controllers

import (
	"bytes"
	"net/http"

	"github.com/carwashpos/backend/api/responses"
	"github.com/carwashpos/backend/api/validators"
	"github.com/carwashpos/backend/internal/dashboard"
	"github.com/carwashpos/backend/internal/export"
	"github.com/carwashpos/backend/internal/reports"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/logger"
)

type dailyReportResponse struct {
	Date  string  `json:"date"`
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

type dayTotalResponse struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

func DailyReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.DailyTotal(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dailyReportResponse{Date: report.Date, Count: report.Count, Total: money(report.Total)})
	}
}

// RollingReport returns a dense per-day series; days defaults to the configured window.
func RollingReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", 0, 1, reports.MaxWindowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		series, err := svc.RollingWindow(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]dayTotalResponse, 0, len(series))
		for _, day := range series {
			out = append(out, dayTotalResponse{Date: day.Date, Total: money(day.Total)})
		}
		responses.WriteSuccess(w, out)
	}
}

func Dashboard(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := dashboard.Render(&buf, summary); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render dashboard"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// ExportWorkbook downloads every table as one xlsx workbook.
func ExportWorkbook(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sheets, err := svc.Build(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, sheets); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode workbook"))
			return
		}
		if err := responses.WriteFile(w, export.ContentType, export.Filename, &buf); err != nil {
			logg.Error(r.Context(), "export.write_failed", err)
		}
	}
}
