package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carwashpos/backend/api/routes"
	"github.com/carwashpos/backend/internal/appointments"
	"github.com/carwashpos/backend/internal/catalog"
	"github.com/carwashpos/backend/internal/customers"
	"github.com/carwashpos/backend/internal/export"
	"github.com/carwashpos/backend/internal/payments"
	"github.com/carwashpos/backend/internal/reports"
	"github.com/carwashpos/backend/internal/resolver"
	"github.com/carwashpos/backend/internal/sales"
	"github.com/carwashpos/backend/internal/vehicles"
	"github.com/carwashpos/backend/pkg/config"
	"github.com/carwashpos/backend/pkg/db"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/metrics"
)

// buildServices constructs every domain service over one database client.
func buildServices(cfg *config.Config, logg *logger.Logger, client *db.Client, reg prometheus.Registerer) (routes.Services, error) {
	conn := client.DB()

	catalogRepo := catalog.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	vehicleRepo := vehicles.NewRepository(conn)
	appointmentRepo := appointments.NewRepository(conn)
	paymentRepo := payments.NewRepository(conn)

	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("catalog service: %w", err)
	}
	customerSvc, err := customers.NewService(client, customerRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("customer service: %w", err)
	}
	vehicleSvc, err := vehicles.NewService(client, vehicleRepo, customerRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("vehicle service: %w", err)
	}
	res, err := resolver.New(customerRepo, vehicleRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("resolver: %w", err)
	}
	salesSvc, err := sales.NewService(sales.ServiceParams{
		Tx:           client,
		Repo:         sales.NewRepository(conn),
		Resolver:     res,
		Catalog:      catalogRepo,
		Vehicles:     vehicleRepo,
		Appointments: appointmentRepo,
		Payments:     paymentRepo,
		Metrics:      metrics.NewSalesMetrics(reg),
		Logger:       logg,
		RecentLimit:  cfg.Reports.RecentSalesLimit,
	})
	if err != nil {
		return routes.Services{}, fmt.Errorf("sales service: %w", err)
	}
	appointmentSvc, err := appointments.NewService(appointmentRepo, vehicleRepo, catalogRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("appointment service: %w", err)
	}
	paymentSvc, err := payments.NewService(client, paymentRepo, appointmentRepo)
	if err != nil {
		return routes.Services{}, fmt.Errorf("payment service: %w", err)
	}
	reportSvc, err := reports.NewService(reports.NewRepository(conn), cfg.Reports.RollingWindowDays)
	if err != nil {
		return routes.Services{}, fmt.Errorf("report service: %w", err)
	}
	exportSvc, err := export.NewService(export.NewRepository(conn))
	if err != nil {
		return routes.Services{}, fmt.Errorf("export service: %w", err)
	}

	return routes.Services{
		Catalog:      catalogSvc,
		Customers:    customerSvc,
		Vehicles:     vehicleSvc,
		Sales:        salesSvc,
		Appointments: appointmentSvc,
		Payments:     paymentSvc,
		Reports:      reportSvc,
		Export:       exportSvc,
	}, nil
}
