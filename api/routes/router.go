package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carwashpos/backend/api/controllers"
	"github.com/carwashpos/backend/api/middleware"
	"github.com/carwashpos/backend/internal/appointments"
	"github.com/carwashpos/backend/internal/catalog"
	"github.com/carwashpos/backend/internal/customers"
	"github.com/carwashpos/backend/internal/export"
	"github.com/carwashpos/backend/internal/payments"
	"github.com/carwashpos/backend/internal/reports"
	"github.com/carwashpos/backend/internal/sales"
	"github.com/carwashpos/backend/internal/vehicles"
	"github.com/carwashpos/backend/pkg/config"
	"github.com/carwashpos/backend/pkg/logger"
	"github.com/carwashpos/backend/pkg/metrics"
	pkgredis "github.com/carwashpos/backend/pkg/redis"
)

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Catalog      catalog.Service
	Customers    customers.Service
	Vehicles     vehicles.Service
	Sales        sales.Service
	Appointments appointments.Service
	Payments     payments.Service
	Reports      reports.Service
	Export       export.Service
}

// Infra carries the shared plumbing the router needs besides services.
// RedisClient may be nil; idempotency and the redis readiness check are then skipped.
type Infra struct {
	DB          controllers.Pinger
	RedisClient *pkgredis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, infra.HTTPMetrics),
	)
	r.NotFound(controllers.NotFound(logg))

	var (
		idemStore pkgredis.IdempotencyStore
		deps      = map[string]controllers.Pinger{"db": infra.DB}
	)
	if infra.RedisClient != nil {
		idemStore = infra.RedisClient
		deps["redis"] = infra.RedisClient
	}
	idempotent := middleware.Idempotency(idemStore, cfg.HTTP.IdempotencyTTL, logg)

	r.Get("/test", controllers.ServerTest())
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, deps, logg))
	})
	if infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/", controllers.POSPage(cfg.HTTP.StaticDir, logg))
	r.Get("/pos", controllers.POSPage(cfg.HTTP.StaticDir, logg))
	r.Handle("/static/*", controllers.StaticFiles(cfg.HTTP.StaticDir))
	r.Get("/dashboard", controllers.Dashboard(svcs.Reports, logg))
	r.Get("/export/all.xlsx", controllers.ExportWorkbook(svcs.Export, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.HTTP.CORSOrigins))

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.ListServices(svcs.Catalog, logg))
			r.Post("/", controllers.CreateService(svcs.Catalog, logg))
			r.Put("/{id}", controllers.UpdateService(svcs.Catalog, logg))
			r.Delete("/{id}", controllers.DeleteService(svcs.Catalog, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
			r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
			r.Get("/{id}", controllers.GetCustomer(svcs.Customers, logg))
			r.Delete("/{id}", controllers.DeleteCustomer(svcs.Customers, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.ListVehicles(svcs.Vehicles, logg))
			r.Post("/", controllers.CreateVehicle(svcs.Vehicles, logg))
			r.Delete("/{id}", controllers.DeleteVehicle(svcs.Vehicles, logg))
		})

		r.With(idempotent).Post("/sale", controllers.QuickCharge(svcs.Sales, logg))
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(svcs.Sales, logg))
			r.With(idempotent).Post("/", controllers.Checkout(svcs.Sales, logg))
			r.Get("/{id}", controllers.GetSale(svcs.Sales, logg))
			r.Delete("/{id}", controllers.DeleteSale(svcs.Sales, logg))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", controllers.ListAppointments(svcs.Appointments, logg))
			r.Post("/", controllers.CreateAppointment(svcs.Appointments, logg))
			r.Patch("/{id}", controllers.UpdateAppointment(svcs.Appointments, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", controllers.ListPayments(svcs.Payments, logg))
			r.With(idempotent).Post("/", controllers.RecordPayment(svcs.Payments, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily", controllers.DailyReport(svcs.Reports, logg))
			r.Get("/rolling", controllers.RollingReport(svcs.Reports, logg))
		})
	})

	return r
}
