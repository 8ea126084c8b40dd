// Package testutil provides SQLite-backed fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carwashpos/backend/pkg/config"
	"github.com/carwashpos/backend/pkg/db"
	"github.com/carwashpos/backend/pkg/db/models"
	"github.com/carwashpos/backend/pkg/enums"
	"github.com/carwashpos/backend/pkg/migrate"
)

// NewDB opens a private in-memory SQLite database with the full schema applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := migrate.Up(context.Background(), sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// NewClient wraps NewDB in a db.Client for services that open transactions.
func NewClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := NewDB(t)
	return db.NewFromGorm(conn), conn
}

// Clock returns a fixed clock function.
func Clock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func Str(v string) *string { return &v }

func ID(v int64) *int64 { return &v }

func MustCreateService(t *testing.T, conn *gorm.DB, name string, price string) *models.Service {
	t.Helper()
	svc := &models.Service{Name: name, Price: decimal.RequireFromString(price)}
	if err := conn.Create(svc).Error; err != nil {
		t.Fatalf("create service: %v", err)
	}
	return svc
}

func MustCreateCustomer(t *testing.T, conn *gorm.DB, name string, phone *string) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: name, Phone: phone}
	if err := conn.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func MustCreateVehicle(t *testing.T, conn *gorm.DB, regNo string, customerID *int64) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{RegNo: regNo, CustomerID: customerID}
	if err := conn.Create(vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return vehicle
}

func MustCreateAppointment(t *testing.T, conn *gorm.DB, vehicleID, serviceID int64, at time.Time, status enums.AppointmentStatus) *models.Appointment {
	t.Helper()
	appt := &models.Appointment{VehicleID: vehicleID, ServiceID: serviceID, ScheduledAt: at.UTC(), Status: status}
	if err := conn.Create(appt).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return appt
}

// MustCreateSale inserts a sale with a single line priced at total.
func MustCreateSale(t *testing.T, conn *gorm.DB, customerID, vehicleID *int64, serviceID int64, total string, at time.Time) *models.Sale {
	t.Helper()
	amount := decimal.RequireFromString(total)
	sale := &models.Sale{CustomerID: customerID, VehicleID: vehicleID, Total: amount, Paid: true, Method: "cash", Timestamp: at.UTC()}
	if err := conn.Create(sale).Error; err != nil {
		t.Fatalf("create sale: %v", err)
	}
	item := &models.SaleItem{SaleID: sale.ID, ServiceID: serviceID, Qty: 1, Price: amount, LineTotal: amount}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("create sale item: %v", err)
	}
	return sale
}

func MustCreatePayment(t *testing.T, conn *gorm.DB, appointmentID *int64, amount string, at time.Time) *models.Payment {
	t.Helper()
	payment := &models.Payment{AppointmentID: appointmentID, Amount: decimal.RequireFromString(amount), Method: "cash", Timestamp: at.UTC()}
	if err := conn.Create(payment).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return payment
}
