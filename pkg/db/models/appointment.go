package models

import (
	"time"

	"github.com/carwashpos/backend/pkg/enums"
)

// Appointment books a service for a vehicle.
type Appointment struct {
	ID          int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	VehicleID   int64                   `gorm:"column:vehicle_id;not null;index"`
	ServiceID   int64                   `gorm:"column:service_id;not null;index"`
	ScheduledAt time.Time               `gorm:"column:scheduled_at;not null"`
	Status      enums.AppointmentStatus `gorm:"column:status;type:varchar(16);not null;default:'scheduled'"`
	Paid        bool                    `gorm:"column:paid;not null;default:false"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (Appointment) TableName() string { return "appointments" }
