package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is money received, optionally settling an appointment.
type Payment struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	AppointmentID *int64          `gorm:"column:appointment_id;index"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Method        string          `gorm:"column:method;type:varchar(40);not null;default:'cash'"`
	Timestamp     time.Time       `gorm:"column:timestamp;not null;index"`
}

func (Payment) TableName() string { return "payments" }
