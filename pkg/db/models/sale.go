package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one checkout event; Total equals the sum of its items' line totals.
type Sale struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID *int64          `gorm:"column:customer_id;index"`
	VehicleID  *int64          `gorm:"column:vehicle_id;index"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	Paid       bool            `gorm:"column:paid;not null;default:false"`
	Method     string          `gorm:"column:method;type:varchar(40);not null;default:'cash'"`
	Timestamp  time.Time       `gorm:"column:timestamp;not null;index"`
}

func (Sale) TableName() string { return "sales" }
