package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a catalog entry with its list price.
type Service struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string          `gorm:"column:name;type:varchar(120);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Service) TableName() string { return "services" }
