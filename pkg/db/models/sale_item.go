package models

import "github.com/shopspring/decimal"

// SaleItem is one priced line of a sale. LineTotal = Price * Qty.
type SaleItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID    int64           `gorm:"column:sale_id;not null;index"`
	ServiceID int64           `gorm:"column:service_id;not null;index"`
	Qty       int             `gorm:"column:qty;not null;default:1"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}

func (SaleItem) TableName() string { return "sale_items" }
