package models

import "time"

// Vehicle is identified by its registration number.
type Vehicle struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RegNo      string    `gorm:"column:reg_no;type:varchar(40);not null;uniqueIndex:uq_vehicles_reg_no"`
	Model      *string   `gorm:"column:model;type:varchar(80)"`
	CustomerID *int64    `gorm:"column:customer_id;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Vehicle) TableName() string { return "vehicles" }
