package models

import "time"

// Customer is a walk-in or returning client of the wash.
type Customer struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(120);not null"`
	Phone     *string   `gorm:"column:phone;type:varchar(40)"`
	Email     *string   `gorm:"column:email;type:varchar(120)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Customer) TableName() string { return "customers" }
