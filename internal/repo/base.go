// Package repo holds the GORM plumbing shared by domain repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by repositories; it hands out a context-bound connection
// and can be rebound to a transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx returns it unbound.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bind returns a copy of the base scoped to tx. A nil tx keeps the current connection.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx != nil {
		b.db = tx
	}
	return b
}

// FindByID loads one row of T by primary key, returning gorm.ErrRecordNotFound when absent.
func FindByID[T any](ctx context.Context, b Base, id int64) (*T, error) {
	var row T
	if err := b.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateByID applies fields to the T row with id. Zero affected rows is
// reported as gorm.ErrRecordNotFound.
func UpdateByID[T any](ctx context.Context, b Base, id int64, fields map[string]any) error {
	return affected(b.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(fields))
}

// DeleteByID removes the T row with id, or reports gorm.ErrRecordNotFound.
func DeleteByID[T any](ctx context.Context, b Base, id int64) error {
	return affected(b.DB(ctx).Where("id = ?", id).Delete(new(T)))
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
