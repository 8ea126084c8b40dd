package controllers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deleted acknowledges a delete.
type Deleted struct {
	Deleted bool `json:"deleted"`
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func positiveID(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
