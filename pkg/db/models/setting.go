package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting is a named numeric configuration value (points rates, thresholds)
// readable at transaction time.
type Setting struct {
	Key       string          `gorm:"column:key;primaryKey"`
	Value     decimal.Decimal `gorm:"column:value;type:numeric(12,4);not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
