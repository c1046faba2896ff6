package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CylinderType is a catalog entry for a cylinder size (e.g. 10 kg). The three
// price columns back the action-based pricing tiers; LoanPrice may be unset,
// in which case loan purchases fall back to NewPrice.
type CylinderType struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	WeightKg      int                 `gorm:"column:weight_kg;not null"`
	ExchangePrice decimal.Decimal     `gorm:"column:exchange_price;type:numeric(10,2);not null"`
	NewPrice      decimal.Decimal     `gorm:"column:new_price;type:numeric(10,2);not null"`
	LoanPrice     decimal.NullDecimal `gorm:"column:loan_price;type:numeric(10,2)"`
	Available     bool                `gorm:"column:available;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
