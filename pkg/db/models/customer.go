package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer of cylinders and accessory products. LoyaltyPoints is a
// cache of the applied loyalty_entries deltas, maintained inside the same
// transaction as every ledger append.
type Customer struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name          string     `gorm:"column:name;not null"`
	Phone         string     `gorm:"column:phone;not null"`
	Email         *string    `gorm:"column:email"`
	Address       *string    `gorm:"column:address"`
	LoyaltyPoints int        `gorm:"column:loyalty_points;not null;default:0"`
	ReferredByID  *uuid.UUID `gorm:"column:referred_by_id;type:uuid"`
	Active        bool       `gorm:"column:active;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
