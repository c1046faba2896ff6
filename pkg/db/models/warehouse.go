package models

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is a physical stock-holding location. Exactly one warehouse is
// flagged as the default used by order creation.
type Warehouse struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Address   *string   `gorm:"column:address"`
	IsDefault bool      `gorm:"column:is_default;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
