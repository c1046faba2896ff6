package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// Employee is a staff member. Role gates which transitions the employee may
// drive (repartidor delivers, contador verifies payments).
type Employee struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Phone        string          `gorm:"column:phone;not null"`
	Role         enums.ActorRole `gorm:"column:role;type:actor_role;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Active       bool            `gorm:"column:active;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
