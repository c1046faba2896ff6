package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// Delivery is the 1:1 companion of an order once a repartidor is assigned.
type Delivery struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID               `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_deliveries_order"`
	DeliveryPersonID uuid.UUID               `gorm:"column:delivery_person_id;type:uuid;not null"`
	AssignedAt       time.Time               `gorm:"column:assigned_at;not null"`
	DepartedAt       *time.Time              `gorm:"column:departed_at"`
	CompletedAt      *time.Time              `gorm:"column:completed_at"`
	CollectionMethod *enums.CollectionMethod `gorm:"column:collection_method;type:collection_method"`
	AmountCollected  decimal.NullDecimal     `gorm:"column:amount_collected;type:numeric(10,2)"`
	IssueFlag        bool                    `gorm:"column:issue_flag;not null"`
	IssueNotes       *string                 `gorm:"column:issue_notes"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
