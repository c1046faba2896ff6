package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// InventoryMovement is the append-only audit log behind every stock mutation.
type InventoryMovement struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	WarehouseID uuid.UUID            `gorm:"column:warehouse_id;type:uuid;not null"`
	ItemKind    enums.ItemKind       `gorm:"column:item_kind;type:item_kind;not null"`
	ItemID      uuid.UUID            `gorm:"column:item_id;type:uuid;not null"`
	State       enums.StockState     `gorm:"column:state;type:stock_state;not null"`
	Delta       int                  `gorm:"column:delta;not null"`
	Reason      enums.MovementReason `gorm:"column:reason;type:movement_reason;not null"`
	ActorID     *uuid.UUID           `gorm:"column:actor_id;type:uuid"`
	OrderID     *uuid.UUID           `gorm:"column:order_id;type:uuid"`
	Notes       *string              `gorm:"column:notes"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
