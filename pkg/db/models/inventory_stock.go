package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// InventoryStock counts units per (warehouse, item, state). Quantity must
// never go negative; every mutation runs as a conditional update inside the
// caller's transaction.
type InventoryStock struct {
	WarehouseID uuid.UUID        `gorm:"column:warehouse_id;type:uuid;primaryKey"`
	ItemKind    enums.ItemKind   `gorm:"column:item_kind;type:item_kind;primaryKey"`
	ItemID      uuid.UUID        `gorm:"column:item_id;type:uuid;primaryKey"`
	State       enums.StockState `gorm:"column:state;type:stock_state;primaryKey"`
	Quantity    int              `gorm:"column:quantity;not null;default:0"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps GORM on the singular table the raw debit/credit statements
// target.
func (InventoryStock) TableName() string {
	return "inventory_stock"
}
