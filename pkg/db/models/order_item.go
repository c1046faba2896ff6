package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// OrderItem is an immutable snapshot of one line of an order. Exactly one of
// CylinderTypeID/ProductID is set, matching Kind. StockState records which
// inventory bucket the line debited so cancellation can credit it back.
type OrderItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	Kind           enums.ItemKind   `gorm:"column:kind;type:item_kind;not null"`
	CylinderTypeID *uuid.UUID       `gorm:"column:cylinder_type_id;type:uuid"`
	ProductID      *uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Name           string           `gorm:"column:name;not null"`
	Action         enums.ItemAction `gorm:"column:action;type:item_action;not null"`
	Quantity       int              `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal  `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Subtotal       decimal.Decimal  `gorm:"column:subtotal;type:numeric(10,2);not null"`
	StockState     enums.StockState `gorm:"column:stock_state;type:stock_state;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}
