package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// Order is the aggregate root of the fulfillment flow. Total always equals
// max(0, Subtotal - Discount) rounded to two places. Orders are never
// physically deleted; cancellation is a status transition with compensating
// ledger writes.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	WarehouseID     uuid.UUID           `gorm:"column:warehouse_id;type:uuid;not null"`
	DeliveryAddress string              `gorm:"column:delivery_address;not null"`
	DeliveryLat     *float64            `gorm:"column:delivery_lat"`
	DeliveryLng     *float64            `gorm:"column:delivery_lng"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Discount        decimal.Decimal     `gorm:"column:discount;type:numeric(10,2);not null;default:0"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	OrderStatus     enums.OrderStatus   `gorm:"column:order_status;type:order_status;not null;default:'pending_approval'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PointsEarned    int                 `gorm:"column:points_earned;not null;default:0"`
	PointsRedeemed  int                 `gorm:"column:points_redeemed;not null;default:0"`
	VoucherCode     *string             `gorm:"column:voucher_code"`
	Notes           *string             `gorm:"column:notes"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Delivery        *Delivery           `gorm:"foreignKey:OrderID"`
	Payments        []Payment           `gorm:"foreignKey:OrderID"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
