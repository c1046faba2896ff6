package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

// OrderItemInput is one requested line. Exactly one of CylinderTypeID or
// ProductID must be set, matching Kind.
type OrderItemInput struct {
	Kind           enums.ItemKind
	CylinderTypeID uuid.UUID
	ProductID      uuid.UUID
	Action         enums.ItemAction
	Quantity       int
}

// CreateOrderInput carries everything order creation needs.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	Items           []OrderItemInput
	DeliveryAddress string
	DeliveryLat     *float64
	DeliveryLng     *float64
	PointsToRedeem  int
	VoucherCode     *string
	Notes           *string
	ActorID         uuid.UUID
	ActorRole       enums.ActorRole
}

// CreateOrderResult reports the priced and persisted order.
type CreateOrderResult struct {
	Order          *models.Order
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	PointsEarned   int
	PointsRedeemed int
}

// CancelOrderInput identifies the order and the actor requesting cancellation.
type CancelOrderInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.ActorRole
	Reason    *string
}

// ListOrdersQuery filters the order listing. CustomerID narrows to one
// customer (always set for cliente callers); Status is optional.
type ListOrdersQuery struct {
	CustomerID *uuid.UUID
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// ListOrdersResult is one page of orders plus the follow-up cursor.
type ListOrdersResult struct {
	Orders     []models.Order
	NextCursor string
}
