package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/api/middleware"
	"github.com/distrigas/distrigas-backend/api/responses"
	"github.com/distrigas/distrigas-backend/api/validators"
	internalorders "github.com/distrigas/distrigas-backend/internal/orders"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/logger"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

type orderItemRequest struct {
	Kind           string    `json:"kind" validate:"required,oneof=cylinder product"`
	CylinderTypeID uuid.UUID `json:"cylinder_type_id,omitempty"`
	ProductID      uuid.UUID `json:"product_id,omitempty"`
	Action         string    `json:"action" validate:"required,oneof=exchange new_purchase loan_purchase sale"`
	Quantity       int       `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerID      uuid.UUID          `json:"customer_id,omitempty"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string             `json:"delivery_address" validate:"required"`
	DeliveryLat     *float64           `json:"delivery_lat,omitempty"`
	DeliveryLng     *float64           `json:"delivery_lng,omitempty"`
	PointsToRedeem  int                `json:"points_to_redeem,omitempty" validate:"omitempty,min=0"`
	VoucherCode     *string            `json:"voucher_code,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}

type createOrderResponse struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderStatus    string          `json:"order_status"`
	PaymentStatus  string          `json:"payment_status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	PointsEarned   int             `json:"points_earned"`
	PointsRedeemed int             `json:"points_redeemed"`
}

// CreateOrder places a new order. Clientes order for themselves; staff supply
// the customer id.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.ActorIDFromContext(r.Context())
		role := middleware.RoleFromContext(r.Context())

		customerID := body.CustomerID
		if role == enums.ActorRoleCliente {
			customerID = actorID
		}

		items := make([]internalorders.OrderItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, internalorders.OrderItemInput{
				Kind:           enums.ItemKind(item.Kind),
				CylinderTypeID: item.CylinderTypeID,
				ProductID:      item.ProductID,
				Action:         enums.ItemAction(item.Action),
				Quantity:       item.Quantity,
			})
		}

		result, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			CustomerID:      customerID,
			Items:           items,
			DeliveryAddress: body.DeliveryAddress,
			DeliveryLat:     body.DeliveryLat,
			DeliveryLng:     body.DeliveryLng,
			PointsToRedeem:  body.PointsToRedeem,
			VoucherCode:     body.VoucherCode,
			Notes:           body.Notes,
			ActorID:         actorID,
			ActorRole:       role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createOrderResponse{
			OrderID:        result.Order.ID,
			OrderStatus:    string(result.Order.OrderStatus),
			PaymentStatus:  string(result.Order.PaymentStatus),
			Subtotal:       result.Subtotal,
			Discount:       result.Discount,
			Total:          result.Total,
			PointsEarned:   result.PointsEarned,
			PointsRedeemed: result.PointsRedeemed,
		})
	}
}

// CancelOrder cancels an order and reverses its stock and points effects.
func CancelOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.PathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body struct {
			Reason *string `json:"reason,omitempty"`
		}
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.Cancel(r.Context(), internalorders.CancelOrderInput{
			OrderID:   orderID,
			ActorID:   middleware.ActorIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
			Reason:    body.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// GetOrder returns the order detail with items, delivery and payments.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.PathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID,
			middleware.ActorIDFromContext(r.Context()),
			middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders pages orders newest-first. Clientes only see their own.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := internalorders.ListOrdersQuery{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		actorID := middleware.ActorIDFromContext(r.Context())
		role := middleware.RoleFromContext(r.Context())
		if role == enums.ActorRoleCliente {
			query.CustomerID = &actorID
		} else {
			customerID, err := validators.ParseQueryUUID(r, "customer_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if customerID != uuid.Nil {
				query.CustomerID = &customerID
			}
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.OrderStatus(raw)
			query.Status = &status
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
