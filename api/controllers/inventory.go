package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/distrigas/distrigas-backend/api/middleware"
	"github.com/distrigas/distrigas-backend/api/responses"
	"github.com/distrigas/distrigas-backend/api/validators"
	"github.com/distrigas/distrigas-backend/internal/inventory"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/logger"
)

type transferStockRequest struct {
	FromWarehouseID uuid.UUID `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   uuid.UUID `json:"to_warehouse_id" validate:"required"`
	ItemKind        string    `json:"item_kind" validate:"required,oneof=cylinder product"`
	ItemID          uuid.UUID `json:"item_id" validate:"required"`
	State           string    `json:"state" validate:"required,oneof=full empty damaged loaned available"`
	Quantity        int       `json:"quantity" validate:"required,gt=0"`
	Notes           *string   `json:"notes,omitempty"`
}

type adjustStockRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	ItemKind    string    `json:"item_kind" validate:"required,oneof=cylinder product"`
	ItemID      uuid.UUID `json:"item_id" validate:"required"`
	State       string    `json:"state" validate:"required,oneof=full empty damaged loaned available"`
	Quantity    int       `json:"quantity" validate:"min=0"`
	Notes       *string   `json:"notes,omitempty"`
}

// ListWarehouseStock returns every stock bucket of one warehouse.
func ListWarehouseStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		warehouseID, err := validators.PathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListStock(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// TransferStock moves quantity between warehouses, both sides or neither.
func TransferStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body transferStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.ActorIDFromContext(r.Context())
		if err := svc.Transfer(r.Context(), inventory.TransferInput{
			FromWarehouseID: body.FromWarehouseID,
			ToWarehouseID:   body.ToWarehouseID,
			ItemKind:        enums.ItemKind(body.ItemKind),
			ItemID:          body.ItemID,
			State:           enums.StockState(body.State),
			Qty:             body.Quantity,
			ActorID:         &actorID,
			Notes:           body.Notes,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "transferred"})
	}
}

// AdjustStock sets a bucket to an absolute quantity with an audit movement.
func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.ActorIDFromContext(r.Context())
		if err := svc.Adjust(r.Context(), inventory.AdjustInput{
			Key: inventory.StockKey{
				WarehouseID: body.WarehouseID,
				ItemKind:    enums.ItemKind(body.ItemKind),
				ItemID:      body.ItemID,
				State:       enums.StockState(body.State),
			},
			Quantity: body.Quantity,
			ActorID:  &actorID,
			Notes:    body.Notes,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "adjusted"})
	}
}

// ListStockMovements pages the audit trail for one stock bucket.
func ListStockMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		warehouseID, err := validators.PathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := inventory.StockKey{
			WarehouseID: warehouseID,
			ItemKind:    enums.ItemKind(r.URL.Query().Get("item_kind")),
			ItemID:      itemID,
			State:       enums.StockState(r.URL.Query().Get("state")),
		}
		rows, err := svc.ListMovements(r.Context(), key, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
