package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/api/middleware"
	"github.com/distrigas/distrigas-backend/api/responses"
	"github.com/distrigas/distrigas-backend/api/validators"
	"github.com/distrigas/distrigas-backend/internal/deliveries"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/logger"
)

type assignDeliveryRequest struct {
	DeliveryPersonID uuid.UUID `json:"delivery_person_id" validate:"required"`
}

type completeDeliveryRequest struct {
	CollectionMethod string `json:"collection_method" validate:"required,oneof=cash transfer deferred"`
	AmountCollected  string `json:"amount_collected,omitempty"`
}

type reportIssueRequest struct {
	Notes string `json:"notes" validate:"required"`
}

// AssignDelivery hands an order to a repartidor.
func AssignDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deliveries service unavailable"))
			return
		}

		orderID, err := validators.PathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body assignDeliveryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Assign(r.Context(), deliveries.AssignInput{
			OrderID:          orderID,
			DeliveryPersonID: body.DeliveryPersonID,
			ActorID:          middleware.ActorIDFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "assigned"})
	}
}

// StartDelivery marks the assigned delivery as departed.
func StartDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deliveries service unavailable"))
			return
		}

		orderID, err := validators.PathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Start(r.Context(), deliveries.StartInput{
			OrderID: orderID,
			ActorID: middleware.ActorIDFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "delivering"})
	}
}

// CompleteDelivery closes the delivery and settles the payment axis.
func CompleteDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deliveries service unavailable"))
			return
		}

		orderID, err := validators.PathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body completeDeliveryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount := decimal.Zero
		if body.AmountCollected != "" {
			amount, err = decimal.NewFromString(body.AmountCollected)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid collected amount"))
				return
			}
		}

		if err := svc.Complete(r.Context(), deliveries.CompleteInput{
			OrderID:          orderID,
			ActorID:          middleware.ActorIDFromContext(r.Context()),
			ActorRole:        middleware.RoleFromContext(r.Context()),
			CollectionMethod: enums.CollectionMethod(body.CollectionMethod),
			AmountCollected:  amount,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "delivered"})
	}
}

// ReportDeliveryIssue flags a delivery that could not complete.
func ReportDeliveryIssue(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deliveries service unavailable"))
			return
		}

		orderID, err := validators.PathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body reportIssueRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReportIssue(r.Context(), deliveries.ReportIssueInput{
			OrderID:   orderID,
			ActorID:   middleware.ActorIDFromContext(r.Context()),
			ActorRole: middleware.RoleFromContext(r.Context()),
			Notes:     body.Notes,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "delivery_issue"})
	}
}

// GetDelivery returns the delivery row for an order.
func GetDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deliveries service unavailable"))
			return
		}

		orderID, err := validators.PathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		delivery, err := svc.GetByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}
