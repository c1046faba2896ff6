package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/distrigas/distrigas-backend/api/middleware"
	"github.com/distrigas/distrigas-backend/api/responses"
	"github.com/distrigas/distrigas-backend/api/validators"
	"github.com/distrigas/distrigas-backend/internal/customers"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/logger"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

type registerCustomerRequest struct {
	Name         string  `json:"name" validate:"required,min=2"`
	Phone        string  `json:"phone" validate:"required,min=7"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Address      *string `json:"address,omitempty"`
	ReferredByID *string `json:"referred_by_id,omitempty" validate:"omitempty,uuid"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,min=7"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

type pointsBalanceResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Balance    int       `json:"balance"`
}

// customerPathID resolves the target customer: clientes may only act on
// themselves, staff pass an explicit id.
func customerPathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "customerID")
	if raw == "me" {
		if middleware.RoleFromContext(r.Context()) != enums.ActorRoleCliente {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "me alias is only valid for customer tokens")
		}
		return middleware.ActorIDFromContext(r.Context()), nil
	}
	id, err := validators.PathUUID(raw, "customerID")
	if err != nil {
		return uuid.Nil, err
	}
	if middleware.RoleFromContext(r.Context()) == enums.ActorRoleCliente && id != middleware.ActorIDFromContext(r.Context()) {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "customers may only access their own profile")
	}
	return id, nil
}

// RegisterCustomer creates a customer, awarding the referral bonus when a
// referrer is named.
func RegisterCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		var body registerCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := customers.RegisterInput{
			Name:    body.Name,
			Phone:   body.Phone,
			Email:   body.Email,
			Address: body.Address,
		}
		if body.ReferredByID != nil {
			referrerID, err := validators.PathUUID(*body.ReferredByID, "referred_by_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ReferredByID = &referrerID
		}

		row, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// GetCustomer fetches one customer profile.
func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		id, err := customerPathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// UpdateCustomer applies a partial profile update.
func UpdateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		id, err := customerPathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := customers.CustomerPatch{
			Name:    body.Name,
			Phone:   body.Phone,
			Email:   body.Email,
			Address: body.Address,
		}
		// Only staff can deactivate an account.
		if middleware.RoleFromContext(r.Context()) != enums.ActorRoleCliente {
			patch.Active = body.Active
		}

		if err := svc.Update(r.Context(), id, patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// ListCustomers pages the customer directory for staff.
func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetPointsBalance returns a customer's current loyalty balance.
func GetPointsBalance(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		id, err := customerPathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		balance, err := svc.PointsBalance(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pointsBalanceResponse{CustomerID: id, Balance: balance})
	}
}

// GetPointsHistory returns a customer's loyalty ledger, newest first.
func GetPointsHistory(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		id, err := customerPathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.PointsHistory(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
