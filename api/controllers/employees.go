package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/distrigas/distrigas-backend/api/responses"
	"github.com/distrigas/distrigas-backend/api/validators"
	"github.com/distrigas/distrigas-backend/internal/employees"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/logger"
)

type createEmployeeRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Phone    string `json:"phone" validate:"required,min=7"`
	Role     string `json:"role" validate:"required,oneof=admin repartidor contador bodeguero"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateEmployeeRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin repartidor contador bodeguero"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Active   *bool   `json:"active,omitempty"`
}

// CreateEmployee registers a staff account with a hashed password.
func CreateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}

		var body createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Create(r.Context(), employees.CreateInput{
			Name:     body.Name,
			Phone:    body.Phone,
			Role:     enums.ActorRole(body.Role),
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// GetEmployee fetches one staff record.
func GetEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "employeeID"), "employeeID")
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

// ListEmployees lists staff, optionally filtered by role.
func ListEmployees(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}

		var role *enums.ActorRole
		if raw := r.URL.Query().Get("role"); raw != "" {
			candidate := enums.ActorRole(raw)
			if !candidate.IsValid() || candidate == enums.ActorRoleCliente {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter"))
				return
			}
			role = &candidate
		}

		rows, err := svc.List(r.Context(), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UpdateEmployee applies a partial staff update, rehashing the password when
// one is supplied.
func UpdateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employees service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "employeeID"), "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := employees.EmployeePatch{
			Name:   body.Name,
			Phone:  body.Phone,
			Active: body.Active,
		}
		if body.Role != nil {
			role := enums.ActorRole(*body.Role)
			patch.Role = &role
		}

		if err := svc.Update(r.Context(), id, patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Password != nil {
			if err := svc.ChangePassword(r.Context(), id, *body.Password); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
