package controllers

import (
	"net/http"

	"github.com/distrigas/distrigas-backend/api/middleware"
	"github.com/distrigas/distrigas-backend/api/responses"
	"github.com/distrigas/distrigas-backend/api/validators"
	"github.com/distrigas/distrigas-backend/internal/employees"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/logger"
)

type loginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ActorID      string `json:"actor_id"`
	Role         string `json:"role"`
	Name         string `json:"name"`
}

// AuthLogin authenticates an employee and returns a token pair.
func AuthLogin(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), employees.LoginInput{
			Phone:    body.Phone,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			ActorID:      result.Employee.ID.String(),
			Role:         string(result.Employee.Role),
			Name:         result.Employee.Name,
		})
	}
}

// AuthLogout revokes the caller's session. Requires a valid token.
func AuthLogout(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
