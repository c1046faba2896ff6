package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/api/responses"
	"github.com/distrigas/distrigas-backend/api/validators"
	"github.com/distrigas/distrigas-backend/internal/catalog"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/logger"
)

type cylinderTypeRequest struct {
	Name          string  `json:"name" validate:"required"`
	WeightKg      int     `json:"weight_kg" validate:"required,gt=0"`
	ExchangePrice string  `json:"exchange_price" validate:"required"`
	NewPrice      string  `json:"new_price" validate:"required"`
	LoanPrice     *string `json:"loan_price,omitempty"`
	Available     bool    `json:"available"`
}

type cylinderTypePatchRequest struct {
	Name          *string `json:"name,omitempty"`
	WeightKg      *int    `json:"weight_kg,omitempty" validate:"omitempty,gt=0"`
	ExchangePrice *string `json:"exchange_price,omitempty"`
	NewPrice      *string `json:"new_price,omitempty"`
	LoanPrice     *string `json:"loan_price,omitempty"`
	Available     *bool   `json:"available,omitempty"`
}

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price" validate:"required"`
	Available   bool    `json:"available"`
}

type productPatchRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

type warehouseRequest struct {
	Name      string  `json:"name" validate:"required"`
	Address   *string `json:"address,omitempty"`
	IsDefault bool    `json:"is_default"`
}

type customerPriceRequest struct {
	CylinderTypeID string `json:"cylinder_type_id" validate:"required,uuid"`
	UnitPrice      string `json:"unit_price" validate:"required"`
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a decimal amount")
	}
	return value, nil
}

// CreateCylinderType registers a sellable cylinder type.
func CreateCylinderType(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body cylinderTypeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exchange, err := parseMoney(body.ExchangePrice, "exchange_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		newPrice, err := parseMoney(body.NewPrice, "new_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := catalog.CylinderTypeInput{
			Name:          body.Name,
			WeightKg:      body.WeightKg,
			ExchangePrice: exchange,
			NewPrice:      newPrice,
			Available:     body.Available,
		}
		if body.LoanPrice != nil {
			loan, err := parseMoney(*body.LoanPrice, "loan_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.LoanPrice = &loan
		}

		row, err := svc.CreateCylinderType(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// ListCylinderTypes lists cylinder types, optionally only available ones.
func ListCylinderTypes(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		onlyAvailable, err := validators.ParseQueryBool(r, "available", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListCylinderTypes(r.Context(), onlyAvailable)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetCylinderType fetches one cylinder type by id.
func GetCylinderType(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "cylinderTypeID"), "cylinderTypeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.GetCylinderType(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// UpdateCylinderType applies a partial update to a cylinder type.
func UpdateCylinderType(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "cylinderTypeID"), "cylinderTypeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body cylinderTypePatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := catalog.CylinderTypePatch{
			Name:      body.Name,
			WeightKg:  body.WeightKg,
			Available: body.Available,
		}
		if body.ExchangePrice != nil {
			value, err := parseMoney(*body.ExchangePrice, "exchange_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			patch.ExchangePrice = &value
		}
		if body.NewPrice != nil {
			value, err := parseMoney(*body.NewPrice, "new_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			patch.NewPrice = &value
		}
		if body.LoanPrice != nil {
			value, err := parseMoney(*body.LoanPrice, "loan_price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			loan := decimal.NewNullDecimal(value)
			patch.LoanPrice = &loan
		}

		if err := svc.UpdateCylinderType(r.Context(), id, patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// CreateProduct registers an accessory product.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := parseMoney(body.Price, "price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.CreateProduct(r.Context(), catalog.ProductInput{
			Name:        body.Name,
			Description: body.Description,
			Price:       price,
			Available:   body.Available,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// ListProducts lists products, optionally only available ones.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		onlyAvailable, err := validators.ParseQueryBool(r, "available", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListProducts(r.Context(), onlyAvailable)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UpdateProduct applies a partial update to a product.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body productPatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := catalog.ProductPatch{
			Name:        body.Name,
			Description: body.Description,
			Available:   body.Available,
		}
		if body.Price != nil {
			value, err := parseMoney(*body.Price, "price")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			patch.Price = &value
		}

		if err := svc.UpdateProduct(r.Context(), id, patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// CreateWarehouse registers a warehouse; marking it default demotes the
// previous default atomically.
func CreateWarehouse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body warehouseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.CreateWarehouse(r.Context(), catalog.WarehouseInput{
			Name:      body.Name,
			Address:   body.Address,
			IsDefault: body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// ListWarehouses lists every warehouse.
func ListWarehouses(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		rows, err := svc.ListWarehouses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SetDefaultWarehouse promotes one warehouse to default.
func SetDefaultWarehouse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "warehouseID"), "warehouseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetDefaultWarehouse(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// SetCustomerPrice pins a negotiated exchange price for one customer.
func SetCustomerPrice(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body customerPriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cylinderTypeID, err := validators.PathUUID(body.CylinderTypeID, "cylinder_type_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := parseMoney(body.UnitPrice, "unit_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetCustomerPrice(r.Context(), catalog.CustomerPriceInput{
			CustomerID:     customerID,
			CylinderTypeID: cylinderTypeID,
			UnitPrice:      price,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// ListCustomerPrices lists a customer's negotiated prices.
func ListCustomerPrices(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListCustomerPrices(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// RemoveCustomerPrice deletes a negotiated price so the list price applies
// again.
func RemoveCustomerPrice(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		customerID, err := validators.PathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cylinderTypeID, err := validators.PathUUID(chi.URLParam(r, "cylinderTypeID"), "cylinderTypeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveCustomerPrice(r.Context(), customerID, cylinderTypeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
