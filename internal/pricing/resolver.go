package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

// ItemRef points at one catalog entry. Exactly one ID is set, matching Kind.
type ItemRef struct {
	Kind           enums.ItemKind
	CylinderTypeID uuid.UUID
	ProductID      uuid.UUID
}

// Resolver answers the only pricing question the order engine asks: what does
// one unit of this item cost this customer for this action. Pure read, safe
// to call outside a write transaction.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	UnitPrice(ctx context.Context, customerID uuid.UUID, item ItemRef, action enums.ItemAction) (decimal.Decimal, error)
}

type resolver struct {
	repo Repository
}

// NewResolver wires a pricing resolver with the provided repository.
func NewResolver(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &resolver{repo: repo}, nil
}

func (r *resolver) WithTx(tx *gorm.DB) Resolver {
	if tx == nil {
		return r
	}
	return &resolver{repo: r.repo.WithTx(tx)}
}

func (r *resolver) UnitPrice(ctx context.Context, customerID uuid.UUID, item ItemRef, action enums.ItemAction) (decimal.Decimal, error) {
	if !item.Kind.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind")
	}
	if !action.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid item action")
	}

	switch item.Kind {
	case enums.ItemKindCylinder:
		return r.cylinderPrice(ctx, customerID, item.CylinderTypeID, action)
	case enums.ItemKindProduct:
		return r.productPrice(ctx, item.ProductID, action)
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind")
	}
}

func (r *resolver) cylinderPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID, action enums.ItemAction) (decimal.Decimal, error) {
	if cylinderTypeID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cylinder type id required")
	}
	if action == enums.ItemActionSale {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "sale action applies to products only")
	}

	ct, err := r.repo.FindCylinderType(ctx, cylinderTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "cylinder type not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cylinder type")
	}
	if !ct.Available {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "cylinder type unavailable")
	}

	switch action {
	case enums.ItemActionNewPurchase:
		return ct.NewPrice, nil

	case enums.ItemActionLoanPurchase:
		// loan price is optional; fall back to the new-cylinder price
		if ct.LoanPrice.Valid {
			return ct.LoanPrice.Decimal, nil
		}
		return ct.NewPrice, nil

	case enums.ItemActionExchange:
		return r.exchangePrice(ctx, customerID, ct)

	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "invalid cylinder action")
	}
}

func (r *resolver) exchangePrice(ctx context.Context, customerID uuid.UUID, ct *models.CylinderType) (decimal.Decimal, error) {
	if customerID != uuid.Nil {
		override, err := r.repo.FindCustomerPrice(ctx, customerID, ct.ID)
		if err == nil {
			return override.UnitPrice, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer price")
		}
	}
	return ct.ExchangePrice, nil
}

func (r *resolver) productPrice(ctx context.Context, productID uuid.UUID, action enums.ItemAction) (decimal.Decimal, error) {
	if productID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if action != enums.ItemActionSale {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "products only support the sale action")
	}

	product, err := r.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.Available {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product unavailable")
	}
	return product.Price, nil
}
