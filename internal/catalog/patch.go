package catalog

import "github.com/shopspring/decimal"

// CylinderTypePatch carries partial updates to a cylinder type. Nil fields
// are left untouched.
type CylinderTypePatch struct {
	Name          *string
	WeightKg      *int
	ExchangePrice *decimal.Decimal
	NewPrice      *decimal.Decimal
	LoanPrice     *decimal.NullDecimal
	Available     *bool
}

func (p CylinderTypePatch) changes() map[string]any {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.WeightKg != nil {
		updates["weight_kg"] = *p.WeightKg
	}
	if p.ExchangePrice != nil {
		updates["exchange_price"] = *p.ExchangePrice
	}
	if p.NewPrice != nil {
		updates["new_price"] = *p.NewPrice
	}
	if p.LoanPrice != nil {
		updates["loan_price"] = *p.LoanPrice
	}
	if p.Available != nil {
		updates["available"] = *p.Available
	}
	return updates
}

// ProductPatch carries partial updates to an accessory product.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Available   *bool
}

func (p ProductPatch) changes() map[string]any {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	if p.Available != nil {
		updates["available"] = *p.Available
	}
	return updates
}
