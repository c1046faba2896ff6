package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

type stubRepo struct {
	cylinder *models.CylinderType
	product  *models.Product
	override *models.CustomerPrice
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error) {
	if s.cylinder == nil || s.cylinder.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.cylinder, nil
}

func (s *stubRepo) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubRepo) FindCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) (*models.CustomerPrice, error) {
	if s.override == nil || s.override.CustomerID != customerID || s.override.CylinderTypeID != cylinderTypeID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.override, nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCylinder() *models.CylinderType {
	return &models.CylinderType{
		ID:            uuid.New(),
		Name:          "10kg",
		WeightKg:      10,
		ExchangePrice: price("48.50"),
		NewPrice:      price("120.00"),
		Available:     true,
	}
}

func TestUnitPriceExchangeStandard(t *testing.T) {
	ct := testCylinder()
	resolver, err := NewResolver(&stubRepo{cylinder: ct})
	if err != nil {
		t.Fatalf("unexpected resolver error: %v", err)
	}

	got, err := resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: ct.ID,
	}, enums.ItemActionExchange)
	if err != nil {
		t.Fatalf("UnitPrice error: %v", err)
	}
	if !got.Equal(price("48.50")) {
		t.Fatalf("expected standard exchange price, got %s", got)
	}
}

func TestUnitPriceExchangeCustomerOverride(t *testing.T) {
	ct := testCylinder()
	customerID := uuid.New()
	resolver, _ := NewResolver(&stubRepo{
		cylinder: ct,
		override: &models.CustomerPrice{
			CustomerID:     customerID,
			CylinderTypeID: ct.ID,
			UnitPrice:      price("45.00"),
		},
	})

	got, err := resolver.UnitPrice(context.Background(), customerID, ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: ct.ID,
	}, enums.ItemActionExchange)
	if err != nil {
		t.Fatalf("UnitPrice error: %v", err)
	}
	if !got.Equal(price("45.00")) {
		t.Fatalf("expected override price, got %s", got)
	}

	// another customer still pays the standard rate
	got, err = resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: ct.ID,
	}, enums.ItemActionExchange)
	if err != nil {
		t.Fatalf("UnitPrice error: %v", err)
	}
	if !got.Equal(price("48.50")) {
		t.Fatalf("expected standard price for other customer, got %s", got)
	}
}

func TestUnitPriceLoanFallsBackToNewPrice(t *testing.T) {
	ct := testCylinder()
	resolver, _ := NewResolver(&stubRepo{cylinder: ct})

	got, err := resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: ct.ID,
	}, enums.ItemActionLoanPurchase)
	if err != nil {
		t.Fatalf("UnitPrice error: %v", err)
	}
	if !got.Equal(price("120.00")) {
		t.Fatalf("expected fallback to new price, got %s", got)
	}

	ct.LoanPrice = decimal.NewNullDecimal(price("80.00"))
	got, err = resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: ct.ID,
	}, enums.ItemActionLoanPurchase)
	if err != nil {
		t.Fatalf("UnitPrice error: %v", err)
	}
	if !got.Equal(price("80.00")) {
		t.Fatalf("expected loan price, got %s", got)
	}
}

func TestUnitPriceUnavailableCylinder(t *testing.T) {
	ct := testCylinder()
	ct.Available = false
	resolver, _ := NewResolver(&stubRepo{cylinder: ct})

	_, err := resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: ct.ID,
	}, enums.ItemActionNewPurchase)
	if err == nil {
		t.Fatal("expected error for unavailable cylinder type")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUnitPriceProductSale(t *testing.T) {
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "Regulator",
		Price:     price("15.00"),
		Available: true,
	}
	resolver, _ := NewResolver(&stubRepo{product: product})

	got, err := resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:      enums.ItemKindProduct,
		ProductID: product.ID,
	}, enums.ItemActionSale)
	if err != nil {
		t.Fatalf("UnitPrice error: %v", err)
	}
	if !got.Equal(price("15.00")) {
		t.Fatalf("expected product price, got %s", got)
	}
}

func TestUnitPriceActionKindMismatch(t *testing.T) {
	ct := testCylinder()
	product := &models.Product{ID: uuid.New(), Price: price("15.00"), Available: true}
	resolver, _ := NewResolver(&stubRepo{cylinder: ct, product: product})

	if _, err := resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: ct.ID,
	}, enums.ItemActionSale); err == nil {
		t.Fatal("expected error for sale action on cylinder")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:      enums.ItemKindProduct,
		ProductID: product.ID,
	}, enums.ItemActionExchange); err == nil {
		t.Fatal("expected error for exchange action on product")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnitPriceMissingItem(t *testing.T) {
	resolver, _ := NewResolver(&stubRepo{})

	_, err := resolver.UnitPrice(context.Background(), uuid.New(), ItemRef{
		Kind:           enums.ItemKindCylinder,
		CylinderTypeID: uuid.New(),
	}, enums.ItemActionExchange)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
