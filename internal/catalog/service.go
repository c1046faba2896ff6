package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CylinderTypeInput creates or replaces a cylinder type's sellable fields.
type CylinderTypeInput struct {
	Name          string
	WeightKg      int
	ExchangePrice decimal.Decimal
	NewPrice      decimal.Decimal
	LoanPrice     *decimal.Decimal
	Available     bool
}

// ProductInput creates an accessory product.
type ProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Available   bool
}

// WarehouseInput creates a warehouse. Marking it default demotes the current
// default in the same transaction.
type WarehouseInput struct {
	Name      string
	Address   *string
	IsDefault bool
}

// CustomerPriceInput pins a negotiated exchange price for one customer and
// cylinder type.
type CustomerPriceInput struct {
	CustomerID     uuid.UUID
	CylinderTypeID uuid.UUID
	UnitPrice      decimal.Decimal
}

// Service manages the catalog the pricing resolver and order engine read.
type Service interface {
	CreateCylinderType(ctx context.Context, input CylinderTypeInput) (*models.CylinderType, error)
	GetCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error)
	ListCylinderTypes(ctx context.Context, onlyAvailable bool) ([]models.CylinderType, error)
	UpdateCylinderType(ctx context.Context, id uuid.UUID, patch CylinderTypePatch) error

	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) error

	CreateWarehouse(ctx context.Context, input WarehouseInput) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	SetDefaultWarehouse(ctx context.Context, id uuid.UUID) error

	SetCustomerPrice(ctx context.Context, input CustomerPriceInput) error
	ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPrice, error)
	RemoveCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateCylinderType(ctx context.Context, input CylinderTypeInput) (*models.CylinderType, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cylinder type name required")
	}
	if input.WeightKg <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}
	if input.ExchangePrice.IsNegative() || input.NewPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}

	row := &models.CylinderType{
		Name:          input.Name,
		WeightKg:      input.WeightKg,
		ExchangePrice: input.ExchangePrice.Round(2),
		NewPrice:      input.NewPrice.Round(2),
		Available:     input.Available,
	}
	if input.LoanPrice != nil {
		if input.LoanPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
		}
		row.LoanPrice = decimal.NewNullDecimal(input.LoanPrice.Round(2))
	}
	if err := s.repo.CreateCylinderType(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cylinder type")
	}
	return row, nil
}

func (s *service) GetCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error) {
	row, err := s.repo.FindCylinderType(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cylinder type not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cylinder type")
	}
	return row, nil
}

func (s *service) ListCylinderTypes(ctx context.Context, onlyAvailable bool) ([]models.CylinderType, error) {
	rows, err := s.repo.ListCylinderTypes(ctx, onlyAvailable)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cylinder types")
	}
	return rows, nil
}

func (s *service) UpdateCylinderType(ctx context.Context, id uuid.UUID, patch CylinderTypePatch) error {
	if _, err := s.GetCylinderType(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateCylinderType(ctx, id, patch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cylinder type")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	row := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Available:   input.Available,
	}
	if err := s.repo.CreateProduct(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist product")
	}
	return row, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return row, nil
}

func (s *service) ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	rows, err := s.repo.ListProducts(ctx, onlyAvailable)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateProduct(ctx, id, patch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return nil
}

func (s *service) CreateWarehouse(ctx context.Context, input WarehouseInput) (*models.Warehouse, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse name required")
	}

	row := &models.Warehouse{
		Name:      input.Name,
		Address:   input.Address,
		IsDefault: input.IsDefault,
		Active:    true,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.IsDefault {
			if err := repo.ClearDefaultWarehouse(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote default warehouse")
			}
		}
		if err := repo.CreateWarehouse(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist warehouse")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	rows, err := s.repo.ListWarehouses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	return rows, nil
}

// SetDefaultWarehouse swaps the default flag atomically; exactly one default
// survives the transaction.
func (s *service) SetDefaultWarehouse(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		warehouse, err := repo.FindWarehouse(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
		}
		if !warehouse.Active {
			return pkgerrors.New(pkgerrors.CodeValidation, "warehouse is inactive")
		}
		if err := repo.ClearDefaultWarehouse(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote default warehouse")
		}
		if err := repo.SetDefaultWarehouse(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote warehouse")
		}
		return nil
	})
}

func (s *service) SetCustomerPrice(ctx context.Context, input CustomerPriceInput) error {
	if input.CustomerID == uuid.Nil || input.CylinderTypeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer and cylinder type required")
	}
	if !input.UnitPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "override price must be positive")
	}
	if _, err := s.GetCylinderType(ctx, input.CylinderTypeID); err != nil {
		return err
	}

	row := &models.CustomerPrice{
		CustomerID:     input.CustomerID,
		CylinderTypeID: input.CylinderTypeID,
		UnitPrice:      input.UnitPrice.Round(2),
	}
	if err := s.repo.UpsertCustomerPrice(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist customer price")
	}
	return nil
}

func (s *service) ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPrice, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	rows, err := s.repo.ListCustomerPrices(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer prices")
	}
	return rows, nil
}

func (s *service) RemoveCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) error {
	affected, err := s.repo.DeleteCustomerPrice(ctx, customerID, cylinderTypeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer price")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer price not found")
	}
	return nil
}
