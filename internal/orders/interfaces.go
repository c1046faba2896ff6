package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/internal/inventory"
	"github.com/distrigas/distrigas-backend/internal/loyalty"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, patch OrderPatch) error
	ListOrders(ctx context.Context, query ListOrdersQuery) ([]models.Order, *pagination.Cursor, error)
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	FindDefaultWarehouse(ctx context.Context) (*models.Warehouse, error)
	FindCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	HasApprovedPayment(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockMutator is the slice of the inventory service order flows need.
type StockMutator interface {
	Debit(ctx context.Context, tx *gorm.DB, input inventory.MutationInput) error
	Credit(ctx context.Context, tx *gorm.DB, input inventory.MutationInput) error
	Available(ctx context.Context, tx *gorm.DB, key inventory.StockKey) (int, error)
}

// LedgerAppender is the slice of the loyalty service order flows need.
type LedgerAppender interface {
	Append(ctx context.Context, tx *gorm.DB, input loyalty.AppendInput) (*models.LoyaltyEntry, error)
}
