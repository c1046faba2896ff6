package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{}, &models.Warehouse{}, &models.Order{},
		&models.OrderItem{}, &models.Payment{},
	))
	return db
}

func seedRepoOrder(t *testing.T, db *gorm.DB, customerID uuid.UUID, status enums.OrderStatus, createdAt time.Time) models.Order {
	t.Helper()

	order := models.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		WarehouseID:     uuid.New(),
		DeliveryAddress: "Av. Central 100",
		Subtotal:        decimal.NewFromInt(97),
		Discount:        decimal.Zero,
		Total:           decimal.NewFromInt(97),
		OrderStatus:     status,
		PaymentStatus:   enums.PaymentStatusPending,
		CreatedAt:       createdAt,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestListOrdersFiltersByCustomerAndStatus(t *testing.T) {
	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerA := uuid.New()
	customerB := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	seedRepoOrder(t, db, customerA, enums.OrderStatusPendingApproval, base)
	seedRepoOrder(t, db, customerA, enums.OrderStatusDelivered, base.Add(time.Minute))
	seedRepoOrder(t, db, customerB, enums.OrderStatusPendingApproval, base.Add(2*time.Minute))

	rows, next, err := repo.ListOrders(ctx, ListOrdersQuery{CustomerID: &customerA})
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, customerA, row.CustomerID)
	}

	status := enums.OrderStatusDelivered
	rows, _, err = repo.ListOrders(ctx, ListOrdersQuery{CustomerID: &customerA, Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.OrderStatusDelivered, rows[0].OrderStatus)
}

func TestListOrdersPagesNewestFirstWithCursor(t *testing.T) {
	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedRepoOrder(t, db, customerID, enums.OrderStatusPendingApproval, base.Add(time.Duration(i)*time.Minute))
	}

	first, next, err := repo.ListOrders(ctx, ListOrdersQuery{
		CustomerID: &customerID,
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	second, last, err := repo.ListOrders(ctx, ListOrdersQuery{
		CustomerID: &customerID,
		Pagination: pagination.Params{Limit: 2, Cursor: pagination.EncodeCursor(*next)},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, last)
	assert.True(t, first[1].CreatedAt.After(second[0].CreatedAt))
}

func TestUpdateOrderWritesOnlySetFields(t *testing.T) {
	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedRepoOrder(t, db, uuid.New(), enums.OrderStatusPendingApproval, time.Now().UTC())

	status := enums.OrderStatusAssigned
	require.NoError(t, repo.UpdateOrder(ctx, order.ID, OrderPatch{OrderStatus: &status}))

	reloaded, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAssigned, reloaded.OrderStatus)
	assert.Equal(t, enums.PaymentStatusPending, reloaded.PaymentStatus)
	assert.Nil(t, reloaded.CancelledAt)
}

func TestHasApprovedPayment(t *testing.T) {
	db := newRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedRepoOrder(t, db, uuid.New(), enums.OrderStatusDelivered, time.Now().UTC())

	ok, err := repo.HasApprovedPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	payment := models.Payment{
		ID:      uuid.New(),
		OrderID: order.ID,
		Amount:  decimal.NewFromInt(97),
		Method:  enums.CollectionMethodCash,
		Status:  enums.VerificationStatusApproved,
	}
	require.NoError(t, db.Create(&payment).Error)

	ok, err = repo.HasApprovedPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
