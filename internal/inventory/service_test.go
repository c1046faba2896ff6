package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryStock{}, &models.InventoryMovement{}); err != nil {
		t.Fatalf("migrate inventory: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), &gormTxRunner{db: db})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func seedStock(t *testing.T, db *gorm.DB, key StockKey, qty int) {
	t.Helper()
	if err := db.Create(&models.InventoryStock{
		WarehouseID: key.WarehouseID,
		ItemKind:    key.ItemKind,
		ItemID:      key.ItemID,
		State:       key.State,
		Quantity:    qty,
	}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func fullCylinderKey() StockKey {
	return StockKey{
		WarehouseID: uuid.New(),
		ItemKind:    enums.ItemKindCylinder,
		ItemID:      uuid.New(),
		State:       enums.StockStateFull,
	}
}

func loadStock(t *testing.T, db *gorm.DB, key StockKey) models.InventoryStock {
	t.Helper()
	var stock models.InventoryStock
	if err := db.Where("warehouse_id = ? AND item_kind = ? AND item_id = ? AND state = ?",
		key.WarehouseID, key.ItemKind, key.ItemID, key.State).First(&stock).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return stock
}

func TestDebitHappyPath(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	key := fullCylinderKey()
	seedStock(t, db, key, 5)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Debit(ctx, tx, MutationInput{Key: key, Qty: 3, Reason: enums.MovementReasonOrderDebit})
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	if got := loadStock(t, db, key); got.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", got.Quantity)
	}

	var movements []models.InventoryMovement
	if err := db.Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 || movements[0].Delta != -3 || movements[0].Reason != enums.MovementReasonOrderDebit {
		t.Fatalf("unexpected movement rows: %+v", movements)
	}
}

func TestDebitInsufficientStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	key := fullCylinderKey()
	seedStock(t, db, key, 2)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Debit(ctx, tx, MutationInput{Key: key, Qty: 3, Reason: enums.MovementReasonOrderDebit})
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	// quantity untouched, no audit row
	if got := loadStock(t, db, key); got.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", got.Quantity)
	}
	var count int64
	db.Model(&models.InventoryMovement{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no movements, got %d", count)
	}
}

func TestDebitMissingBucket(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Debit(ctx, tx, MutationInput{Key: fullCylinderKey(), Qty: 1, Reason: enums.MovementReasonOrderDebit})
	})
	if err == nil {
		t.Fatal("expected insufficient stock error for missing bucket")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAvailableReadsBucketInsideTx(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	key := fullCylinderKey()
	seedStock(t, db, key, 4)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		got, err := svc.Available(ctx, tx, key)
		if err != nil {
			return err
		}
		if got != 4 {
			t.Fatalf("expected 4 available, got %d", got)
		}

		missing := fullCylinderKey()
		got, err = svc.Available(ctx, tx, missing)
		if err != nil {
			return err
		}
		if got != 0 {
			t.Fatalf("expected 0 for missing bucket, got %d", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("available: %v", err)
	}

	if _, err := svc.Available(ctx, nil, key); err == nil {
		t.Fatal("expected error without transaction")
	}
}

func TestCreditCreatesAndAccumulates(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	key := fullCylinderKey()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.Credit(ctx, tx, MutationInput{Key: key, Qty: 4, Reason: enums.MovementReasonReturnCredit})
		})
		if err != nil {
			t.Fatalf("credit %d: %v", i, err)
		}
	}

	if got := loadStock(t, db, key); got.Quantity != 8 {
		t.Fatalf("expected quantity 8, got %d", got.Quantity)
	}
}

func TestTransferMovesBothSides(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	itemID := uuid.New()
	from := StockKey{WarehouseID: uuid.New(), ItemKind: enums.ItemKindCylinder, ItemID: itemID, State: enums.StockStateFull}
	to := StockKey{WarehouseID: uuid.New(), ItemKind: enums.ItemKindCylinder, ItemID: itemID, State: enums.StockStateFull}
	seedStock(t, db, from, 10)

	err := svc.Transfer(ctx, TransferInput{
		FromWarehouseID: from.WarehouseID,
		ToWarehouseID:   to.WarehouseID,
		ItemKind:        enums.ItemKindCylinder,
		ItemID:          itemID,
		State:           enums.StockStateFull,
		Qty:             4,
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := loadStock(t, db, from); got.Quantity != 6 {
		t.Fatalf("expected source 6, got %d", got.Quantity)
	}
	if got := loadStock(t, db, to); got.Quantity != 4 {
		t.Fatalf("expected destination 4, got %d", got.Quantity)
	}
}

func TestTransferInsufficientRollsBack(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	itemID := uuid.New()
	from := StockKey{WarehouseID: uuid.New(), ItemKind: enums.ItemKindCylinder, ItemID: itemID, State: enums.StockStateFull}
	seedStock(t, db, from, 2)

	err := svc.Transfer(ctx, TransferInput{
		FromWarehouseID: from.WarehouseID,
		ToWarehouseID:   uuid.New(),
		ItemKind:        enums.ItemKindCylinder,
		ItemID:          itemID,
		State:           enums.StockStateFull,
		Qty:             5,
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := loadStock(t, db, from); got.Quantity != 2 {
		t.Fatalf("expected source untouched, got %d", got.Quantity)
	}
	var count int64
	db.Model(&models.InventoryMovement{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no movements after rollback, got %d", count)
	}
}

func TestAdjustSetsAbsoluteQuantity(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	key := fullCylinderKey()
	seedStock(t, db, key, 7)
	ctx := context.Background()

	if err := svc.Adjust(ctx, AdjustInput{Key: key, Quantity: 3}); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	if got := loadStock(t, db, key); got.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", got.Quantity)
	}

	var movement models.InventoryMovement
	if err := db.First(&movement).Error; err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if movement.Delta != -4 || movement.Reason != enums.MovementReasonManualAdjustment {
		t.Fatalf("unexpected adjustment movement: %+v", movement)
	}
}

func TestDebitValidation(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Debit(ctx, tx, MutationInput{Key: fullCylinderKey(), Qty: 0, Reason: enums.MovementReasonOrderDebit})
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}
