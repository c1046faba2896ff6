package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MutationInput carries one signed stock change plus its audit metadata.
type MutationInput struct {
	Key     StockKey
	Qty     int
	Reason  enums.MovementReason
	ActorID *uuid.UUID
	OrderID *uuid.UUID
	Notes   *string
}

// TransferInput moves quantity between two warehouses for the same item+state.
type TransferInput struct {
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	ItemKind        enums.ItemKind
	ItemID          uuid.UUID
	State           enums.StockState
	Qty             int
	ActorID         *uuid.UUID
	Notes           *string
}

// AdjustInput sets a bucket to an absolute quantity with an audit trail.
type AdjustInput struct {
	Key      StockKey
	Quantity int
	ActorID  *uuid.UUID
	Notes    *string
}

// Service guards the non-negativity invariant on every stock bucket. Debit and
// Credit run inside the caller's transaction so order creation can combine
// them with its own writes; Transfer and Adjust open their own.
type Service interface {
	Debit(ctx context.Context, tx *gorm.DB, input MutationInput) error
	Credit(ctx context.Context, tx *gorm.DB, input MutationInput) error
	Available(ctx context.Context, tx *gorm.DB, key StockKey) (int, error)
	Transfer(ctx context.Context, input TransferInput) error
	Adjust(ctx context.Context, input AdjustInput) error
	GetStock(ctx context.Context, key StockKey) (*models.InventoryStock, error)
	ListStock(ctx context.Context, warehouseID uuid.UUID) ([]models.InventoryStock, error)
	ListMovements(ctx context.Context, key StockKey, limit int) ([]models.InventoryMovement, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires an inventory service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func validateKey(key StockKey) error {
	if key.WarehouseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if !key.ItemKind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind")
	}
	if key.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if !key.State.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid stock state")
	}
	return nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, input MutationInput) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock debit")
	}
	if err := validateKey(input.Key); err != nil {
		return err
	}
	if input.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}
	if !input.Reason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid movement reason")
	}

	// The guard in the WHERE clause is the whole invariant: no row is touched
	// unless the bucket can absorb the debit.
	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_stock
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE warehouse_id = ? AND item_kind = ? AND item_id = ? AND state = ? AND quantity >= ?
	`, input.Qty, input.Key.WarehouseID, input.Key.ItemKind, input.Key.ItemID, input.Key.State, input.Qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit stock")
	}
	if res.RowsAffected == 0 {
		available := 0
		if stock, err := s.repo.WithTx(tx).FindStock(ctx, input.Key); err == nil {
			available = stock.Quantity
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"warehouse_id": input.Key.WarehouseID,
				"item_id":      input.Key.ItemID,
				"state":        input.Key.State,
				"requested":    input.Qty,
				"available":    available,
			})
	}

	return s.appendMovement(ctx, tx, input.Key, -input.Qty, input)
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, input MutationInput) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock credit")
	}
	if err := validateKey(input.Key); err != nil {
		return err
	}
	if input.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit quantity must be positive")
	}
	if !input.Reason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid movement reason")
	}

	res := tx.WithContext(ctx).Exec(`
		INSERT INTO inventory_stock (warehouse_id, item_kind, item_id, state, quantity, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (warehouse_id, item_kind, item_id, state)
		DO UPDATE SET quantity = inventory_stock.quantity + ?, updated_at = CURRENT_TIMESTAMP
	`, input.Key.WarehouseID, input.Key.ItemKind, input.Key.ItemID, input.Key.State, input.Qty, input.Qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "credit stock")
	}

	return s.appendMovement(ctx, tx, input.Key, input.Qty, input)
}

// Available reads a bucket's quantity inside the caller's transaction. A
// missing row reads as zero.
func (s *service) Available(ctx context.Context, tx *gorm.DB, key StockKey) (int, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock read")
	}
	if err := validateKey(key); err != nil {
		return 0, err
	}

	stock, err := s.repo.WithTx(tx).FindStock(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	return stock.Quantity, nil
}

func (s *service) Transfer(ctx context.Context, input TransferInput) error {
	if input.FromWarehouseID == input.ToWarehouseID {
		return pkgerrors.New(pkgerrors.CodeValidation, "source and destination warehouses must differ")
	}
	if input.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "transfer quantity must be positive")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.Debit(ctx, tx, MutationInput{
			Key: StockKey{
				WarehouseID: input.FromWarehouseID,
				ItemKind:    input.ItemKind,
				ItemID:      input.ItemID,
				State:       input.State,
			},
			Qty:     input.Qty,
			Reason:  enums.MovementReasonTransferOut,
			ActorID: input.ActorID,
			Notes:   input.Notes,
		}); err != nil {
			return err
		}
		return s.Credit(ctx, tx, MutationInput{
			Key: StockKey{
				WarehouseID: input.ToWarehouseID,
				ItemKind:    input.ItemKind,
				ItemID:      input.ItemID,
				State:       input.State,
			},
			Qty:     input.Qty,
			Reason:  enums.MovementReasonTransferIn,
			ActorID: input.ActorID,
			Notes:   input.Notes,
		})
	})
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) error {
	if err := validateKey(input.Key); err != nil {
		return err
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "adjusted quantity must not be negative")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		previous := 0
		if stock, err := s.repo.WithTx(tx).FindStock(ctx, input.Key); err == nil {
			previous = stock.Quantity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
		}

		res := tx.WithContext(ctx).Exec(`
			INSERT INTO inventory_stock (warehouse_id, item_kind, item_id, state, quantity, updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (warehouse_id, item_kind, item_id, state)
			DO UPDATE SET quantity = ?, updated_at = CURRENT_TIMESTAMP
		`, input.Key.WarehouseID, input.Key.ItemKind, input.Key.ItemID, input.Key.State, input.Quantity, input.Quantity)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust stock")
		}

		return s.appendMovement(ctx, tx, input.Key, input.Quantity-previous, MutationInput{
			Reason:  enums.MovementReasonManualAdjustment,
			ActorID: input.ActorID,
			Notes:   input.Notes,
		})
	})
}

func (s *service) appendMovement(ctx context.Context, tx *gorm.DB, key StockKey, delta int, input MutationInput) error {
	movement := &models.InventoryMovement{
		WarehouseID: key.WarehouseID,
		ItemKind:    key.ItemKind,
		ItemID:      key.ItemID,
		State:       key.State,
		Delta:       delta,
		Reason:      input.Reason,
		ActorID:     input.ActorID,
		OrderID:     input.OrderID,
		Notes:       input.Notes,
	}
	if err := s.repo.WithTx(tx).CreateMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}

func (s *service) GetStock(ctx context.Context, key StockKey) (*models.InventoryStock, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	stock, err := s.repo.FindStock(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock bucket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock")
	}
	return stock, nil
}

func (s *service) ListStock(ctx context.Context, warehouseID uuid.UUID) ([]models.InventoryStock, error) {
	if warehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	rows, err := s.repo.ListStockByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock")
	}
	return rows, nil
}

func (s *service) ListMovements(ctx context.Context, key StockKey, limit int) ([]models.InventoryMovement, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMovements(ctx, key, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}
	return rows, nil
}
