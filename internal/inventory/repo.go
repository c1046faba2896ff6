package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// StockKey identifies one stock bucket.
type StockKey struct {
	WarehouseID uuid.UUID
	ItemKind    enums.ItemKind
	ItemID      uuid.UUID
	State       enums.StockState
}

// Repository manages persistence for stock rows and movement audit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStock(ctx context.Context, key StockKey) (*models.InventoryStock, error)
	ListStockByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]models.InventoryStock, error)
	CreateMovement(ctx context.Context, movement *models.InventoryMovement) error
	ListMovements(ctx context.Context, key StockKey, limit int) ([]models.InventoryMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStock(ctx context.Context, key StockKey) (*models.InventoryStock, error) {
	var stock models.InventoryStock
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND item_kind = ? AND item_id = ? AND state = ?",
			key.WarehouseID, key.ItemKind, key.ItemID, key.State).
		First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) ListStockByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]models.InventoryStock, error) {
	var rows []models.InventoryStock
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Order("item_kind ASC, item_id ASC, state ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.InventoryMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, key StockKey, limit int) ([]models.InventoryMovement, error) {
	query := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND item_kind = ? AND item_id = ? AND state = ?",
			key.WarehouseID, key.ItemKind, key.ItemID, key.State).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.InventoryMovement
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
