package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
)

// Repository persists the sellable catalog: cylinder types, other products,
// warehouses and per-customer price overrides.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCylinderType(ctx context.Context, row *models.CylinderType) error
	FindCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error)
	ListCylinderTypes(ctx context.Context, onlyAvailable bool) ([]models.CylinderType, error)
	UpdateCylinderType(ctx context.Context, id uuid.UUID, patch CylinderTypePatch) error

	CreateProduct(ctx context.Context, row *models.Product) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) error

	CreateWarehouse(ctx context.Context, row *models.Warehouse) error
	FindWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	ClearDefaultWarehouse(ctx context.Context) error
	SetDefaultWarehouse(ctx context.Context, id uuid.UUID) error

	UpsertCustomerPrice(ctx context.Context, row *models.CustomerPrice) error
	ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPrice, error)
	DeleteCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCylinderType(ctx context.Context, row *models.CylinderType) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) FindCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error) {
	var row models.CylinderType
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListCylinderTypes(ctx context.Context, onlyAvailable bool) ([]models.CylinderType, error) {
	query := r.db.WithContext(ctx).Order("weight_kg ASC")
	if onlyAvailable {
		query = query.Where("available = ?", true)
	}
	var rows []models.CylinderType
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateCylinderType(ctx context.Context, id uuid.UUID, patch CylinderTypePatch) error {
	updates := patch.changes()
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.CylinderType{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *repository) CreateProduct(ctx context.Context, row *models.Product) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if onlyAvailable {
		query = query.Where("available = ?", true)
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) error {
	updates := patch.changes()
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *repository) CreateWarehouse(ctx context.Context, row *models.Warehouse) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) FindWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	var row models.Warehouse
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var rows []models.Warehouse
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ClearDefaultWarehouse(ctx context.Context) error {
	return r.db.WithContext(ctx).Model(&models.Warehouse{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

func (r *repository) SetDefaultWarehouse(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Warehouse{}).
		Where("id = ?", id).
		Update("is_default", true).Error
}

func (r *repository) UpsertCustomerPrice(ctx context.Context, row *models.CustomerPrice) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "cylinder_type_id"}},
		DoUpdates: clause.Assignments(map[string]any{"unit_price": row.UnitPrice}),
	}).Create(row).Error
}

func (r *repository) ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]models.CustomerPrice, error) {
	var rows []models.CustomerPrice
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DeleteCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("customer_id = ? AND cylinder_type_id = ?", customerID, cylinderTypeID).
		Delete(&models.CustomerPrice{})
	return result.RowsAffected, result.Error
}
