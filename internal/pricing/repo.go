package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
)

// Repository exposes the catalog and override reads the resolver needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) (*models.CustomerPrice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCylinderType(ctx context.Context, id uuid.UUID) (*models.CylinderType, error) {
	var ct models.CylinderType
	if err := r.db.WithContext(ctx).First(&ct, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCustomerPrice(ctx context.Context, customerID, cylinderTypeID uuid.UUID) (*models.CustomerPrice, error) {
	var override models.CustomerPrice
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND cylinder_type_id = ?", customerID, cylinderTypeID).
		First(&override).Error; err != nil {
		return nil, err
	}
	return &override, nil
}
