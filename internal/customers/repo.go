package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
)

// CustomerPatch carries partial profile updates. Nil fields are untouched.
type CustomerPatch struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
	Active  *bool
}

func (p CustomerPatch) changes() map[string]any {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Address != nil {
		updates["address"] = *p.Address
	}
	if p.Active != nil {
		updates["active"] = *p.Active
	}
	return updates
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.Customer) error
	Find(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, patch CustomerPatch) error
	List(ctx context.Context, limit int, offset int) ([]models.Customer, error)
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

func (r *repository) Create(ctx context.Context, row *models.Customer) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var row models.Customer
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var row models.Customer
	if err := r.db.WithContext(ctx).First(&row, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, patch CustomerPatch) error {
	updates := patch.changes()
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *repository) List(ctx context.Context, limit int, offset int) ([]models.Customer, error) {
	var rows []models.Customer
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
