package employees

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// EmployeePatch carries partial staff updates. Nil fields are untouched.
type EmployeePatch struct {
	Name         *string
	Phone        *string
	Role         *enums.ActorRole
	PasswordHash *string
	Active       *bool
}

func (p EmployeePatch) changes() map[string]any {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Phone != nil {
		updates["phone"] = *p.Phone
	}
	if p.Role != nil {
		updates["role"] = *p.Role
	}
	if p.PasswordHash != nil {
		updates["password_hash"] = *p.PasswordHash
	}
	if p.Active != nil {
		updates["active"] = *p.Active
	}
	return updates
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.Employee) error
	Find(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	FindByPhone(ctx context.Context, phone string) (*models.Employee, error)
	List(ctx context.Context, role *enums.ActorRole) ([]models.Employee, error)
	Update(ctx context.Context, id uuid.UUID, patch EmployeePatch) error
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

func (r *repository) Create(ctx context.Context, row *models.Employee) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var row models.Employee
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Employee, error) {
	var row models.Employee
	if err := r.db.WithContext(ctx).First(&row, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, role *enums.ActorRole) ([]models.Employee, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	var rows []models.Employee
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, patch EmployeePatch) error {
	updates := patch.changes()
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("id = ?", id).Updates(updates).Error
}
