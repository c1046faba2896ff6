package deliveries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// DeliveryPatch is a typed partial update for one delivery row.
type DeliveryPatch struct {
	DeliveryPersonID *uuid.UUID
	AssignedAt       *time.Time
	DepartedAt       *time.Time
	CompletedAt      *time.Time
	CollectionMethod *enums.CollectionMethod
	AmountCollected  *decimal.Decimal
	IssueFlag        *bool
	IssueNotes       *string
}

func (p DeliveryPatch) changes() map[string]any {
	updates := map[string]any{}
	if p.DeliveryPersonID != nil {
		updates["delivery_person_id"] = *p.DeliveryPersonID
	}
	if p.AssignedAt != nil {
		updates["assigned_at"] = *p.AssignedAt
	}
	if p.DepartedAt != nil {
		updates["departed_at"] = *p.DepartedAt
	}
	if p.CompletedAt != nil {
		updates["completed_at"] = *p.CompletedAt
	}
	if p.CollectionMethod != nil {
		updates["collection_method"] = *p.CollectionMethod
	}
	if p.AmountCollected != nil {
		updates["amount_collected"] = *p.AmountCollected
	}
	if p.IssueFlag != nil {
		updates["issue_flag"] = *p.IssueFlag
	}
	if p.IssueNotes != nil {
		updates["issue_notes"] = *p.IssueNotes
	}
	return updates
}

// Repository manages persistence for delivery rows plus the employee reads
// assignment needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, delivery *models.Delivery) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error)
	Update(ctx context.Context, deliveryID uuid.UUID, patch DeliveryPatch) error
	ListByPerson(ctx context.Context, personID uuid.UUID, limit int) ([]models.Delivery, error)
	FindEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Employee, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a deliveries repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, delivery *models.Delivery) error {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(delivery).Error
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repository) Update(ctx context.Context, deliveryID uuid.UUID, patch DeliveryPatch) error {
	updates := patch.changes()
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ?", deliveryID).
		Updates(updates).Error
}

func (r *repository) ListByPerson(ctx context.Context, personID uuid.UUID, limit int) ([]models.Delivery, error) {
	query := r.db.WithContext(ctx).
		Where("delivery_person_id = ?", personID).
		Order("assigned_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Delivery
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "id = ?", employeeID).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}
