package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// Repository manages persistence for the points ledger and the cached balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.LoyaltyEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LoyaltyEntry, error)
	FindByOrderAndReason(ctx context.Context, orderID uuid.UUID, reason enums.LoyaltyReason, pending bool) (*models.LoyaltyEntry, error)
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	ApplyBalanceDelta(ctx context.Context, customerID uuid.UUID, delta int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a loyalty repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LoyaltyEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LoyaltyEntry, error) {
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.LoyaltyEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindByOrderAndReason(ctx context.Context, orderID uuid.UUID, reason enums.LoyaltyReason, pending bool) (*models.LoyaltyEntry, error) {
	var entry models.LoyaltyEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND reason = ? AND pending = ?", orderID, reason, pending).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ApplyBalanceDelta updates the cached balance in one statement; the guard
// refuses any delta that would drive the balance negative.
func (r *repository) ApplyBalanceDelta(ctx context.Context, customerID uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE customers
		SET loyalty_points = loyalty_points + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND loyalty_points + ? >= 0
	`, delta, customerID, delta)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
