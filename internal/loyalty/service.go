package loyalty

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

// AppendInput captures one ledger append. Pending entries record an accrual
// without touching the cached balance; everything else applies its delta to
// customers.loyalty_points in the same transaction.
type AppendInput struct {
	CustomerID uuid.UUID
	Delta      int
	Reason     enums.LoyaltyReason
	OrderID    *uuid.UUID
	Pending    bool
	Notes      *string
}

// Service is the only writer of loyalty_entries. The ledger is append-only;
// corrections land as new manual_adjustment rows.
type Service interface {
	Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.LoyaltyEntry, error)
	Balance(ctx context.Context, customerID uuid.UUID) (int, error)
	History(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LoyaltyEntry, error)
	HasAppliedEntry(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason enums.LoyaltyReason) (bool, error)
}

type service struct {
	repo Repository
}

// NewService wires a loyalty service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.LoyaltyEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for ledger append")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger delta must not be zero")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger reason")
	}
	if input.Pending && input.Delta < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pending entries must be credits")
	}

	repo := s.repo.WithTx(tx)

	if !input.Pending {
		affected, err := repo.ApplyBalanceDelta(ctx, input.CustomerID, input.Delta)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply balance delta")
		}
		if affected == 0 {
			balance := 0
			if customer, err := repo.FindCustomer(ctx, input.CustomerID); err == nil {
				balance = customer.LoyaltyPoints
			} else if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientPoints, "insufficient loyalty points").
				WithDetails(map[string]any{
					"customer_id": input.CustomerID,
					"requested":   -input.Delta,
					"available":   balance,
				})
		}
	}

	entry := &models.LoyaltyEntry{
		CustomerID: input.CustomerID,
		Delta:      input.Delta,
		Reason:     input.Reason,
		OrderID:    input.OrderID,
		Pending:    input.Pending,
		Notes:      input.Notes,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, customerID uuid.UUID) (int, error) {
	if customerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	customer, err := s.repo.FindCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer.LoyaltyPoints, nil
}

func (s *service) History(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LoyaltyEntry, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	entries, err := s.repo.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}

// HasAppliedEntry reports whether a non-pending entry already exists for the
// order and reason. The payment flow uses it to keep the paid-time credit a
// once-only event.
func (s *service) HasAppliedEntry(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, reason enums.LoyaltyReason) (bool, error) {
	if orderID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	_, err := repo.FindByOrderAndReason(ctx, orderID, reason, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query ledger entries")
	}
	return true, nil
}
