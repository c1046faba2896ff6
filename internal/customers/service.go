package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/internal/loyalty"
	"github.com/distrigas/distrigas-backend/internal/settings"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
	"github.com/distrigas/distrigas-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterInput creates a customer. ReferredByID, when set, awards the
// referrer the configured bonus immediately.
type RegisterInput struct {
	Name         string
	Phone        string
	Email        *string
	Address      *string
	ReferredByID *uuid.UUID
}

// Service owns customer profiles and the referral bonus flow.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, patch CustomerPatch) error
	List(ctx context.Context, params pagination.Params) ([]models.Customer, error)
	PointsBalance(ctx context.Context, id uuid.UUID) (int, error)
	PointsHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.LoyaltyEntry, error)
}

type service struct {
	repo     Repository
	ledger   loyalty.Service
	settings settings.Service
	tx       txRunner
}

// ServiceParams bundles the customer service dependencies.
type ServiceParams struct {
	Repo     Repository
	Ledger   loyalty.Service
	Settings settings.Service
	Tx       txRunner
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		ledger:   params.Ledger,
		settings: params.Settings,
		tx:       params.Tx,
	}, nil
}

// Register persists the customer and, for referred signups, credits the
// referrer's balance in the same transaction. The bonus entry is applied
// immediately, not held pending.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}

	customer := &models.Customer{
		Name:         input.Name,
		Phone:        input.Phone,
		Email:        input.Email,
		Address:      input.Address,
		ReferredByID: input.ReferredByID,
		Active:       true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByPhone(ctx, input.Phone); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone")
		}

		if input.ReferredByID != nil {
			referrer, err := repo.Find(ctx, *input.ReferredByID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "referrer not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referrer")
			}
			if !referrer.Active {
				return pkgerrors.New(pkgerrors.CodeValidation, "referrer is inactive")
			}
		}

		if err := repo.Create(ctx, customer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist customer")
		}

		if input.ReferredByID != nil {
			params, err := s.settings.WithTx(tx).PointsParams(ctx)
			if err != nil {
				return err
			}
			bonus := int(params.ReferralBonus.IntPart())
			if bonus > 0 {
				if _, err := s.ledger.Append(ctx, tx, loyalty.AppendInput{
					CustomerID: *input.ReferredByID,
					Delta:      bonus,
					Reason:     enums.LoyaltyReasonReferralBonus,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	customer, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}
	customer, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch CustomerPatch) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Customer, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, limit, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return rows, nil
}

func (s *service) PointsBalance(ctx context.Context, id uuid.UUID) (int, error) {
	return s.ledger.Balance(ctx, id)
}

func (s *service) PointsHistory(ctx context.Context, id uuid.UUID, limit int) ([]models.LoyaltyEntry, error) {
	return s.ledger.History(ctx, id, limit)
}
