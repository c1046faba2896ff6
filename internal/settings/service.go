package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/pkg/config"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

// Setting keys recognized by the loyalty and order engines.
const (
	KeyPointsPerCurrencyUnit = "points_per_currency_unit"
	KeyPointsDiscountValue   = "points_discount_value"
	KeyPointsMinRedeem       = "points_min_redeem"
	KeyPointsForReferral     = "points_for_referral"
)

// PointsParams bundles the loyalty rates read at transaction time.
type PointsParams struct {
	PerCurrencyUnit decimal.Decimal
	DiscountValue   decimal.Decimal
	MinRedeem       decimal.Decimal
	ReferralBonus   decimal.Decimal
}

// Service reads and writes named numeric settings. The settings table wins;
// config-supplied defaults fill any missing row.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Get(ctx context.Context, key string) (decimal.Decimal, error)
	Set(ctx context.Context, key string, value decimal.Decimal) error
	List(ctx context.Context) ([]models.Setting, error)
	PointsParams(ctx context.Context) (PointsParams, error)
}

type service struct {
	repo     Repository
	defaults map[string]decimal.Decimal
}

// NewService wires a settings service with repository and config fallbacks.
func NewService(repo Repository, cfg config.PointsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}

	defaults, err := parseDefaults(cfg)
	if err != nil {
		return nil, err
	}
	return &service{repo: repo, defaults: defaults}, nil
}

func parseDefaults(cfg config.PointsConfig) (map[string]decimal.Decimal, error) {
	pairs := map[string]string{
		KeyPointsPerCurrencyUnit: cfg.PerCurrencyUnit,
		KeyPointsDiscountValue:   cfg.DiscountValue,
		KeyPointsMinRedeem:       cfg.MinRedeem,
		KeyPointsForReferral:     cfg.ReferralBonus,
	}

	defaults := make(map[string]decimal.Decimal, len(pairs))
	for key, raw := range pairs {
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid default for setting %q: %w", key, err)
		}
		defaults[key] = value
	}
	return defaults, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), defaults: s.defaults}
}

func (s *service) Get(ctx context.Context, key string) (decimal.Decimal, error) {
	if strings.TrimSpace(key) == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "setting key required")
	}

	setting, err := s.repo.Find(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if fallback, ok := s.defaults[key]; ok {
				return fallback, nil
			}
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}
	return setting.Value, nil
}

func (s *service) Set(ctx context.Context, key string, value decimal.Decimal) error {
	if strings.TrimSpace(key) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "setting key required")
	}
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "setting value must not be negative")
	}

	if err := s.repo.Upsert(ctx, &models.Setting{Key: key, Value: value}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store setting")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return settings, nil
}

func (s *service) PointsParams(ctx context.Context) (PointsParams, error) {
	var params PointsParams
	var err error

	if params.PerCurrencyUnit, err = s.Get(ctx, KeyPointsPerCurrencyUnit); err != nil {
		return PointsParams{}, err
	}
	if params.DiscountValue, err = s.Get(ctx, KeyPointsDiscountValue); err != nil {
		return PointsParams{}, err
	}
	if params.MinRedeem, err = s.Get(ctx, KeyPointsMinRedeem); err != nil {
		return PointsParams{}, err
	}
	if params.ReferralBonus, err = s.Get(ctx, KeyPointsForReferral); err != nil {
		return PointsParams{}, err
	}
	return params, nil
}
