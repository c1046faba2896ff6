package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/distrigas/distrigas-backend/internal/loyalty"
	"github.com/distrigas/distrigas-backend/internal/settings"
	"github.com/distrigas/distrigas-backend/pkg/config"
	"github.com/distrigas/distrigas-backend/pkg/db/models"
	"github.com/distrigas/distrigas-backend/pkg/enums"
	pkgerrors "github.com/distrigas/distrigas-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newCustomerFixture(t *testing.T) (*gorm.DB, Service) {
	t.Helper()

	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{}, &models.LoyaltyEntry{}, &models.Setting{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	loyaltySvc, err := loyalty.NewService(loyalty.NewRepository(db))
	if err != nil {
		t.Fatalf("loyalty service: %v", err)
	}
	settingsSvc, err := settings.NewService(settings.NewRepository(db), config.PointsConfig{
		PerCurrencyUnit: "1",
		DiscountValue:   "0.10",
		MinRedeem:       "0",
		ReferralBonus:   "25",
	})
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Ledger:   loyaltySvc,
		Settings: settingsSvc,
		Tx:       &gormTxRunner{db: db},
	})
	if err != nil {
		t.Fatalf("customers service: %v", err)
	}
	return db, svc
}

func TestRegisterAwardsReferralBonusImmediately(t *testing.T) {
	db, svc := newCustomerFixture(t)

	referrer, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Ana",
		Phone: "555-0101",
	})
	if err != nil {
		t.Fatalf("register referrer: %v", err)
	}

	referred, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Beto",
		Phone:        "555-0202",
		ReferredByID: &referrer.ID,
	})
	if err != nil {
		t.Fatalf("register referred: %v", err)
	}
	if referred.ReferredByID == nil || *referred.ReferredByID != referrer.ID {
		t.Fatalf("referred_by = %v, want %s", referred.ReferredByID, referrer.ID)
	}

	var stored models.Customer
	if err := db.First(&stored, "id = ?", referrer.ID).Error; err != nil {
		t.Fatalf("load referrer: %v", err)
	}
	if stored.LoyaltyPoints != 25 {
		t.Fatalf("referrer points = %d, want 25", stored.LoyaltyPoints)
	}

	var entry models.LoyaltyEntry
	if err := db.First(&entry, "customer_id = ?", referrer.ID).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.Reason != enums.LoyaltyReasonReferralBonus || entry.Delta != 25 || entry.Pending {
		t.Fatalf("entry = %+v, want applied referral_bonus_earn +25", entry)
	}
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	_, svc := newCustomerFixture(t)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Ana",
		Phone: "555-0101",
	}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Otra Ana",
		Phone: "555-0101",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestRegisterRejectsUnknownReferrer(t *testing.T) {
	db, svc := newCustomerFixture(t)

	ghost := uuid.New()
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Beto",
		Phone:        "555-0202",
		ReferredByID: &ghost,
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION", err)
	}

	// the whole registration rolls back
	var count int64
	if err := db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if count != 0 {
		t.Fatalf("customers = %d, want 0", count)
	}
}

func TestUpdatePatchesProfile(t *testing.T) {
	_, svc := newCustomerFixture(t)

	customer, err := svc.Register(context.Background(), RegisterInput{
		Name:  "Ana",
		Phone: "555-0101",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	address := "Calle 5 #12"
	inactive := false
	if err := svc.Update(context.Background(), customer.ID, CustomerPatch{
		Address: &address,
		Active:  &inactive,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.Get(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Address == nil || *got.Address != address {
		t.Fatalf("address = %v, want %s", got.Address, address)
	}
	if got.Active {
		t.Fatal("active flag not patched")
	}
	if got.Name != "Ana" {
		t.Fatalf("name changed to %s", got.Name)
	}
}
