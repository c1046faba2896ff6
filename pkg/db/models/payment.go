package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// Payment records one settlement attempt against an order. Verification is a
// one-time terminal transition: VerifiedByID must be nil before and non-nil
// after, and a second verification fails.
type Payment struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID                `gorm:"column:order_id;type:uuid;not null"`
	Amount       decimal.Decimal          `gorm:"column:amount;type:numeric(10,2);not null"`
	Method       enums.CollectionMethod   `gorm:"column:method;type:collection_method;not null"`
	ProofRef     *string                  `gorm:"column:proof_ref"`
	Status       enums.VerificationStatus `gorm:"column:status;type:verification_status;not null;default:'unverified'"`
	VerifiedByID *uuid.UUID               `gorm:"column:verified_by_id;type:uuid"`
	VerifiedAt   *time.Time               `gorm:"column:verified_at"`
	RejectReason *string                  `gorm:"column:reject_reason"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
