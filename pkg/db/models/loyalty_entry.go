package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/distrigas/distrigas-backend/pkg/enums"
)

// LoyaltyEntry is one row of the append-only points ledger. Entries are never
// mutated or deleted. Pending marks an accrual logged at order creation whose
// delta has not been applied to the cached balance yet; the balance credit at
// payment confirmation lands as a separate non-pending entry, so the cached
// balance always equals the sum of non-pending deltas.
type LoyaltyEntry struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	Delta      int                 `gorm:"column:delta;not null"`
	Reason     enums.LoyaltyReason `gorm:"column:reason;type:loyalty_reason;not null"`
	OrderID    *uuid.UUID          `gorm:"column:order_id;type:uuid"`
	Pending    bool                `gorm:"column:pending;not null"`
	Notes      *string             `gorm:"column:notes"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
}
