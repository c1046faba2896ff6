package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerPrice overrides the standard exchange price of a cylinder type for
// one customer. Unique per (customer, cylinder type).
type CustomerPrice struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID     uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:ux_customer_prices_customer_cylinder"`
	CylinderTypeID uuid.UUID       `gorm:"column:cylinder_type_id;type:uuid;not null;uniqueIndex:ux_customer_prices_customer_cylinder"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
