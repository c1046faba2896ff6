package enums

import "fmt"

// MovementReason classifies an inventory audit-log row.
type MovementReason string

const (
	MovementReasonOrderDebit       MovementReason = "order_debit"
	MovementReasonOrderCancel      MovementReason = "order_cancel_credit"
	MovementReasonTransferOut      MovementReason = "transfer_out"
	MovementReasonTransferIn       MovementReason = "transfer_in"
	MovementReasonManualAdjustment MovementReason = "manual_adjustment"
	MovementReasonReturnCredit     MovementReason = "return_credit"
)

var validMovementReasons = []MovementReason{
	MovementReasonOrderDebit,
	MovementReasonOrderCancel,
	MovementReasonTransferOut,
	MovementReasonTransferIn,
	MovementReasonManualAdjustment,
	MovementReasonReturnCredit,
}

func (r MovementReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known MovementReason.
func (r MovementReason) IsValid() bool {
	for _, candidate := range validMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMovementReason converts raw input into a MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	for _, candidate := range validMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement reason %q", value)
}
