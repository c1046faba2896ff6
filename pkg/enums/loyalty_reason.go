package enums

import "fmt"

// LoyaltyReason maps to the loyalty_reason enum in Postgres.
type LoyaltyReason string

const (
	LoyaltyReasonPurchaseEarn     LoyaltyReason = "purchase_earn"
	LoyaltyReasonReferralBonus    LoyaltyReason = "referral_bonus_earn"
	LoyaltyReasonRedemptionSpend  LoyaltyReason = "redemption_spend"
	LoyaltyReasonRefund           LoyaltyReason = "refund"
	LoyaltyReasonManualAdjustment LoyaltyReason = "manual_adjustment"
)

var validLoyaltyReasons = []LoyaltyReason{
	LoyaltyReasonPurchaseEarn,
	LoyaltyReasonReferralBonus,
	LoyaltyReasonRedemptionSpend,
	LoyaltyReasonRefund,
	LoyaltyReasonManualAdjustment,
}

func (r LoyaltyReason) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical loyalty reason enum.
func (r LoyaltyReason) IsValid() bool {
	for _, candidate := range validLoyaltyReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseLoyaltyReason converts raw input into a LoyaltyReason.
func ParseLoyaltyReason(value string) (LoyaltyReason, error) {
	for _, candidate := range validLoyaltyReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loyalty reason %q", value)
}
