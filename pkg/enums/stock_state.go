package enums

import "fmt"

// StockState is the physical condition bucket a stocked unit is counted
// under. Cylinders move between full/empty/damaged/loaned; accessory
// products only ever use the available bucket.
type StockState string

const (
	StockStateFull      StockState = "full"
	StockStateEmpty     StockState = "empty"
	StockStateDamaged   StockState = "damaged"
	StockStateLoaned    StockState = "loaned"
	StockStateAvailable StockState = "available"
)

var validStockStates = []StockState{
	StockStateFull,
	StockStateEmpty,
	StockStateDamaged,
	StockStateLoaned,
	StockStateAvailable,
}

func (s StockState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockState.
func (s StockState) IsValid() bool {
	for _, candidate := range validStockStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockState converts raw input into a StockState.
func ParseStockState(value string) (StockState, error) {
	for _, candidate := range validStockStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock state %q", value)
}
