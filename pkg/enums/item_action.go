package enums

import "fmt"

// ItemAction describes the physical transaction behind an order item.
// Exchange swaps an empty cylinder for a full one and is stock-neutral;
// every other action removes units from the warehouse.
type ItemAction string

const (
	ItemActionExchange     ItemAction = "exchange"
	ItemActionNewPurchase  ItemAction = "new_purchase"
	ItemActionLoanPurchase ItemAction = "loan_purchase"
	ItemActionSale         ItemAction = "sale"
)

var validItemActions = []ItemAction{
	ItemActionExchange,
	ItemActionNewPurchase,
	ItemActionLoanPurchase,
	ItemActionSale,
}

func (a ItemAction) String() string {
	return string(a)
}

// DebitsStock reports whether the action consumes warehouse stock.
func (a ItemAction) DebitsStock() bool {
	return a != ItemActionExchange
}

// IsValid reports whether the value is a known ItemAction.
func (a ItemAction) IsValid() bool {
	for _, candidate := range validItemActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseItemAction converts raw input into an ItemAction.
func ParseItemAction(value string) (ItemAction, error) {
	for _, candidate := range validItemActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item action %q", value)
}
