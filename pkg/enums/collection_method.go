package enums

import "fmt"

// CollectionMethod records how a delivery payment was received.
type CollectionMethod string

const (
	CollectionMethodCash     CollectionMethod = "cash"
	CollectionMethodTransfer CollectionMethod = "transfer"
	CollectionMethodDeferred CollectionMethod = "deferred"
)

var validCollectionMethods = []CollectionMethod{
	CollectionMethodCash,
	CollectionMethodTransfer,
	CollectionMethodDeferred,
}

func (m CollectionMethod) String() string {
	return string(m)
}

// SettlesImmediately reports whether the method implies full settlement at
// the door. Deferred collection schedules a late payment instead.
func (m CollectionMethod) SettlesImmediately() bool {
	return m == CollectionMethodCash || m == CollectionMethodTransfer
}

// IsValid reports whether the value is a known CollectionMethod.
func (m CollectionMethod) IsValid() bool {
	for _, candidate := range validCollectionMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseCollectionMethod converts raw input into a CollectionMethod.
func ParseCollectionMethod(value string) (CollectionMethod, error) {
	for _, candidate := range validCollectionMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid collection method %q", value)
}
