package event

import (
	"fmt"
	"strings"
)

// EventType discriminator for transaction records
type EventType int32

const (
	EventTypeUnknown EventType = iota
	EventTypeDeposit
	EventTypeWithdrawal
	EventTypeDispute
	EventTypeResolve
	EventTypeChargeback
)

func (et EventType) String() string {
	switch et {
	case EventTypeDeposit:
		return "deposit"
	case EventTypeWithdrawal:
		return "withdrawal"
	case EventTypeDispute:
		return "dispute"
	case EventTypeResolve:
		return "resolve"
	case EventTypeChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseEventType maps the wire name of a record type. Matching ignores case.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return EventTypeDeposit, nil
	case "withdrawal":
		return EventTypeWithdrawal, nil
	case "dispute":
		return EventTypeDispute, nil
	case "resolve":
		return EventTypeResolve, nil
	case "chargeback":
		return EventTypeChargeback, nil
	default:
		return EventTypeUnknown, fmt.Errorf("unknown transaction type: %q", s)
	}
}

// RequiresAmount reports whether records of this type carry an amount.
// Dispute lifecycle records recover the amount from the stored deposit.
func (et EventType) RequiresAmount() bool {
	return et == EventTypeDeposit || et == EventTypeWithdrawal
}
