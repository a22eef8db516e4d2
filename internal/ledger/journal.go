package ledger

import (
	"github.com/shopspring/decimal"
)

// TxStatus tracks the dispute lifecycle of a recorded deposit
type TxStatus int32

const (
	TxStatusNormal TxStatus = iota
	TxStatusDisputed
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusNormal:
		return "normal"
	case TxStatusDisputed:
		return "disputed"
	default:
		return "unknown"
	}
}

// TxRecord is the history entry for an accepted deposit.
// Withdrawals are never recorded since they cannot be disputed.
type TxRecord struct {
	// Client that made the deposit. Dispute lifecycle events naming a
	// different client cannot be resolved against this record.
	Client ClientID

	// Amount is fixed at deposit time. Hold, release and chargeback always
	// use this value, never a replayed payload.
	Amount decimal.Decimal

	Status TxStatus
}

// IsDisputed reports whether the record is currently under dispute
func (r *TxRecord) IsDisputed() bool {
	return r.Status == TxStatusDisputed
}
