package event

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is a single decoded input record, in the order it was received.
type Transaction struct {
	Type   EventType
	Client uint16
	Tx     uint32

	// Present for deposit and withdrawal only
	Amount decimal.NullDecimal
}

// Deposit builds a deposit record
func Deposit(client uint16, tx uint32, amount decimal.Decimal) Transaction {
	return Transaction{Type: EventTypeDeposit, Client: client, Tx: tx, Amount: decimal.NewNullDecimal(amount)}
}

// Withdrawal builds a withdrawal record
func Withdrawal(client uint16, tx uint32, amount decimal.Decimal) Transaction {
	return Transaction{Type: EventTypeWithdrawal, Client: client, Tx: tx, Amount: decimal.NewNullDecimal(amount)}
}

// Dispute builds a dispute record
func Dispute(client uint16, tx uint32) Transaction {
	return Transaction{Type: EventTypeDispute, Client: client, Tx: tx}
}

// Resolve builds a resolve record
func Resolve(client uint16, tx uint32) Transaction {
	return Transaction{Type: EventTypeResolve, Client: client, Tx: tx}
}

// Chargeback builds a chargeback record
func Chargeback(client uint16, tx uint32) Transaction {
	return Transaction{Type: EventTypeChargeback, Client: client, Tx: tx}
}

func (t Transaction) String() string {
	if t.Amount.Valid {
		return fmt.Sprintf("%s(client=%d, tx=%d, amount=%s)", t.Type, t.Client, t.Tx, t.Amount.Decimal)
	}
	return fmt.Sprintf("%s(client=%d, tx=%d)", t.Type, t.Client, t.Tx)
}
