package core

import (
	"errors"
	"fmt"

	"PaymentLedger/internal/ledger"

	"github.com/shopspring/decimal"
)

// Rejection kinds. Every EngineError wraps exactly one of these, so callers
// can branch with errors.Is.
var (
	ErrAccountLocked          = errors.New("account locked")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrTransactionNotDisputed = errors.New("transaction not disputed")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrDuplicateTransactionID = errors.New("duplicate transaction id")
	ErrAmountNotPositive      = errors.New("amount not positive")
	ErrMissingAmount          = errors.New("missing amount")
)

// EngineError is a non-fatal rejection of a single event.
// The run continues; the event leaves the ledger untouched.
type EngineError struct {
	Kind   error
	Client ledger.ClientID
	Tx     ledger.TxID
	Amount decimal.Decimal // set for InsufficientFunds
}

func (e *EngineError) Error() string {
	switch e.Kind {
	case ErrAccountLocked:
		return fmt.Sprintf("account %d is locked", e.Client)
	case ErrTransactionNotFound:
		return fmt.Sprintf("transaction %d not found or is not a disputable deposit", e.Tx)
	case ErrTransactionNotDisputed:
		return fmt.Sprintf("transaction %d is not currently under dispute", e.Tx)
	case ErrInsufficientFunds:
		return fmt.Sprintf("insufficient funds for client %d to withdraw %s", e.Client, e.Amount)
	case ErrDuplicateTransactionID:
		return fmt.Sprintf("duplicate transaction id %d", e.Tx)
	case ErrAmountNotPositive:
		return fmt.Sprintf("deposit or withdrawal for tx %d must have a positive amount", e.Tx)
	case ErrMissingAmount:
		return fmt.Sprintf("deposit or withdrawal for tx %d is missing an amount", e.Tx)
	default:
		return fmt.Sprintf("tx %d rejected: %v", e.Tx, e.Kind)
	}
}

func (e *EngineError) Unwrap() error {
	return e.Kind
}

// Reason returns a stable label for logs and metrics
func (e *EngineError) Reason() string {
	return Reason(e.Kind)
}

// Reason maps a rejection kind to its snake_case label
func Reason(kind error) string {
	switch {
	case errors.Is(kind, ErrAccountLocked):
		return "account_locked"
	case errors.Is(kind, ErrTransactionNotFound):
		return "transaction_not_found"
	case errors.Is(kind, ErrTransactionNotDisputed):
		return "transaction_not_disputed"
	case errors.Is(kind, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(kind, ErrDuplicateTransactionID):
		return "duplicate_transaction_id"
	case errors.Is(kind, ErrAmountNotPositive):
		return "amount_not_positive"
	case errors.Is(kind, ErrMissingAmount):
		return "missing_amount"
	default:
		return "unknown"
	}
}

func accountLocked(client ledger.ClientID, tx ledger.TxID) *EngineError {
	return &EngineError{Kind: ErrAccountLocked, Client: client, Tx: tx}
}

func txNotFound(client ledger.ClientID, tx ledger.TxID) *EngineError {
	return &EngineError{Kind: ErrTransactionNotFound, Client: client, Tx: tx}
}

func txNotDisputed(client ledger.ClientID, tx ledger.TxID) *EngineError {
	return &EngineError{Kind: ErrTransactionNotDisputed, Client: client, Tx: tx}
}
