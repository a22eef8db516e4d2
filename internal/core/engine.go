package core

import (
	"PaymentLedger/internal/event"
	"PaymentLedger/internal/ledger"
	fpmath "PaymentLedger/internal/math"
	"PaymentLedger/internal/observability"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Engine is the single-threaded transaction processor. It exclusively owns
// the Ledger and applies events strictly one at a time in input order.
// Not safe for concurrent use.
type Engine struct {
	sequence  int64
	hasher    *StateHasher
	ledger    *ledger.Ledger
	validator *ledger.InvariantValidator
	metrics   *observability.Metrics
}

// NewEngine creates an engine over an empty ledger. metrics may be nil.
func NewEngine(metrics *observability.Metrics) *Engine {
	l := ledger.New()
	return &Engine{
		hasher:    NewStateHasher(),
		ledger:    l,
		validator: ledger.NewInvariantValidator(l),
		metrics:   metrics,
	}
}

// Apply processes a single event. A non-nil *EngineError means the event was
// rejected by a business rule and the ledger is unchanged; the caller logs it
// and moves on to the next event.
func (e *Engine) Apply(txn event.Transaction) error {
	start := time.Now()
	eventType := txn.Type.String()

	acct, err := e.dispatch(txn)
	if err != nil {
		if e.metrics != nil {
			var engineErr *EngineError
			reason := "invalid"
			if errors.As(err, &engineErr) {
				reason = engineErr.Reason()
			}
			e.metrics.EventsRejected.WithLabelValues(eventType, reason).Inc()
		}
		return err
	}

	e.sequence++
	var digest []byte
	if acct != nil {
		digest = acct.CanonicalBytes()
	}
	e.hasher.Advance(e.sequence, canonicalEvent(txn), digest)

	if acct != nil {
		e.postCheckInvariants(acct.Client)
	}

	if e.metrics != nil {
		e.metrics.EventsApplied.WithLabelValues(eventType).Inc()
		e.metrics.EventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
		e.metrics.Sequence.Set(float64(e.sequence))
	}

	return nil
}

// dispatch routes to the handler for the event type. The returned account is
// the one mutated, or nil when the event was accepted as a no-op.
func (e *Engine) dispatch(txn event.Transaction) (*ledger.Account, error) {
	client := ledger.ClientID(txn.Client)
	tx := ledger.TxID(txn.Tx)

	switch txn.Type {
	case event.EventTypeDeposit:
		return e.handleDeposit(client, tx, txn.Amount)
	case event.EventTypeWithdrawal:
		return e.handleWithdrawal(client, tx, txn.Amount)
	case event.EventTypeDispute:
		return e.handleDispute(client, tx)
	case event.EventTypeResolve:
		return e.handleResolve(client, tx)
	case event.EventTypeChargeback:
		return e.handleChargeback(client, tx)
	default:
		return nil, fmt.Errorf("tx %d: unsupported event type %s", tx, txn.Type)
	}
}

// requireAmount validates the payload of deposits and withdrawals:
// missing amount first, then non-positive amount.
func requireAmount(tx ledger.TxID, amount decimal.NullDecimal) (decimal.Decimal, error) {
	if !amount.Valid {
		return decimal.Decimal{}, &EngineError{Kind: ErrMissingAmount, Tx: tx}
	}
	if !fpmath.IsPositive(amount.Decimal) {
		return decimal.Decimal{}, &EngineError{Kind: ErrAmountNotPositive, Tx: tx}
	}
	return amount.Decimal, nil
}

func (e *Engine) handleDeposit(client ledger.ClientID, tx ledger.TxID, raw decimal.NullDecimal) (*ledger.Account, error) {
	amount, err := requireAmount(tx, raw)
	if err != nil {
		return nil, err
	}

	// IDs are unique across the whole history, not per client
	if e.ledger.HasTransaction(tx) {
		return nil, &EngineError{Kind: ErrDuplicateTransactionID, Client: client, Tx: tx}
	}

	acct := e.ledger.GetOrCreate(client)
	if acct.Locked {
		return nil, accountLocked(client, tx)
	}

	if err := e.ledger.InsertTransaction(tx, client, amount); err != nil {
		return nil, &EngineError{Kind: ErrDuplicateTransactionID, Client: client, Tx: tx}
	}
	acct.Deposit(amount)

	return acct, nil
}

func (e *Engine) handleWithdrawal(client ledger.ClientID, tx ledger.TxID, raw decimal.NullDecimal) (*ledger.Account, error) {
	amount, err := requireAmount(tx, raw)
	if err != nil {
		return nil, err
	}

	acct, ok := e.ledger.Get(client)
	if !ok {
		// Nothing was ever deposited, so there is nothing to withdraw.
		// Accepted as a no-op and no account is created.
		return nil, nil
	}
	if acct.Locked {
		return nil, accountLocked(client, tx)
	}
	if !acct.HasAvailable(amount) {
		return nil, &EngineError{Kind: ErrInsufficientFunds, Client: client, Tx: tx, Amount: amount}
	}

	acct.Withdraw(amount)
	return acct, nil
}

// disputedAccount resolves the account a dispute lifecycle event applies to.
// A missing account or one that does not own the deposit is reported as
// TransactionNotFound.
func (e *Engine) disputedAccount(client ledger.ClientID, tx ledger.TxID, rec *ledger.TxRecord) (*ledger.Account, error) {
	acct, ok := e.ledger.Get(client)
	if !ok || rec.Client != client {
		return nil, txNotFound(client, tx)
	}
	return acct, nil
}

func (e *Engine) handleDispute(client ledger.ClientID, tx ledger.TxID) (*ledger.Account, error) {
	rec, ok := e.ledger.GetTransaction(tx)
	if !ok {
		return nil, txNotFound(client, tx)
	}

	// Repeated disputes must not hold the funds twice
	if rec.IsDisputed() {
		return nil, nil
	}

	acct, err := e.disputedAccount(client, tx, rec)
	if err != nil {
		return nil, err
	}
	if acct.Locked {
		return nil, accountLocked(client, tx)
	}

	acct.Hold(rec.Amount)
	rec.Status = ledger.TxStatusDisputed
	return acct, nil
}

func (e *Engine) handleResolve(client ledger.ClientID, tx ledger.TxID) (*ledger.Account, error) {
	rec, ok := e.ledger.GetTransaction(tx)
	if !ok {
		return nil, txNotFound(client, tx)
	}
	if !rec.IsDisputed() {
		return nil, txNotDisputed(client, tx)
	}

	acct, err := e.disputedAccount(client, tx, rec)
	if err != nil {
		return nil, err
	}
	if acct.Locked {
		return nil, accountLocked(client, tx)
	}

	acct.Release(rec.Amount)
	rec.Status = ledger.TxStatusNormal
	return acct, nil
}

func (e *Engine) handleChargeback(client ledger.ClientID, tx ledger.TxID) (*ledger.Account, error) {
	rec, ok := e.ledger.GetTransaction(tx)
	if !ok {
		return nil, txNotFound(client, tx)
	}
	if !rec.IsDisputed() {
		return nil, txNotDisputed(client, tx)
	}

	acct, err := e.disputedAccount(client, tx, rec)
	if err != nil {
		return nil, err
	}

	// Lock state is not checked. The record stays Disputed after chargeback.
	acct.Chargeback(rec.Amount)
	return acct, nil
}

// postCheckInvariants records invariant failures for the touched account.
// Failures are counted, not fatal: the ledger never clamps balances.
func (e *Engine) postCheckInvariants(client ledger.ClientID) {
	if err := e.validator.ValidateHeldNonNegative(client); err != nil && e.metrics != nil {
		e.metrics.InvariantWarnings.WithLabelValues("held_non_negative").Inc()
	}
}

// canonicalEvent encodes an accepted event for the hash chain
func canonicalEvent(txn event.Transaction) []byte {
	buf := make([]byte, 0, 32)
	buf = append(buf, byte(txn.Type))
	buf = binary.LittleEndian.AppendUint16(buf, txn.Client)
	buf = binary.LittleEndian.AppendUint32(buf, txn.Tx)
	if txn.Amount.Valid {
		buf = append(buf, txn.Amount.Decimal.String()...)
	}
	return buf
}

// === Read access ===

// Snapshot returns every account, one entry per client, ordered by client ID.
func (e *Engine) Snapshot() []ledger.AccountSnapshot {
	snap := e.ledger.Snapshot()
	if e.metrics != nil {
		e.metrics.SetLedgerGauges(e.ledger.Len(), e.ledger.LockedCount(), e.ledger.TransactionCount())
	}
	return snap
}

// Account returns a copy of one client's state
func (e *Engine) Account(client uint16) (ledger.AccountSnapshot, bool) {
	acct, ok := e.ledger.Get(ledger.ClientID(client))
	if !ok {
		return ledger.AccountSnapshot{}, false
	}
	return ledger.AccountSnapshot{
		Client:    acct.Client,
		Available: acct.Available,
		Held:      acct.Held,
		Total:     acct.Total(),
		Locked:    acct.Locked,
	}, true
}

// Transaction returns a copy of a recorded deposit
func (e *Engine) Transaction(tx uint32) (ledger.TxRecord, bool) {
	rec, ok := e.ledger.GetTransaction(ledger.TxID(tx))
	if !ok {
		return ledger.TxRecord{}, false
	}
	return *rec, true
}

// Audit reports every account that currently violates a ledger invariant
func (e *Engine) Audit() []ledger.Violation {
	return e.validator.Audit()
}

// GetSequence returns the number of events accepted so far
func (e *Engine) GetSequence() int64 {
	return e.sequence
}

// GetStateHash returns the hash chain tip after the last accepted event
func (e *Engine) GetStateHash() [32]byte {
	return e.hasher.Tip()
}

// GetStateHashHex returns GetStateHash hex-encoded
func (e *Engine) GetStateHashHex() string {
	return e.hasher.TipHex()
}
