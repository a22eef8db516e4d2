package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrDuplicateTransaction is returned when a transaction ID is already recorded
var ErrDuplicateTransaction = errors.New("duplicate transaction id")

// Ledger holds one Account per client and one TxRecord per accepted deposit.
// It performs no validation beyond the duplicate-ID guard; business rules
// belong to the engine. Not thread-safe.
type Ledger struct {
	accounts     map[ClientID]*Account
	transactions map[TxID]*TxRecord // single ID space shared by all clients
}

func New() *Ledger {
	return &Ledger{
		accounts:     make(map[ClientID]*Account),
		transactions: make(map[TxID]*TxRecord),
	}
}

// GetOrCreate returns the account for client, creating a zero-balance,
// unlocked account if none exists.
func (l *Ledger) GetOrCreate(client ClientID) *Account {
	acct, ok := l.accounts[client]
	if !ok {
		acct = newAccount(client)
		l.accounts[client] = acct
	}
	return acct
}

// Get returns the account for client if it exists
func (l *Ledger) Get(client ClientID) (*Account, bool) {
	acct, ok := l.accounts[client]
	return acct, ok
}

// GetTransaction returns the recorded deposit for tx if it exists
func (l *Ledger) GetTransaction(tx TxID) (*TxRecord, bool) {
	rec, ok := l.transactions[tx]
	return rec, ok
}

// HasTransaction reports whether tx has been recorded for any client
func (l *Ledger) HasTransaction(tx TxID) bool {
	_, ok := l.transactions[tx]
	return ok
}

// InsertTransaction records a new deposit with status Normal
func (l *Ledger) InsertTransaction(tx TxID, client ClientID, amount decimal.Decimal) error {
	if _, exists := l.transactions[tx]; exists {
		return fmt.Errorf("tx %d: %w", tx, ErrDuplicateTransaction)
	}
	l.transactions[tx] = &TxRecord{
		Client: client,
		Amount: amount,
		Status: TxStatusNormal,
	}
	return nil
}

// Len returns the number of accounts
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// TransactionCount returns the number of recorded deposits
func (l *Ledger) TransactionCount() int {
	return len(l.transactions)
}

// LockedCount returns the number of locked accounts
func (l *Ledger) LockedCount() int {
	n := 0
	for _, acct := range l.accounts {
		if acct.Locked {
			n++
		}
	}
	return n
}

// AccountSnapshot is a read-only copy of one account at the end of a run
type AccountSnapshot struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Snapshot returns one entry per client, ordered by client ID
func (l *Ledger) Snapshot() []AccountSnapshot {
	out := make([]AccountSnapshot, 0, len(l.accounts))
	for _, acct := range l.accounts {
		out = append(out, AccountSnapshot{
			Client:    acct.Client,
			Available: acct.Available,
			Held:      acct.Held,
			Total:     acct.Total(),
			Locked:    acct.Locked,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Client < out[j].Client
	})

	return out
}
