package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/shopspring/decimal"
)

// ClientID identifies a client account (u16 on the wire)
type ClientID uint16

// TxID identifies a transaction across all clients (u32 on the wire)
type TxID uint32

// Account is the balance state of a single client.
// Exactly one instance exists per client; it is owned by the Ledger.
type Account struct {
	Client    ClientID
	Available decimal.Decimal // usable for withdrawal
	Held      decimal.Decimal // frozen pending dispute resolution
	Locked    bool            // set by chargeback, never cleared
}

func newAccount(client ClientID) *Account {
	return &Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total returns available + held
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Deposit credits available funds
func (a *Account) Deposit(amount decimal.Decimal) {
	a.Available = a.Available.Add(amount)
}

// HasAvailable reports available >= amount
func (a *Account) HasAvailable(amount decimal.Decimal) bool {
	return a.Available.GreaterThanOrEqual(amount)
}

// Withdraw debits available funds. Callers check HasAvailable first.
func (a *Account) Withdraw(amount decimal.Decimal) {
	a.Available = a.Available.Sub(amount)
}

// Hold moves amount from available to held. Available may go negative.
func (a *Account) Hold(amount decimal.Decimal) {
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
}

// Release moves amount from held back to available
func (a *Account) Release(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Available = a.Available.Add(amount)
}

// Chargeback removes held funds permanently and locks the account
func (a *Account) Chargeback(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Locked = true
}

// CanonicalBytes for deterministic hashing
func (a *Account) CanonicalBytes() []byte {
	buf := make([]byte, 0, 64)

	// client (2 bytes LE)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(a.Client))

	// available, held (length-prefixed canonical decimal strings)
	buf = appendString(buf, a.Available.String())
	buf = appendString(buf, a.Held.String())

	if a.Locked {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	return buf
}

// appendString writes s with a 4-byte LE length prefix
func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func (a *Account) String() string {
	return fmt.Sprintf("client:%d available=%s held=%s locked=%t", a.Client, a.Available, a.Held, a.Locked)
}
