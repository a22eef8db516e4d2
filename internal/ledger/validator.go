package ledger

import (
	"fmt"
)

// Violation describes an account whose state breaks a ledger invariant
type Violation struct {
	Client ClientID
	Rule   string
	Detail string
}

func (v Violation) Error() string {
	return fmt.Sprintf("client %d violates %s: %s", v.Client, v.Rule, v.Detail)
}

// InvariantValidator checks ledger invariants. It only reports; it never
// clamps or repairs balances.
type InvariantValidator struct {
	ledger *Ledger
}

func NewInvariantValidator(l *Ledger) *InvariantValidator {
	return &InvariantValidator{
		ledger: l,
	}
}

// ValidateHeldNonNegative checks held >= 0 for one client
func (v *InvariantValidator) ValidateHeldNonNegative(client ClientID) error {
	acct, ok := v.ledger.Get(client)
	if !ok {
		return nil
	}
	if acct.Held.IsNegative() {
		return Violation{Client: client, Rule: "held_non_negative", Detail: "held=" + acct.Held.String()}
	}
	return nil
}

// ValidateTotal checks that total == available + held as reported by the
// snapshot view
func (v *InvariantValidator) ValidateTotal(s AccountSnapshot) error {
	if !s.Total.Equal(s.Available.Add(s.Held)) {
		return Violation{Client: s.Client, Rule: "total_derivation",
			Detail: fmt.Sprintf("total=%s available=%s held=%s", s.Total, s.Available, s.Held)}
	}
	return nil
}

// Audit runs every per-account check and returns all violations in client order
func (v *InvariantValidator) Audit() []Violation {
	var out []Violation
	for _, s := range v.ledger.Snapshot() {
		for _, err := range []error{v.ValidateHeldNonNegative(s.Client), v.ValidateTotal(s)} {
			if viol, ok := err.(Violation); ok {
				out = append(out, viol)
			}
		}
	}
	return out
}
