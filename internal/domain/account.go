package domain

import (
	"github.com/shopspring/decimal"
)

// TypeAccount is the record-store type name for accounts.
const TypeAccount = "Account"

// Account is a marketplace participant. The house account collects a
// commission on every sale; every other account can act as buyer or
// seller. Balance may go negative, there is no overdraft check.
type Account struct {
	Name           string          `json:"name"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Balance        decimal.Decimal `json:"balance"`
}

// NewAccount validates and builds an account with a zero balance. The
// name is normalized (trimmed, internal space runs collapsed) and must be
// non-empty; the commission rate must be a zero-padded decimal in [0,1]
// with at most two fractional digits.
func NewAccount(name, commissionRate string) (*Account, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	rate, err := ParseRate("commission_rate", commissionRate)
	if err != nil {
		return nil, err
	}
	return &Account{
		Name:           normalized,
		CommissionRate: rate,
		Balance:        decimal.Zero,
	}, nil
}

// RecordType implements Record.
func (a *Account) RecordType() string { return TypeAccount }

// RecordKeys implements Record. An account is keyed by name alone.
func (a *Account) RecordKeys() []string { return []string{a.Name} }

// Credit adds amount to the balance. No upper bound.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// Debit subtracts amount from the balance. Overdraft is permitted.
func (a *Account) Debit(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
}

// FormattedBalance renders the balance as a dollar string, e.g. "$85.00"
// or "-$15.38".
func (a *Account) FormattedBalance() string {
	return FormatDollar(a.Balance)
}

// Equal compares all mutable fields. Two accounts are equal only when
// name, commission rate, and balance all match.
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Name == other.Name &&
		a.CommissionRate.Equal(other.CommissionRate) &&
		a.Balance.Equal(other.Balance)
}
