package market

import (
	"context"
	"fmt"
	"sort"

	"giftcard-market/internal/domain"
)

// GetAccount fetches an account by normalized name, returning a
// NotFoundError when absent.
func (m *Market) GetAccount(ctx context.Context, name string) (*domain.Account, error) {
	return getRecord[domain.Account](ctx, m, domain.TypeAccount, []string{domain.NormalizeName(name)})
}

// FetchAccount is GetAccount without the error on miss: absent accounts
// come back as nil.
func (m *Market) FetchAccount(ctx context.Context, name string) (*domain.Account, error) {
	return fetchRecord[domain.Account](ctx, m, domain.TypeAccount, []string{domain.NormalizeName(name)})
}

// AddAccount creates an account with a zero balance. A nil commissionRate
// means the configured default; a supplied rate is always validated, even
// when empty. Re-adding an existing normalized name is a silent no-op:
// the stored account is returned unchanged, never overwritten.
func (m *Market) AddAccount(ctx context.Context, name string, commissionRate *string) (*domain.Account, error) {
	normalized := domain.NormalizeName(name)
	if normalized == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}

	existing, err := m.FetchAccount(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rate := m.defaultRate
	if commissionRate != nil {
		rate = *commissionRate
	}
	account, err := domain.NewAccount(normalized, rate)
	if err != nil {
		return nil, err
	}
	if err := m.persist(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Credit parses amount as an exact monetary value, adds it to the named
// account's balance, and persists the update.
func (m *Market) Credit(ctx context.Context, name, amount string) (*domain.Account, error) {
	parsed, err := domain.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	account, err := m.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	account.Credit(parsed)
	if err := m.persist(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Debit is the mirror of Credit. There is no lower bound: balances may go
// negative.
func (m *Market) Debit(ctx context.Context, name, amount string) (*domain.Account, error) {
	parsed, err := domain.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	account, err := m.GetAccount(ctx, name)
	if err != nil {
		return nil, err
	}
	account.Debit(parsed)
	if err := m.persist(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// HouseAccount fetches the distinguished commission-collecting account.
// It fails only if EnsureHouseAccount never ran.
func (m *Market) HouseAccount(ctx context.Context) (*domain.Account, error) {
	return m.GetAccount(ctx, m.houseName)
}

// EnsureHouseAccount creates the house account at start-up if it does not
// exist yet, using the default commission rate. The house account is
// never deleted through normal flows.
func (m *Market) EnsureHouseAccount(ctx context.Context) error {
	_, err := m.AddAccount(ctx, m.houseName, nil)
	return err
}

// Summary returns one "<name> <balance>" line per account. Non-house
// accounts come first, sorted ascending by name; the house account is
// always the final line regardless of alphabetical order.
func (m *Market) Summary(ctx context.Context) ([]string, error) {
	keys, err := m.AllKeys(ctx, domain.TypeAccount)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, name := range keys {
		if name != m.houseName {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names)+1)
	for _, name := range names {
		account, err := m.GetAccount(ctx, name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s %s", account.Name, account.FormattedBalance()))
	}

	house, err := m.HouseAccount(ctx)
	if err != nil {
		return nil, err
	}
	return append(lines, fmt.Sprintf("%s %s", house.Name, house.FormattedBalance())), nil
}
