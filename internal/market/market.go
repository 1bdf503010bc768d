// Package market holds the marketplace business logic: account and
// product operations over an injected record store. The store handle is
// passed in explicitly so the package stays testable against any backend.
package market

import (
	"context"
	"encoding/json"
	"fmt"

	"giftcard-market/internal/domain"
	"giftcard-market/internal/store"
)

// Market executes marketplace operations against a record store.
type Market struct {
	store       store.Store
	houseName   string
	defaultRate string
	debug       bool
}

// Option configures a Market.
type Option func(*Market)

// WithDebug enables purchase receipt logging.
func WithDebug(debug bool) Option {
	return func(m *Market) { m.debug = debug }
}

// New creates a market over the given store. houseName is the
// distinguished commission-collecting account; defaultRate is the
// commission rate applied when add_account is given none.
func New(st store.Store, houseName, defaultRate string, opts ...Option) *Market {
	m := &Market{
		store:       st,
		houseName:   houseName,
		defaultRate: defaultRate,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AllKeys returns the store's keys in insertion order, scoped to typeName,
// or every fully-qualified key when typeName is empty.
func (m *Market) AllKeys(ctx context.Context, typeName string) ([]string, error) {
	return m.store.Keys(ctx, typeName)
}

// ClearAll removes every record of every type. There is deliberately no
// account- or product-scoped variant: a scoped clear on a shared store
// would invite silently erasing unrelated data, so the only clear offered
// is the explicit global one.
func (m *Market) ClearAll(ctx context.Context) error {
	return m.store.ClearAll(ctx)
}

// fetchRecord decodes the record stored under the composite key, or
// returns nil without error when the key is absent.
func fetchRecord[T any](ctx context.Context, m *Market, typeName string, keys []string) (*T, error) {
	raw, ok, err := m.store.Fetch(ctx, typeName, keys...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", typeName, err)
	}
	if !ok {
		return nil, nil
	}
	rec := new(T)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", typeName, err)
	}
	return rec, nil
}

// getRecord is fetchRecord with a NotFoundError on miss.
func getRecord[T any](ctx context.Context, m *Market, typeName string, keys []string) (*T, error) {
	rec, err := fetchRecord[T](ctx, m, typeName, keys)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &domain.NotFoundError{Type: typeName, Keys: keys}
	}
	return rec, nil
}

// persist writes the record into the store under its own keys.
func (m *Market) persist(ctx context.Context, rec domain.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rec.RecordType(), err)
	}
	if err := m.store.Put(ctx, rec.RecordType(), rec.RecordKeys(), raw); err != nil {
		return fmt.Errorf("store %s: %w", rec.RecordType(), err)
	}
	return nil
}

// remove deletes the record from the store under its own keys.
func (m *Market) remove(ctx context.Context, rec domain.Record) error {
	if err := m.store.Delete(ctx, rec.RecordType(), rec.RecordKeys()...); err != nil {
		return fmt.Errorf("delete %s: %w", rec.RecordType(), err)
	}
	return nil
}
