// Package store provides generic keyed storage for marketplace records.
// Implementations include in-memory (the default), SQL (SQLite or MySQL
// over database/sql), and Redis. Values are opaque serialized bytes; the
// entity layer owns encoding and decoding.
package store

import (
	"context"
	"strings"
)

// Separator joins the type name and key parts into a fully-qualified key.
// Key parts must not contain this character: no escaping is performed.
const Separator = ":"

// Store maps fully-qualified composite keys to serialized record values.
// Lookups are exact match only; there are no prefix or range queries.
// Store implementations must preserve insertion order when enumerating
// keys, and a replace must keep the key's original position.
type Store interface {
	// Fetch returns the value stored for the composite key scoped to
	// typeName. The bool is false when the key is absent.
	Fetch(ctx context.Context, typeName string, keyParts ...string) ([]byte, bool, error)

	// Put inserts or replaces the value for the composite key.
	Put(ctx context.Context, typeName string, keyParts []string, value []byte) error

	// Delete removes the value for the composite key. Deleting an absent
	// key is not an error at this layer; callers that care about absence
	// must check first.
	Delete(ctx context.Context, typeName string, keyParts ...string) error

	// Keys returns keys in insertion order. With a non-empty typeName the
	// result is scoped to that type and the type qualifier is stripped
	// from each key; with an empty typeName every fully-qualified key in
	// the store is returned.
	Keys(ctx context.Context, typeName string) ([]string, error)

	// ClearAll removes every record of every type.
	ClearAll(ctx context.Context) error

	Close() error
}

// QualifiedKey builds the full store key from a type name and key parts.
func QualifiedKey(typeName string, keyParts []string) string {
	return typeName + Separator + strings.Join(keyParts, Separator)
}

// scopeKeys filters qualified keys down to one type, stripping the
// qualifier prefix. An empty typeName returns keys unchanged.
func scopeKeys(keys []string, typeName string) []string {
	if typeName == "" {
		return keys
	}
	prefix := typeName + Separator
	scoped := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			scoped = append(scoped, strings.TrimPrefix(k, prefix))
		}
	}
	return scoped
}
