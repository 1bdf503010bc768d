package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLStore keeps records in a single table over database/sql. It works
// against SQLite (modernc.org/sqlite, driver "sqlite") for an embedded
// durable backend, or MySQL (go-sql-driver, driver "mysql") for a shared
// one. A monotonically assigned sequence column preserves insertion
// order; replacing a value keeps the original sequence.
type SQLStore struct {
	db *sql.DB
}

const createRecordsTable = `
	CREATE TABLE IF NOT EXISTS records (
		qualified_key VARCHAR(512) NOT NULL PRIMARY KEY,
		value         BLOB NOT NULL,
		seq           BIGINT NOT NULL
	)`

// NewSQLStore creates the records table if needed and returns the store.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createRecordsTable); err != nil {
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Fetch looks up one record by its exact composite key.
func (s *SQLStore) Fetch(ctx context.Context, typeName string, keyParts ...string) ([]byte, bool, error) {
	query := `SELECT value FROM records WHERE qualified_key = ?`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, QualifiedKey(typeName, keyParts)).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to fetch record: %w", err)
	}
	return value, true, nil
}

// Put inserts or replaces the record. An update keeps the row's original
// sequence number so key enumeration stays in first-insertion order.
func (s *SQLStore) Put(ctx context.Context, typeName string, keyParts []string, value []byte) error {
	key := QualifiedKey(typeName, keyParts)

	res, err := s.db.ExecContext(ctx, `UPDATE records SET value = ? WHERE qualified_key = ?`, value, key)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n > 0 {
		return nil
	}

	insert := `
		INSERT INTO records (qualified_key, value, seq)
		SELECT ?, ?, COALESCE(MAX(seq), 0) + 1 FROM records`
	if _, err := s.db.ExecContext(ctx, insert, key, value); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Delete removes the record. Absent keys are a no-op.
func (s *SQLStore) Delete(ctx context.Context, typeName string, keyParts ...string) error {
	query := `DELETE FROM records WHERE qualified_key = ?`
	if _, err := s.db.ExecContext(ctx, query, QualifiedKey(typeName, keyParts)); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Keys enumerates keys in insertion order, optionally scoped to one type.
func (s *SQLStore) Keys(ctx context.Context, typeName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT qualified_key FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return scopeKeys(keys, typeName), nil
}

// ClearAll removes every record of every type.
func (s *SQLStore) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error { return s.db.Close() }
