package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/menuboard/internal/notes"
)

// KVStore implements notes.KV on the kv table. Values are stored as JSON.
type KVStore struct {
	db *sql.DB
}

var _ notes.KV = (*KVStore)(nil)

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get decodes the value at key into dest. A missing or expired key returns
// an error wrapping notes.ErrNotFound.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	var value string
	var expiresAt sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT value, expires_at FROM kv WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("kv get %q: %w", key, notes.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}
	if expired(expiresAt) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return fmt.Errorf("kv get %q: %w", key, notes.ErrNotFound)
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set stores value at key. A positive ttl makes the entry expire.
func (s *KVStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: time.Now().Add(ttl).UnixNano(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at,
		 updated_at = CURRENT_TIMESTAMP`,
		key, string(data), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// ListKeys returns the unexpired keys starting with prefix, sorted.
func (s *KVStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key LIKE ? ESCAPE '\' AND (expires_at IS NULL OR expires_at >= ?) ORDER BY key`,
		escapeLike(prefix)+"%", time.Now().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SweepExpired deletes every entry whose ttl has passed.
func (s *KVStore) SweepExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at < ?`, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("kv sweep expired: %w", err)
	}
	return result.RowsAffected()
}

func expired(expiresAt sql.NullInt64) bool {
	return expiresAt.Valid && expiresAt.Int64 < time.Now().UnixNano()
}
