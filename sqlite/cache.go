package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/warn"
)

// Compile-time interface verification.
var _ warn.CacheStore = (*CacheStore)(nil)

// CacheStore implements warn.CacheStore using SQLite. It suits hosts where
// one database file is easier to ship around than a cache directory.
type CacheStore struct {
	db *DB
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db}
}

// Read returns the payload stored under key.
func (s *CacheStore) Read(ctx context.Context, key warn.CacheKey) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM cache_entries WHERE key = ?
	`, string(key)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, warn.Errorf(warn.ENOTFOUND, "cache entry %s not found", key)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Write stores payload under key. An identical payload leaves the row
// untouched; a different one replaces it.
func (s *CacheStore) Write(ctx context.Context, key warn.CacheKey, payload []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if payload == nil {
		payload = []byte{}
	}

	hash := fmt.Sprintf("%016x", xxhash.Sum64(payload))
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, source, payload, hash, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			hash = excluded.hash,
			stored_at = excluded.stored_at
		WHERE cache_entries.hash != excluded.hash
	`, string(key), key.Source(), payload, hash, timestamp(time.Now()))
	return err
}
