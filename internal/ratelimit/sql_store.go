// internal/ratelimit/sql_store.go
//
// MySQL-backed store so several service instances share one window per key.
//
// Schema
//
//	CREATE TABLE rate_limit (
//	  k          VARCHAR(191) PRIMARY KEY,
//	  timestamps JSON         NOT NULL,
//	  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
//	                          ON UPDATE CURRENT_TIMESTAMP
//	)
//
// Save is a single upsert.  Load and Save are separate statements; see the
// failure policy in limiter.go.

package ratelimit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	qCreate = `CREATE TABLE IF NOT EXISTS rate_limit (
  k VARCHAR(191) PRIMARY KEY,
  timestamps JSON NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`
	qLoad   = `SELECT timestamps FROM rate_limit WHERE k = ?`
	qUpsert = `INSERT INTO rate_limit (k, timestamps) VALUES (?, ?) ON DUPLICATE KEY UPDATE timestamps = VALUES(timestamps)`
)

// SQLStore reads and writes the rate_limit table.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the rate_limit table when it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, qCreate); err != nil {
		return fmt.Errorf("rate_limit migrate: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]int64, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, qLoad, key)
	if errors.Is(err, sql.ErrNoRows) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rate_limit load: %w", err)
	}
	var ts []int64
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("rate_limit decode %q: %w", key, err)
	}
	if ts == nil {
		ts = []int64{}
	}
	return ts, nil
}

func (s *SQLStore) Save(ctx context.Context, key string, ts []int64) error {
	if ts == nil {
		ts = []int64{}
	}
	buf, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, qUpsert, key, buf); err != nil {
		return fmt.Errorf("rate_limit save: %w", err)
	}
	return nil
}
