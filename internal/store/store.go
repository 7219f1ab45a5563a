package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// SlotStore persists whole-value blobs under named slots. Save replaces the
// slot's entire content; there are no partial writes.
type SlotStore interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// EncodedStore is a SlotStore over a local sqlite database. Values pass
// through a reversible base64 transform before hitting disk; the transform is
// cosmetic obfuscation, not a security control. A slot that is absent or that
// fails to decode loads as empty rather than erroring, so corrupt local
// state can never block the caller.
type EncodedStore struct {
	db *sql.DB
}

// NewEncodedStore creates a store over the given database handle.
func NewEncodedStore(db *sql.DB) *EncodedStore {
	return &EncodedStore{db: db}
}

// Init creates the slot table if it does not exist yet.
func (s *EncodedStore) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS offline_slots (
			slot_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create slot table: %w", err)
	}
	return nil
}

// Save encodes value and replaces the slot atomically.
func (s *EncodedStore) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO offline_slots (slot_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, encode(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}
	return nil
}

// Load reads and decodes the slot. An absent slot or an undecodable payload
// returns (nil, nil).
func (s *EncodedStore) Load(ctx context.Context, key string) ([]byte, error) {
	var payload string
	query := `SELECT payload FROM offline_slots WHERE slot_key = ?`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", key, err)
	}

	decoded, err := decode(payload)
	if err != nil {
		// Corrupt payload degrades to "no stored data".
		return nil, nil
	}
	return decoded, nil
}

func encode(value []byte) string {
	return base64.StdEncoding.EncodeToString(value)
}

func decode(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(payload)
}
