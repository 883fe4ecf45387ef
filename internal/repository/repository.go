package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DefaultStateKey is the key the whole roster and ledger blob is stored under.
const DefaultStateKey = "hazira_khata_data"

// ErrStateNotFound is returned when no state blob has been saved under the key yet.
var ErrStateNotFound = errors.New("state blob not found")

// StateStore defines the opaque blob storage used to persist the application state.
// The payload is written in full on every save.
type StateStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Ping(ctx context.Context) error
}

// Repository stores the state blob in a PostgreSQL table, one row per key.
type Repository struct {
	db  Database
	key string
}

// NewRepository creates a new instance of Repository with the provided Database.
// An empty key falls back to DefaultStateKey.
func NewRepository(db Database, key string) *Repository {
	if key == "" {
		key = DefaultStateKey
	}
	return &Repository{db: db, key: key}
}

// EnsureSchema creates the state table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, CreateStateTableSQL); err != nil {
		return fmt.Errorf("failed to create app_state table: %w", err)
	}
	return nil
}

// Load returns the stored payload for the repository key.
// It returns ErrStateNotFound when nothing has been saved yet.
func (r *Repository) Load(ctx context.Context) ([]byte, error) {
	var payload []byte

	err := r.db.QueryRow(ctx, SelectStateSQL, r.key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to load state %q: %w", r.key, err)
	}

	return payload, nil
}

// Save upserts the payload under the repository key. The payload must be valid JSON,
// since it is stored in a JSONB column.
func (r *Repository) Save(ctx context.Context, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("failed to save state %q: payload is not valid JSON", r.key)
	}

	cmdTag, err := r.db.Exec(ctx, UpsertStateSQL, r.key, payload)
	if err != nil {
		return fmt.Errorf("failed to save state %q: %w", r.key, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("failed to save state %q: no rows affected", r.key)
	}

	return nil
}

// Ping checks the underlying database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping state database: %w", err)
	}
	return nil
}
