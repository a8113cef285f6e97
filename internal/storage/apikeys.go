package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shiftforge/roster/internal/auth"
)

// APIKeyRecord is a machine credential scoped to one org and role. rosterd's
// ApiKey authorization scheme looks these up by ID on every request; there
// is no session state beyond the Argon2id hash.
type APIKeyRecord struct {
	ID        uuid.UUID
	OrgID     string
	Role      auth.Role
	KeyHash   string
	CreatedAt time.Time
}

// PutAPIKey inserts a new API key record. Keys are immutable once created;
// rotate by creating a new one and deleting the old.
func (db *DB) PutAPIKey(ctx context.Context, rec APIKeyRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO api_keys (id, org_id, role, key_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.OrgID, string(rec.Role), rec.KeyHash, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: put api key %s: %w", rec.ID, err)
	}
	return nil
}

// GetAPIKey retrieves an API key record by ID.
func (db *DB) GetAPIKey(ctx context.Context, id uuid.UUID) (APIKeyRecord, error) {
	var rec APIKeyRecord
	var role string
	err := db.pool.QueryRow(ctx,
		`SELECT id, org_id, role, key_hash, created_at FROM api_keys WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.OrgID, &role, &rec.KeyHash, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return APIKeyRecord{}, fmt.Errorf("storage: api key %s: %w", id, ErrNotFound)
		}
		return APIKeyRecord{}, fmt.Errorf("storage: get api key: %w", err)
	}
	rec.Role = auth.Role(role)
	return rec, nil
}

// DeleteAPIKey revokes an API key.
func (db *DB) DeleteAPIKey(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete api key %s: %w", id, err)
	}
	return nil
}

// CountAPIKeys returns the total number of API key records, used to decide
// whether an admin key still needs seeding.
func (db *DB) CountAPIKeys(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM api_keys`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count api keys: %w", err)
	}
	return n, nil
}
