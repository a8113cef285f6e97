package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shiftforge/roster/internal/model"
)

// PutOrganization upserts an organization, including its Defaults blob.
func (db *DB) PutOrganization(ctx context.Context, org model.Organization) error {
	defaults, err := json.Marshal(org.Defaults)
	if err != nil {
		return fmt.Errorf("storage: marshal organization defaults: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO organizations (id, name, region, timezone, defaults, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   region = EXCLUDED.region,
		   timezone = EXCLUDED.timezone,
		   defaults = EXCLUDED.defaults,
		   updated_at = NOW()`,
		org.ID, org.Name, org.Region, org.Timezone, defaults,
	)
	if err != nil {
		return fmt.Errorf("storage: put organization %s: %w", org.ID, err)
	}
	return nil
}

// GetOrganization retrieves an organization by ID.
func (db *DB) GetOrganization(ctx context.Context, id string) (model.Organization, error) {
	var org model.Organization
	var defaults []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, region, timezone, defaults
		 FROM organizations WHERE id = $1`, id,
	).Scan(&org.ID, &org.Name, &org.Region, &org.Timezone, &defaults)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Organization{}, fmt.Errorf("storage: organization %s: %w", id, ErrNotFound)
		}
		return model.Organization{}, fmt.Errorf("storage: get organization: %w", err)
	}
	if len(defaults) > 0 {
		if err := json.Unmarshal(defaults, &org.Defaults); err != nil {
			return model.Organization{}, fmt.Errorf("storage: decode organization defaults: %w", err)
		}
	}
	return org, nil
}
