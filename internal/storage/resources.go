package storage

import (
	"context"
	"fmt"

	"github.com/shiftforge/roster/internal/model"
)

// PutResource upserts a resource.
func (db *DB) PutResource(ctx context.Context, r model.Resource) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO resources (id, org_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   updated_at = NOW()`,
		r.ID, r.OrgID, r.Name,
	)
	if err != nil {
		return fmt.Errorf("storage: put resource %s: %w", r.ID, err)
	}
	return nil
}

// ListResources returns every resource belonging to orgID, ordered by id.
func (db *DB) ListResources(ctx context.Context, orgID string) ([]model.Resource, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, org_id, name FROM resources WHERE org_id = $1 ORDER BY id`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list resources: %w", err)
	}
	defer rows.Close()

	var out []model.Resource
	for rows.Next() {
		var r model.Resource
		if err := rows.Scan(&r.ID, &r.OrgID, &r.Name); err != nil {
			return nil, fmt.Errorf("storage: scan resource: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list resources rows: %w", err)
	}
	return out, nil
}

// DeleteResource removes a resource by ID.
func (db *DB) DeleteResource(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete resource %s: %w", id, err)
	}
	return nil
}
