package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shiftforge/roster/internal/model"
)

// PutPerson upserts a person, including their role list.
func (db *DB) PutPerson(ctx context.Context, p model.Person) error {
	roles, err := json.Marshal(p.Roles)
	if err != nil {
		return fmt.Errorf("storage: marshal person roles: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO people (id, org_id, name, roles, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   roles = EXCLUDED.roles,
		   updated_at = NOW()`,
		p.ID, p.OrgID, p.Name, roles,
	)
	if err != nil {
		return fmt.Errorf("storage: put person %s: %w", p.ID, err)
	}
	return nil
}

// ListPeople returns every person belonging to orgID, ordered by id for
// deterministic pagination-free reads.
func (db *DB) ListPeople(ctx context.Context, orgID string) ([]model.Person, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, org_id, name, roles FROM people WHERE org_id = $1 ORDER BY id`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list people: %w", err)
	}
	defer rows.Close()

	var out []model.Person
	for rows.Next() {
		var p model.Person
		var roles []byte
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &roles); err != nil {
			return nil, fmt.Errorf("storage: scan person: %w", err)
		}
		if len(roles) > 0 {
			if err := json.Unmarshal(roles, &p.Roles); err != nil {
				return nil, fmt.Errorf("storage: decode person roles: %w", err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list people rows: %w", err)
	}
	return out, nil
}

// DeletePerson removes a person by ID.
func (db *DB) DeletePerson(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete person %s: %w", id, err)
	}
	return nil
}
