package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shiftforge/roster/internal/model"
)

// PutTeam upserts a team and its member id list.
func (db *DB) PutTeam(ctx context.Context, t model.Team) error {
	members, err := json.Marshal(t.PersonIDs)
	if err != nil {
		return fmt.Errorf("storage: marshal team members: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO teams (id, org_id, name, person_ids, canonical_role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   person_ids = EXCLUDED.person_ids,
		   canonical_role = EXCLUDED.canonical_role,
		   updated_at = NOW()`,
		t.ID, t.OrgID, t.Name, members, string(t.CanonicalRole),
	)
	if err != nil {
		return fmt.Errorf("storage: put team %s: %w", t.ID, err)
	}
	return nil
}

// ListTeams returns every team belonging to orgID, ordered by id.
func (db *DB) ListTeams(ctx context.Context, orgID string) ([]model.Team, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, org_id, name, person_ids, canonical_role FROM teams WHERE org_id = $1 ORDER BY id`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list teams: %w", err)
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		var t model.Team
		var members []byte
		var role string
		if err := rows.Scan(&t.ID, &t.OrgID, &t.Name, &members, &role); err != nil {
			return nil, fmt.Errorf("storage: scan team: %w", err)
		}
		if len(members) > 0 {
			if err := json.Unmarshal(members, &t.PersonIDs); err != nil {
				return nil, fmt.Errorf("storage: decode team members: %w", err)
			}
		}
		t.CanonicalRole = model.Role(role)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list teams rows: %w", err)
	}
	return out, nil
}

// DeleteTeam removes a team by ID.
func (db *DB) DeleteTeam(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete team %s: %w", id, err)
	}
	return nil
}
