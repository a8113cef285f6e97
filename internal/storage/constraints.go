package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shiftforge/roster/internal/constraints"
)

// PutConstraint upserts a constraint. The whole tagged record is stored as a
// single JSON blob keyed by (org_id, key): constraints.Constraint is a closed
// DSL, not a relational schema, so there is no per-kind table to normalize
// into.
func (db *DB) PutConstraint(ctx context.Context, orgID string, c constraints.Constraint) error {
	blob, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("storage: marshal constraint %s: %w", c.Key(), err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO constraints (org_id, key, kind, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 ON CONFLICT (org_id, key) DO UPDATE SET
		   kind = EXCLUDED.kind,
		   body = EXCLUDED.body,
		   updated_at = NOW()`,
		orgID, c.Key(), string(c.Kind), blob,
	)
	if err != nil {
		return fmt.Errorf("storage: put constraint %s: %w", c.Key(), err)
	}
	return nil
}

// ListConstraints returns every constraint belonging to orgID, ordered by
// key for deterministic replay into a SolveContext.
func (db *DB) ListConstraints(ctx context.Context, orgID string) ([]constraints.Constraint, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT body FROM constraints WHERE org_id = $1 ORDER BY key`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list constraints: %w", err)
	}
	defer rows.Close()

	var out []constraints.Constraint
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("storage: scan constraint: %w", err)
		}
		var c constraints.Constraint
		if err := json.Unmarshal(blob, &c); err != nil {
			return nil, fmt.Errorf("storage: decode constraint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list constraints rows: %w", err)
	}
	return out, nil
}

// DeleteConstraint removes a constraint by (org_id, key).
func (db *DB) DeleteConstraint(ctx context.Context, orgID, key string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM constraints WHERE org_id = $1 AND key = $2`, orgID, key)
	if err != nil {
		return fmt.Errorf("storage: delete constraint %s: %w", key, err)
	}
	return nil
}
