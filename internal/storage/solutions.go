package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/google/uuid"

	"github.com/shiftforge/roster/internal/model"
)

// SolutionRecord is a stored SolutionBundle plus the id and org it was
// published under. The bundle itself carries no identity of its own — it is
// pure output from a solve — so the snapshot row is what gives a solution a
// durable, referenceable id.
type SolutionRecord struct {
	ID        uuid.UUID          `json:"id"`
	OrgID     string             `json:"org_id"`
	Bundle    model.SolutionBundle `json:"bundle"`
	CreatedAt time.Time          `json:"created_at"`
}

// PutSolution persists a SolutionBundle as a new snapshot and returns its
// generated id. Snapshots are immutable and append-only: a re-solve always
// creates a new row rather than overwriting an old one, so diff_solutions and
// audit history keep working after the fact.
func (db *DB) PutSolution(ctx context.Context, orgID string, b model.SolutionBundle) (uuid.UUID, error) {
	id := uuid.New()
	blob, err := json.Marshal(b)
	if err != nil {
		return uuid.Nil, fmt.Errorf("storage: marshal solution bundle: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO solution_snapshots (id, org_id, bundle, created_at)
		 VALUES ($1, $2, $3, NOW())`,
		id, orgID, blob,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("storage: put solution: %w", err)
	}
	return id, nil
}

var errSolutionNotFound = fmt.Errorf("storage: solution: %w", ErrNotFound)

// GetSolution retrieves a persisted SolutionBundle by its snapshot id.
func (db *DB) GetSolution(ctx context.Context, orgID string, id uuid.UUID) (SolutionRecord, error) {
	var rec SolutionRecord
	var blob []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, org_id, bundle, created_at FROM solution_snapshots WHERE id = $1 AND org_id = $2`,
		id, orgID,
	).Scan(&rec.ID, &rec.OrgID, &blob, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SolutionRecord{}, errSolutionNotFound
		}
		return SolutionRecord{}, fmt.Errorf("storage: get solution: %w", err)
	}
	if err := json.Unmarshal(blob, &rec.Bundle); err != nil {
		return SolutionRecord{}, fmt.Errorf("storage: decode solution bundle: %w", err)
	}
	return rec, nil
}

// ListSolutions returns the most recent snapshots for orgID, newest first.
func (db *DB) ListSolutions(ctx context.Context, orgID string, limit int) ([]SolutionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, org_id, bundle, created_at FROM solution_snapshots
		 WHERE org_id = $1 ORDER BY created_at DESC LIMIT $2`, orgID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list solutions: %w", err)
	}
	defer rows.Close()

	var out []SolutionRecord
	for rows.Next() {
		var rec SolutionRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.OrgID, &blob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan solution: %w", err)
		}
		if err := json.Unmarshal(blob, &rec.Bundle); err != nil {
			return nil, fmt.Errorf("storage: decode solution bundle: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list solutions rows: %w", err)
	}
	return out, nil
}

// LatestSolution returns the most recently published snapshot for orgID, if
// any. Used to seed ctx.Previous for change-minimizing re-solves.
func (db *DB) LatestSolution(ctx context.Context, orgID string) (SolutionRecord, bool, error) {
	recs, err := db.ListSolutions(ctx, orgID, 1)
	if err != nil {
		return SolutionRecord{}, false, err
	}
	if len(recs) == 0 {
		return SolutionRecord{}, false, nil
	}
	return recs[0], true, nil
}
