package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shiftforge/roster/internal/model"
)

// PutEvent upserts an event, including its role requirement list.
func (db *DB) PutEvent(ctx context.Context, e model.Event) error {
	roles, err := json.Marshal(e.Roles)
	if err != nil {
		return fmt.Errorf("storage: marshal event roles: %w", err)
	}
	teamIDs, err := json.Marshal(e.TeamIDs)
	if err != nil {
		return fmt.Errorf("storage: marshal event team ids: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO events (id, org_id, type, start_at, end_at, resource_id, team_ids, roles, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   type = EXCLUDED.type,
		   start_at = EXCLUDED.start_at,
		   end_at = EXCLUDED.end_at,
		   resource_id = EXCLUDED.resource_id,
		   team_ids = EXCLUDED.team_ids,
		   roles = EXCLUDED.roles,
		   updated_at = NOW()`,
		e.ID, e.OrgID, e.Type, e.Start, e.End, e.ResourceID, teamIDs, roles,
	)
	if err != nil {
		return fmt.Errorf("storage: put event %s: %w", e.ID, err)
	}
	return nil
}

// ListEventsInRange returns every event belonging to orgID whose start falls
// within [from, to), ordered by start then id to match the solver's own
// deterministic event ordering.
func (db *DB) ListEventsInRange(ctx context.Context, orgID string, from, to time.Time) ([]model.Event, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, org_id, type, start_at, end_at, COALESCE(resource_id, ''), team_ids, roles
		 FROM events
		 WHERE org_id = $1 AND start_at >= $2 AND start_at < $3
		 ORDER BY start_at, id`, orgID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list events: %w", err)
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		var teamIDs, roles []byte
		if err := rows.Scan(&e.ID, &e.OrgID, &e.Type, &e.Start, &e.End, &e.ResourceID, &teamIDs, &roles); err != nil {
			return nil, fmt.Errorf("storage: scan event: %w", err)
		}
		if len(teamIDs) > 0 {
			if err := json.Unmarshal(teamIDs, &e.TeamIDs); err != nil {
				return nil, fmt.Errorf("storage: decode event team ids: %w", err)
			}
		}
		if len(roles) > 0 {
			if err := json.Unmarshal(roles, &e.Roles); err != nil {
				return nil, fmt.Errorf("storage: decode event roles: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list events rows: %w", err)
	}
	return out, nil
}

// DeleteEvent removes an event by ID.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete event %s: %w", id, err)
	}
	return nil
}

// PutAvailability inserts a person's unavailability window as a new row;
// storing the same window twice keeps two rows.
func (db *DB) PutAvailability(ctx context.Context, orgID string, a model.Availability) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO availability (org_id, person_id, start_date, end_date, reason)
		 VALUES ($1, $2, $3, $4, $5)`,
		orgID, a.PersonID, a.StartDate, a.EndDate, a.Reason,
	)
	if err != nil {
		return fmt.Errorf("storage: put availability for %s: %w", a.PersonID, err)
	}
	return nil
}

// ListAvailability returns every availability window recorded for orgID.
func (db *DB) ListAvailability(ctx context.Context, orgID string) ([]model.Availability, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT person_id, start_date, end_date, COALESCE(reason, '')
		 FROM availability WHERE org_id = $1 ORDER BY person_id, start_date`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list availability: %w", err)
	}
	defer rows.Close()

	var out []model.Availability
	for rows.Next() {
		var a model.Availability
		if err := rows.Scan(&a.PersonID, &a.StartDate, &a.EndDate, &a.Reason); err != nil {
			return nil, fmt.Errorf("storage: scan availability: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list availability rows: %w", err)
	}
	return out, nil
}

// PutHoliday upserts a named holiday window for a region.
func (db *DB) PutHoliday(ctx context.Context, orgID string, h model.Holiday) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO holidays (org_id, name, region, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (org_id, name, region) DO UPDATE SET
		   start_date = EXCLUDED.start_date,
		   end_date = EXCLUDED.end_date`,
		orgID, h.Name, h.Region, h.StartDate, h.EndDate,
	)
	if err != nil {
		return fmt.Errorf("storage: put holiday %s: %w", h.Name, err)
	}
	return nil
}

// ListHolidays returns every holiday recorded for orgID.
func (db *DB) ListHolidays(ctx context.Context, orgID string) ([]model.Holiday, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT name, region, start_date, end_date FROM holidays WHERE org_id = $1 ORDER BY start_date`, orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list holidays: %w", err)
	}
	defer rows.Close()

	var out []model.Holiday
	for rows.Next() {
		var h model.Holiday
		if err := rows.Scan(&h.Name, &h.Region, &h.StartDate, &h.EndDate); err != nil {
			return nil, fmt.Errorf("storage: scan holiday: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list holidays rows: %w", err)
	}
	return out, nil
}

var errEventNotFound = fmt.Errorf("storage: event: %w", ErrNotFound)

// GetEvent fetches a single event by id.
func (db *DB) GetEvent(ctx context.Context, id string) (model.Event, error) {
	var e model.Event
	var teamIDs, roles []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, org_id, type, start_at, end_at, COALESCE(resource_id, ''), team_ids, roles
		 FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.OrgID, &e.Type, &e.Start, &e.End, &e.ResourceID, &teamIDs, &roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, errEventNotFound
		}
		return model.Event{}, fmt.Errorf("storage: get event: %w", err)
	}
	if len(teamIDs) > 0 {
		_ = json.Unmarshal(teamIDs, &e.TeamIDs)
	}
	if len(roles) > 0 {
		_ = json.Unmarshal(roles, &e.Roles)
	}
	return e, nil
}
