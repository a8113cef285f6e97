package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftforge/roster/internal/model"
)

// LoadSolveContext assembles a model.SolveContext from storage for the given
// org and [from, to) event window. It never validates the result — callers
// must still call SolveContext.Validate before handing it to a solver.
func (db *DB) LoadSolveContext(ctx context.Context, orgID string, from, to time.Time, mode model.Mode) (model.SolveContext, error) {
	org, err := db.GetOrganization(ctx, orgID)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}
	people, err := db.ListPeople(ctx, orgID)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}
	teams, err := db.ListTeams(ctx, orgID)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}
	resources, err := db.ListResources(ctx, orgID)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}
	events, err := db.ListEventsInRange(ctx, orgID, from, to)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}
	cons, err := db.ListConstraints(ctx, orgID)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}
	avail, err := db.ListAvailability(ctx, orgID)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}
	holidays, err := db.ListHolidays(ctx, orgID)
	if err != nil {
		return model.SolveContext{}, fmt.Errorf("storage: load solve context: %w", err)
	}

	return model.SolveContext{
		Organization: org,
		People:       people,
		Teams:        teams,
		Resources:    resources,
		Events:       events,
		Constraints:  cons,
		Availability: avail,
		Holidays:     holidays,
		RangeStart:   from,
		RangeEnd:     to,
		Mode:         mode,
	}, nil
}
