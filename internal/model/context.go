package model

import (
	"fmt"
	"time"

	"github.com/shiftforge/roster/internal/constraints"
)

// SolveContext is the immutable bundle a caller assembles and hands to a
// solver. Everything a solve needs to run lives here; nothing is fetched
// out-of-band. Two concurrent solves over independent contexts never share
// mutable state.
type SolveContext struct {
	Organization Organization             `json:"organization"`
	People       []Person                 `json:"people"`
	Teams        []Team                   `json:"teams,omitempty"`
	Resources    []Resource               `json:"resources,omitempty"`
	Events       []Event                  `json:"events"`
	Constraints  []constraints.Constraint `json:"constraints"`
	Availability []Availability           `json:"availability,omitempty"`
	Holidays     []Holiday                `json:"holidays,omitempty"`

	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`
	Mode       Mode      `json:"mode"`

	// MinimizeChanges asks the solver to prefer assignments matching
	// Previous over an equally valid alternative, per change_min_weight.
	MinimizeChanges bool            `json:"minimize_changes,omitempty"`
	Previous        *SolutionBundle `json:"previous,omitempty"`

	// HistoricalCounts optionally seeds per-person assignment counts from
	// outside the current range, so historical_rotation can account for
	// history the context itself does not contain. round_robin_balance and
	// the fairness stdev in the bundle's metrics do not read it.
	HistoricalCounts map[string]int `json:"historical_counts,omitempty"`
}

// ConfigurationError reports that a SolveContext failed semantic validation.
// It is distinct from the runtime Violation taxonomy: a ConfigurationError
// means the context itself is not well-formed enough to attempt a solve, and
// such a context is never passed to build_model. Validation is fail-fast —
// an error names the first offender found, not an exhaustive list.
type ConfigurationError struct {
	EntityID string
	Problem  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("model: invalid solve context: %s: %s", e.EntityID, e.Problem)
}

// Validate performs the semantic validation required before a SolveContext
// may reach a solver: every referenced id resolves, every event's start
// precedes its end, every availability window is well-ordered, every team
// member exists, and every role an event requires is held by at least
// one person. It never mutates the context and returns on the first problem
// found.
func (c SolveContext) Validate() error {
	people := make(map[string]Person, len(c.People))
	for _, p := range c.People {
		people[p.ID] = p
	}
	teams := make(map[string]struct{}, len(c.Teams))
	for _, t := range c.Teams {
		teams[t.ID] = struct{}{}
	}
	resources := make(map[string]struct{}, len(c.Resources))
	for _, r := range c.Resources {
		resources[r.ID] = struct{}{}
	}

	for _, t := range c.Teams {
		for _, pid := range t.PersonIDs {
			if _, ok := people[pid]; !ok {
				return &ConfigurationError{EntityID: t.ID, Problem: fmt.Sprintf("team references unknown person %q", pid)}
			}
		}
	}

	rolesHeld := make(map[Role]struct{})
	for _, p := range c.People {
		for _, r := range p.Roles {
			rolesHeld[r] = struct{}{}
		}
	}

	for _, e := range c.Events {
		if !e.Start.Before(e.End) {
			return &ConfigurationError{EntityID: e.ID, Problem: "start must be before end"}
		}
		if e.ResourceID != "" {
			if _, ok := resources[e.ResourceID]; !ok {
				return &ConfigurationError{EntityID: e.ID, Problem: fmt.Sprintf("references unknown resource %q", e.ResourceID)}
			}
		}
		for _, tid := range e.TeamIDs {
			if _, ok := teams[tid]; !ok {
				return &ConfigurationError{EntityID: e.ID, Problem: fmt.Sprintf("references unknown team %q", tid)}
			}
		}
		for _, rc := range e.Roles {
			if _, ok := rolesHeld[rc.Role]; !ok {
				return &ConfigurationError{EntityID: e.ID, Problem: fmt.Sprintf("requires role %q held by no person", rc.Role)}
			}
		}
	}

	for _, a := range c.Availability {
		if _, ok := people[a.PersonID]; !ok {
			return &ConfigurationError{EntityID: a.PersonID, Problem: "availability record references unknown person"}
		}
		if a.EndDate.Before(a.StartDate) {
			return &ConfigurationError{EntityID: a.PersonID, Problem: "availability record: start_date must be <= end_date"}
		}
	}

	for _, con := range c.Constraints {
		if err := con.Validate(); err != nil {
			return &ConfigurationError{EntityID: con.Key(), Problem: err.Error()}
		}
	}

	return nil
}
