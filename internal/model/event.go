package model

import "time"

// RoleCount pairs a required capability role with the minimum distinct
// count of people holding it who must be assigned.
type RoleCount struct {
	Role  Role `json:"role"`
	Count int  `json:"count"`
}

// RoleRequirement is the ordered list of role counts an event needs.
// Ordering is declaration order: the solver and evaluator process roles in
// this order, and it is an observable, test-relevant contract — a plain Go
// map would not preserve it across JSON round-trips.
type RoleRequirement []RoleCount

// Lookup returns the required count for r and whether r appears at all.
func (rr RoleRequirement) Lookup(r Role) (int, bool) {
	for _, rc := range rr {
		if rc.Role == r {
			return rc.Count, true
		}
	}
	return 0, false
}

// Roles returns the required role names, in declaration order.
func (rr RoleRequirement) Roles() []Role {
	out := make([]Role, len(rr))
	for i, rc := range rr {
		out[i] = rc.Role
	}
	return out
}

// Event is a single schedulable slot: a service, shift, or match that needs
// role coverage from a time-zone-aware start to end instant.
type Event struct {
	ID         string          `json:"id"`
	OrgID      string          `json:"org_id"`
	Type       string          `json:"type"` // e.g. "shift", "service", "match"
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	ResourceID string          `json:"resource_id,omitempty"`
	TeamIDs    []string        `json:"team_ids,omitempty"`
	Roles      RoleRequirement `json:"roles,omitempty"`
}

// TotalRequired sums the required headcount across all roles on the event.
func (e Event) TotalRequired() int {
	total := 0
	for _, rc := range e.Roles {
		total += rc.Count
	}
	return total
}

// Availability marks a person unavailable for the inclusive date window
// [StartDate, EndDate]. A person is ineligible for any event whose start
// date falls within the window.
type Availability struct {
	PersonID  string    `json:"person_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason,omitempty"`
}

// Overlaps reports whether the given instant's calendar date falls within
// the availability window, inclusive on both ends.
func (a Availability) Overlaps(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(dateOnly(a.StartDate)) && !d.After(dateOnly(a.EndDate))
}

// Holiday names a date or date range observed within a region, used by
// constraints that reason about weekends or public holidays.
type Holiday struct {
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Observes reports whether the holiday covers the given instant's date and
// applies to the given region ("" region on either side matches any).
func (h Holiday) Observes(t time.Time, region string) bool {
	if h.Region != "" && region != "" && h.Region != region {
		return false
	}
	d := dateOnly(t)
	return !d.Before(dateOnly(h.StartDate)) && !d.After(dateOnly(h.EndDate))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
