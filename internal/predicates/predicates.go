// Package predicates holds the pure eligibility functions the evaluator and
// solver compose to decide whether a person may be assigned to an event.
// Every function here is a pure function of its arguments: no I/O, no
// shared state, no side effects.
package predicates

import (
	"time"

	"github.com/shiftforge/roster/internal/constraints"
	"github.com/shiftforge/roster/internal/model"
)

// State is the working assignment state a predicate checks a candidate
// placement against: for each person already touched during the current
// solve, the events assigned to them so far, in no particular order.
type State struct {
	AssignedByPerson map[string][]model.Event
}

// NewState returns an empty working state.
func NewState() State {
	return State{AssignedByPerson: make(map[string][]model.Event)}
}

// Assign records that personID now additionally covers e. Callers add to
// State incrementally as the solver commits assignments.
func (s State) Assign(personID string, e model.Event) {
	s.AssignedByPerson[personID] = append(s.AssignedByPerson[personID], e)
}

// AssignedEvents returns the events already assigned to personID.
func (s State) AssignedEvents(personID string) []model.Event {
	return s.AssignedByPerson[personID]
}

// CountInRole returns how many of personID's assigned events required role
// r and so far counted as a coverage fill in that role. Role attribution
// during the search is the role the predicate was evaluated for, so the
// caller passes it in via roleCounts rather than re-deriving it here.
func CountInRole(roleCounts map[string]map[model.Role]int, personID string, r model.Role) int {
	return roleCounts[personID][r]
}

// IsAvailable reports whether p is not blocked by any of their availability
// records overlapping e's start date.
func IsAvailable(p model.Person, e model.Event, availability []model.Availability) bool {
	for _, a := range availability {
		if a.PersonID != p.ID {
			continue
		}
		if a.Overlaps(e.Start) {
			return false
		}
	}
	return true
}

// HasRequiredRole reports whether p holds role r.
func HasRequiredRole(p model.Person, r model.Role) bool {
	return p.HasRole(r)
}

// RespectsRestGap reports whether assigning p to e would keep at least
// hours between e and every event already in state for p.
func RespectsRestGap(p model.Person, e model.Event, state State, hours int) bool {
	gap := time.Duration(hours) * time.Hour
	for _, existing := range state.AssignedEvents(p.ID) {
		var earlierEnd, laterStart time.Time
		if existing.Start.Before(e.Start) {
			earlierEnd, laterStart = existing.End, e.Start
		} else {
			earlierEnd, laterStart = e.End, existing.Start
		}
		if laterStart.Sub(earlierEnd) < gap {
			return false
		}
	}
	return true
}

// WithinCap reports whether adding (p, e) keeps p's count within the
// window described by period at or below n.
func WithinCap(p model.Person, e model.Event, state State, n int, period constraints.Period) bool {
	count := 1 // the candidate placement itself
	for _, existing := range state.AssignedEvents(p.ID) {
		if inSameWindow(existing.Start, e.Start, period) {
			count++
		}
	}
	return count <= n
}

func inSameWindow(a, b time.Time, period constraints.Period) bool {
	switch {
	case period.Rolling != nil:
		d := period.Rolling.Days
		diff := b.Sub(a)
		return diff >= 0 && diff <= time.Duration(d)*24*time.Hour
	case period.Calendar != nil:
		switch period.Calendar.Unit {
		case constraints.CalendarMonth:
			ay, am, _ := a.Date()
			by, bm, _ := b.Date()
			return ay == by && am == bm
		case constraints.CalendarWeek:
			return sameISOWeek(a, b)
		}
	}
	return false
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

// IsBlockedByLongWeekend reports whether e's start date forms the inside of
// a Friday-through-Monday long weekend relative to holidays, optionally
// scoped to region. A holiday observed on a Friday extends the block
// through the following Monday; a holiday observed on a Monday extends it
// back through the preceding Friday.
func IsBlockedByLongWeekend(e model.Event, holidays []model.Holiday, region string) bool {
	d := dateOnly(e.Start)
	for _, h := range holidays {
		if h.Region != "" && region != "" && h.Region != region {
			continue
		}
		for cursor := dateOnly(h.StartDate); !cursor.After(dateOnly(h.EndDate)); cursor = cursor.AddDate(0, 0, 1) {
			span, ok := longWeekendSpan(cursor)
			if !ok {
				continue
			}
			if !d.Before(span[0]) && !d.After(span[1]) {
				return true
			}
		}
	}
	return false
}

// longWeekendSpan returns the [Friday, Monday] date span a holiday
// observed on holidayDate participates in, if holidayDate itself falls on
// a Friday or a Monday. Returns ok=false for any other weekday.
func longWeekendSpan(holidayDate time.Time) (span [2]time.Time, ok bool) {
	switch holidayDate.Weekday() {
	case time.Friday:
		return [2]time.Time{holidayDate, holidayDate.AddDate(0, 0, 3)}, true
	case time.Monday:
		return [2]time.Time{holidayDate.AddDate(0, 0, -3), holidayDate}, true
	default:
		return span, false
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
