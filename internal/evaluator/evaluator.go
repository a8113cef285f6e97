// Package evaluator computes hard violations and soft penalties for a
// candidate or final assignment set against a constraint set. It is pure
// and deterministic: the same assignments and constraints always produce
// the same violations and score, and it holds no state between calls.
package evaluator

import (
	"fmt"
	"sort"
	"time"

	"github.com/shiftforge/roster/internal/constraints"
	"github.com/shiftforge/roster/internal/model"
)

// Evaluator bundles the constraint set and the ambient data (holidays,
// availability) that constraint evaluation needs but which isn't part of
// the assignment itself.
type Evaluator struct {
	Constraints  []constraints.Constraint
	Holidays     []model.Holiday
	Availability []model.Availability
	Region       string

	// FairnessWeight scales historical_rotation's deviation penalty on top
	// of the constraint's own Weight. New defaults it to 1.0; callers that
	// have an organization-wide override assign it after construction.
	FairnessWeight float64
}

// New constructs an Evaluator over a fixed constraint set.
func New(cs []constraints.Constraint, holidays []model.Holiday, availability []model.Availability, region string) *Evaluator {
	return &Evaluator{Constraints: cs, Holidays: holidays, Availability: availability, Region: region, FairnessWeight: 1.0}
}

// Result is the evaluator's output for one assignment set.
type Result struct {
	Hard      []model.Violation
	Soft      []model.Violation
	SoftScore float64
}

// Evaluate scores a completed (or partial) set of assignments against
// events and people. priorCounts seeds historical_rotation's mean
// calculation for people with activity outside the current range.
func (ev *Evaluator) Evaluate(events []model.Event, people map[string]model.Person, assignments []model.Assignment, priorCounts map[string]int) Result {
	var res Result

	byEvent := make(map[string]model.Event, len(events))
	for _, e := range events {
		byEvent[e.ID] = e
	}
	byEventAssignment := make(map[string]model.Assignment, len(assignments))
	for _, a := range assignments {
		byEventAssignment[a.EventID] = a
	}

	for _, c := range ev.Constraints {
		switch c.Kind {
		case constraints.KindRequireRoleCoverage:
			res.Hard = append(res.Hard, ev.evalRoleCoverage(c, events, byEventAssignment)...)
		case constraints.KindNoLongWeekendFriMon:
			region := ev.Region
			if c.NoLongWeekend != nil && c.NoLongWeekend.Region != "" {
				region = c.NoLongWeekend.Region
			}
			res.Hard = append(res.Hard, ev.evalLongWeekend(c, events, byEventAssignment, region)...)
		case constraints.KindNoOverlapExternal:
			res.Hard = append(res.Hard, ev.evalNoOverlapExternal(c, byEvent, assignments)...)
		case constraints.KindMinRestGapHours:
			res.Hard = append(res.Hard, ev.evalRestGap(c, byEvent, assignments)...)
		case constraints.KindCapPerPeriod:
			res.Hard = append(res.Hard, ev.evalCapPerPeriod(c, byEvent, assignments)...)
		case constraints.KindRoleCooldown:
			v, score := ev.evalRoleCooldown(c, byEvent, assignments)
			res.Soft = append(res.Soft, v...)
			res.SoftScore += score
		case constraints.KindHistoricalRotation:
			v, score := ev.evalHistoricalRotation(c, people, assignments, priorCounts)
			res.Soft = append(res.Soft, v...)
			res.SoftScore += score
		case constraints.KindRoundRobinBalance:
			v, score := ev.evalRoundRobin(c, assignments)
			res.Soft = append(res.Soft, v...)
			res.SoftScore += score
		}
	}

	sortViolations(res.Hard)
	sortViolations(res.Soft)
	return res
}

func sortViolations(vs []model.Violation) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].ConstraintKey != vs[j].ConstraintKey {
			return vs[i].ConstraintKey < vs[j].ConstraintKey
		}
		ei, ej := firstOr(vs[i].EventIDs), firstOr(vs[j].EventIDs)
		if ei != ej {
			return ei < ej
		}
		return firstOr(vs[i].PersonIDs) < firstOr(vs[j].PersonIDs)
	})
}

func firstOr(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func (ev *Evaluator) evalRoleCoverage(c constraints.Constraint, events []model.Event, byEventAssignment map[string]model.Assignment) []model.Violation {
	var out []model.Violation
	for _, e := range events {
		a := byEventAssignment[e.ID]
		have := make(map[model.Role]int)
		for i := range a.AssigneeIDs {
			if i < len(a.Roles) {
				have[a.Roles[i]]++
			}
		}
		for _, rc := range e.Roles {
			missing := rc.Count - have[rc.Role]
			for i := 0; i < missing; i++ {
				out = append(out, model.Violation{
					ConstraintKey: c.Key(),
					Severity:      model.SeverityHard,
					EventIDs:      []string{e.ID},
					Message:       fmt.Sprintf("event %s: missing %d assignee(s) for role %s", e.ID, missing-i, rc.Role),
				})
			}
		}
	}
	return out
}

func (ev *Evaluator) evalLongWeekend(c constraints.Constraint, events []model.Event, byEventAssignment map[string]model.Assignment, region string) []model.Violation {
	var out []model.Violation
	for _, e := range events {
		if !isBlockedByLongWeekend(e, ev.Holidays, region) {
			continue
		}
		a := byEventAssignment[e.ID]
		if len(a.AssigneeIDs) == 0 {
			continue
		}
		out = append(out, model.Violation{
			ConstraintKey: c.Key(),
			Severity:      model.SeverityHard,
			EventIDs:      []string{e.ID},
			PersonIDs:     append([]string{}, a.AssigneeIDs...),
			Message:       fmt.Sprintf("event %s: scheduled inside a blocked long weekend", e.ID),
		})
	}
	return out
}

func isBlockedByLongWeekend(e model.Event, holidays []model.Holiday, region string) bool {
	d := dateOnly(e.Start)
	for _, h := range holidays {
		if h.Region != "" && region != "" && h.Region != region {
			continue
		}
		for cursor := dateOnly(h.StartDate); !cursor.After(dateOnly(h.EndDate)); cursor = cursor.AddDate(0, 0, 1) {
			var start, end time.Time
			switch cursor.Weekday() {
			case time.Friday:
				start, end = cursor, cursor.AddDate(0, 0, 3)
			case time.Monday:
				start, end = cursor.AddDate(0, 0, -3), cursor
			default:
				continue
			}
			if !d.Before(start) && !d.After(end) {
				return true
			}
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (ev *Evaluator) evalNoOverlapExternal(c constraints.Constraint, byEvent map[string]model.Event, assignments []model.Assignment) []model.Violation {
	var out []model.Violation
	for _, a := range assignments {
		e, ok := byEvent[a.EventID]
		if !ok {
			continue
		}
		for _, pid := range a.AssigneeIDs {
			for _, av := range ev.Availability {
				if av.PersonID == pid && av.Overlaps(e.Start) {
					out = append(out, model.Violation{
						ConstraintKey: c.Key(),
						Severity:      model.SeverityHard,
						EventIDs:      []string{e.ID},
						PersonIDs:     []string{pid},
						Message:       fmt.Sprintf("person %s assigned to %s during time off (%s)", pid, e.ID, av.Reason),
					})
				}
			}
		}
	}
	return out
}

func (ev *Evaluator) evalRestGap(c constraints.Constraint, byEvent map[string]model.Event, assignments []model.Assignment) []model.Violation {
	if c.MinRestGap == nil {
		return nil
	}
	gap := time.Duration(c.MinRestGap.Hours) * time.Hour
	byPerson := groupByPerson(assignments)
	var out []model.Violation
	for _, pid := range sortedKeys(byPerson) {
		evs := personEvents(byPerson[pid], byEvent)
		sort.Slice(evs, func(i, j int) bool { return evs[i].Start.Before(evs[j].Start) })
		for i := 1; i < len(evs); i++ {
			if evs[i].Start.Sub(evs[i-1].End) < gap {
				out = append(out, model.Violation{
					ConstraintKey: c.Key(),
					Severity:      model.SeverityHard,
					EventIDs:      []string{evs[i-1].ID, evs[i].ID},
					PersonIDs:     []string{pid},
					Message:       fmt.Sprintf("person %s: rest gap between %s and %s below %dh", pid, evs[i-1].ID, evs[i].ID, c.MinRestGap.Hours),
				})
			}
		}
	}
	return out
}

func (ev *Evaluator) evalCapPerPeriod(c constraints.Constraint, byEvent map[string]model.Event, assignments []model.Assignment) []model.Violation {
	if c.CapPerPeriod == nil {
		return nil
	}
	byPerson := groupByPerson(assignments)
	var out []model.Violation
	for _, pid := range sortedKeys(byPerson) {
		evs := personEvents(byPerson[pid], byEvent)
		sort.Slice(evs, func(i, j int) bool { return evs[i].Start.Before(evs[j].Start) })
		for _, e := range evs {
			count := 0
			for _, other := range evs {
				if inWindow(other.Start, e.Start, c.CapPerPeriod.Period) {
					count++
				}
			}
			if count > c.CapPerPeriod.N {
				out = append(out, model.Violation{
					ConstraintKey: c.Key(),
					Severity:      model.SeverityHard,
					EventIDs:      []string{e.ID},
					PersonIDs:     []string{pid},
					Message:       fmt.Sprintf("person %s: exceeds cap of %d in period at event %s", pid, c.CapPerPeriod.N, e.ID),
				})
			}
		}
	}
	return out
}

func inWindow(a, b time.Time, period constraints.Period) bool {
	switch {
	case period.Rolling != nil:
		diff := b.Sub(a)
		return diff >= 0 && diff <= time.Duration(period.Rolling.Days)*24*time.Hour
	case period.Calendar != nil:
		switch period.Calendar.Unit {
		case constraints.CalendarMonth:
			ay, am, _ := a.Date()
			by, bm, _ := b.Date()
			return ay == by && am == bm
		case constraints.CalendarWeek:
			ay, aw := a.ISOWeek()
			by, bw := b.ISOWeek()
			return ay == by && aw == bw
		}
	}
	return false
}

func (ev *Evaluator) evalRoleCooldown(c constraints.Constraint, byEvent map[string]model.Event, assignments []model.Assignment) ([]model.Violation, float64) {
	if c.RoleCooldown == nil {
		return nil, 0
	}
	window := time.Duration(c.RoleCooldown.Days) * 24 * time.Hour

	type occ struct {
		event model.Event
		role  model.Role
	}
	byPersonRole := make(map[string][]occ)
	for _, a := range assignments {
		e, ok := byEvent[a.EventID]
		if !ok {
			continue
		}
		for i, pid := range a.AssigneeIDs {
			if i >= len(a.Roles) {
				continue
			}
			byPersonRole[pid] = append(byPersonRole[pid], occ{event: e, role: a.Roles[i]})
		}
	}

	var violations []model.Violation
	var score float64
	for _, pid := range sortedOccKeys(byPersonRole) {
		occs := byPersonRole[pid]
		sort.Slice(occs, func(i, j int) bool { return occs[i].event.Start.Before(occs[j].event.Start) })
		seenByRole := make(map[model.Role][]model.Event)
		for _, o := range occs {
			prior := seenByRole[o.role]
			for _, p := range prior {
				if o.event.Start.Sub(p.End) <= window {
					score += c.Weight
					violations = append(violations, model.Violation{
						ConstraintKey: c.Key(),
						Severity:      model.SeveritySoft,
						EventIDs:      []string{p.ID, o.event.ID},
						PersonIDs:     []string{pid},
						Weight:        c.Weight,
						Message:       fmt.Sprintf("person %s: role %s repeated within %d days (%s, %s)", pid, o.role, c.RoleCooldown.Days, p.ID, o.event.ID),
					})
				}
			}
			seenByRole[o.role] = append(seenByRole[o.role], o.event)
		}
	}
	return violations, score
}

func sortedOccKeys[V any](m map[string][]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (ev *Evaluator) evalHistoricalRotation(c constraints.Constraint, people map[string]model.Person, assignments []model.Assignment, priorCounts map[string]int) ([]model.Violation, float64) {
	counts := make(map[string]int, len(people))
	for pid := range people {
		counts[pid] = priorCounts[pid]
	}
	for _, a := range assignments {
		for _, pid := range a.AssigneeIDs {
			counts[pid]++
		}
	}
	if len(counts) == 0 {
		return nil, 0
	}
	var sum float64
	for _, n := range counts {
		sum += float64(n)
	}
	mean := sum / float64(len(counts))

	var violations []model.Violation
	var score float64
	for _, pid := range sortedKeysInt(counts) {
		deviation := float64(counts[pid]) - mean
		if deviation <= 0 {
			continue
		}
		penalty := c.Weight * ev.FairnessWeight * deviation
		score += penalty
		violations = append(violations, model.Violation{
			ConstraintKey: c.Key(),
			Severity:      model.SeveritySoft,
			PersonIDs:     []string{pid},
			Weight:        penalty,
			Message:       fmt.Sprintf("person %s: count %d exceeds mean %.2f", pid, counts[pid], mean),
		})
	}
	return violations, score
}

func (ev *Evaluator) evalRoundRobin(c constraints.Constraint, assignments []model.Assignment) ([]model.Violation, float64) {
	if c.RoundRobin == nil || len(c.RoundRobin.OrderedIDs) == 0 {
		return nil, 0
	}
	position := make(map[string]int, len(c.RoundRobin.OrderedIDs))
	for i, id := range c.RoundRobin.OrderedIDs {
		position[id] = i
	}

	var ordered []model.Assignment
	for _, a := range assignments {
		hasTracked := false
		for _, pid := range a.AssigneeIDs {
			if _, ok := position[pid]; ok {
				hasTracked = true
				break
			}
		}
		if hasTracked {
			ordered = append(ordered, a)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].EventID < ordered[j].EventID })

	n := len(c.RoundRobin.OrderedIDs)
	var violations []model.Violation
	var score float64
	for i, a := range ordered {
		want := c.RoundRobin.OrderedIDs[i%n]
		if !a.Has(want) {
			score += c.Weight
			violations = append(violations, model.Violation{
				ConstraintKey: c.Key(),
				Severity:      model.SeveritySoft,
				EventIDs:      []string{a.EventID},
				Weight:        c.Weight,
				Message:       fmt.Sprintf("event %s: expected %s next in rotation", a.EventID, want),
			})
		}
	}
	return violations, score
}

func groupByPerson(assignments []model.Assignment) map[string][]string {
	out := make(map[string][]string)
	for _, a := range assignments {
		for _, pid := range a.AssigneeIDs {
			out[pid] = append(out[pid], a.EventID)
		}
	}
	return out
}

func personEvents(eventIDs []string, byEvent map[string]model.Event) []model.Event {
	out := make([]model.Event, 0, len(eventIDs))
	for _, id := range eventIDs {
		if e, ok := byEvent[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysInt(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
