package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/shiftforge/roster/internal/constraints"
	"github.com/shiftforge/roster/internal/evaluator"
	"github.com/shiftforge/roster/internal/metrics"
	"github.com/shiftforge/roster/internal/model"
	"github.com/shiftforge/roster/internal/predicates"
	"github.com/shiftforge/roster/internal/telemetry"
)

// Name and Version identify the reference solver in a SolutionBundle's
// meta.solver field.
const (
	Name     = "roster-greedy"
	Version  = "1.0.0"
	Strategy = "single-pass-greedy"
)

// GreedyHeuristic is the reference Solver: a deterministic, single-pass,
// event-ordered assignment that produces a feasible-first solution. See
// package solver's doc comment for the interface contract it satisfies.
type GreedyHeuristic struct {
	ctx model.SolveContext

	events        []model.Event
	people        map[string]model.Person
	minRestGaps   []constraints.Constraint
	caps          []constraints.Constraint
	noOverlap     bool
	longWeekend   []constraints.Constraint
	roleCooldowns []constraints.Constraint
	historical    []constraints.Constraint
	roundRobins   []constraints.Constraint

	state          predicates.State
	totalCounts    map[string]int
	roleCounts     map[string]map[model.Role]int
	previousPerson map[string]string // event id -> person id, from ctx.Previous

	tracked map[string]int // round-robin constraint key -> commits of any id in its order, used to approximate rotation position
}

// NewGreedyHeuristic constructs an unbuilt GreedyHeuristic. Call BuildModel
// before Solve.
func NewGreedyHeuristic() *GreedyHeuristic {
	return &GreedyHeuristic{}
}

// BuildModel validates the context and precomputes the indices the search
// loop needs. It never mutates ctx.
func (g *GreedyHeuristic) BuildModel(ctx model.SolveContext) error {
	ctx.Constraints = applyCooldownDefault(ctx.Constraints, ctx.Organization.Defaults.CooldownDays)
	if err := ctx.Validate(); err != nil {
		return err
	}
	g.ctx = ctx

	g.events = append([]model.Event{}, ctx.Events...)
	sort.Slice(g.events, func(i, j int) bool {
		if !g.events[i].Start.Equal(g.events[j].Start) {
			return g.events[i].Start.Before(g.events[j].Start)
		}
		return g.events[i].ID < g.events[j].ID
	})

	g.people = make(map[string]model.Person, len(ctx.People))
	for _, p := range ctx.People {
		g.people[p.ID] = p
	}

	for _, c := range ctx.Constraints {
		switch c.Kind {
		case constraints.KindMinRestGapHours:
			g.minRestGaps = append(g.minRestGaps, c)
		case constraints.KindCapPerPeriod:
			g.caps = append(g.caps, c)
		case constraints.KindNoOverlapExternal:
			g.noOverlap = true
		case constraints.KindNoLongWeekendFriMon:
			g.longWeekend = append(g.longWeekend, c)
		case constraints.KindRoleCooldown:
			g.roleCooldowns = append(g.roleCooldowns, c)
		case constraints.KindHistoricalRotation:
			g.historical = append(g.historical, c)
		case constraints.KindRoundRobinBalance:
			g.roundRobins = append(g.roundRobins, c)
		}
	}

	g.state = predicates.NewState()
	g.totalCounts = make(map[string]int)
	g.roleCounts = make(map[string]map[model.Role]int)
	g.tracked = make(map[string]int)

	g.previousPerson = make(map[string]string)
	if ctx.MinimizeChanges && ctx.Previous != nil {
		for _, a := range ctx.Previous.Assignments {
			if len(a.AssigneeIDs) > 0 {
				g.previousPerson[a.EventID] = a.AssigneeIDs[0]
			}
		}
	}

	return nil
}

// applyCooldownDefault fills in role_cooldown's Days from the organization's
// cooldown_days default wherever an instance carries params but leaves Days
// at its zero value. It copies rather than mutates cs or its pointed-to
// params, matching BuildModel's no-mutation contract for the caller's ctx.
func applyCooldownDefault(cs []constraints.Constraint, cooldownDays int) []constraints.Constraint {
	if cooldownDays <= 0 {
		return cs
	}
	out := append([]constraints.Constraint{}, cs...)
	for i, c := range out {
		if c.Kind == constraints.KindRoleCooldown && c.RoleCooldown != nil && c.RoleCooldown.Days == 0 {
			withDefault := *c.RoleCooldown
			withDefault.Days = cooldownDays
			out[i].RoleCooldown = &withDefault
		}
	}
	return out
}

// candidate is one eligible person for a single role slot, ranked by the
// priority key described in the greedy heuristic's reference semantics.
type candidate struct {
	person      model.Person
	changeMin   float64
	totalCount  int
	roleCount   int
	softPenalty float64
}

func lessCandidate(a, b candidate) bool {
	if a.changeMin != b.changeMin {
		return a.changeMin < b.changeMin
	}
	if a.totalCount != b.totalCount {
		return a.totalCount < b.totalCount
	}
	if a.roleCount != b.roleCount {
		return a.roleCount < b.roleCount
	}
	if a.softPenalty != b.softPenalty {
		return a.softPenalty < b.softPenalty
	}
	return a.person.ID < b.person.ID
}

// Solve runs the single-pass greedy search and returns a fully formed
// bundle. It never mutates the context used in BuildModel.
func (g *GreedyHeuristic) Solve() (model.SolutionBundle, error) {
	return g.SolveContext(context.Background())
}

// SolveContext is Solve with an explicit context for tracing.
func (g *GreedyHeuristic) SolveContext(ctx context.Context) (model.SolutionBundle, error) {
	tracer := otel.Tracer("github.com/shiftforge/roster/internal/solver")
	meter := telemetry.Meter("github.com/shiftforge/roster/internal/solver")
	durationHist, _ := meter.Float64Histogram("roster.solve.duration_ms")
	hardCounter, _ := meter.Int64Counter("roster.solve.hard_violations")

	ctx, span := tracer.Start(ctx, "solver.Solve")
	defer span.End()

	start := time.Now()

	assignments := make([]model.Assignment, 0, len(g.events))
	var unfilledHard []model.Violation

	for _, e := range g.events {
		if g.isBlockedByLongWeekend(e) {
			for _, rc := range e.Roles {
				for i := 0; i < rc.Count; i++ {
					unfilledHard = append(unfilledHard, model.Violation{
						ConstraintKey: "no_long_weekend_fri_mon",
						Severity:      model.SeverityHard,
						EventIDs:      []string{e.ID},
						Message:       fmt.Sprintf("event %s: blocked by long weekend, role %s unfilled", e.ID, rc.Role),
					})
				}
			}
			continue
		}

		assigned := make([]string, 0, e.TotalRequired())
		roles := make([]model.Role, 0, e.TotalRequired())
		alreadyOnEvent := make(map[string]bool)

		for _, rc := range e.Roles {
			need := rc.Count
			eligible := g.eligibleFor(e, rc.Role, alreadyOnEvent)
			sort.Slice(eligible, func(i, j int) bool { return lessCandidate(eligible[i], eligible[j]) })

			take := need
			if take > len(eligible) {
				take = len(eligible)
			}
			for i := 0; i < take; i++ {
				p := eligible[i].person
				assigned = append(assigned, p.ID)
				roles = append(roles, rc.Role)
				alreadyOnEvent[p.ID] = true
				g.commit(p, e, rc.Role)
			}
			for i := take; i < need; i++ {
				unfilledHard = append(unfilledHard, model.Violation{
					ConstraintKey: "require_role_coverage",
					Severity:      model.SeverityHard,
					EventIDs:      []string{e.ID},
					Message:       fmt.Sprintf("event %s: missing assignee for role %s", e.ID, rc.Role),
				})
			}
		}

		if len(assigned) > 0 {
			assignments = append(assignments, model.Assignment{
				EventID:     e.ID,
				EventType:   e.Type,
				Start:       e.Start,
				End:         e.End,
				Assignees:   g.namesFor(assigned),
				AssigneeIDs: assigned,
				ResourceID:  e.ResourceID,
				TeamIDs:     e.TeamIDs,
				Roles:       roles,
			})
		}
	}

	sort.Slice(assignments, func(i, j int) bool { return assignments[i].EventID < assignments[j].EventID })

	ev := evaluator.New(g.ctx.Constraints, g.ctx.Holidays, g.ctx.Availability, g.ctx.Organization.Region)
	if w := g.ctx.Organization.Defaults.FairnessWeight; w > 0 {
		ev.FairnessWeight = w
	}
	res := ev.Evaluate(g.events, g.people, assignments, g.ctx.HistoricalCounts)

	coverageKeys := make(map[string]bool)
	for _, c := range g.ctx.Constraints {
		if c.Kind == constraints.KindRequireRoleCoverage {
			coverageKeys[c.Key()] = true
		}
	}
	// The loop above already recorded one violation per unfilled slot, so
	// the evaluator's coverage findings for the same slots are not repeated.
	hard := append([]model.Violation{}, unfilledHard...)
	for _, v := range res.Hard {
		if !coverageKeys[v.ConstraintKey] {
			hard = append(hard, v)
		}
	}
	sort.Slice(hard, func(i, j int) bool {
		if hard[i].ConstraintKey != hard[j].ConstraintKey {
			return hard[i].ConstraintKey < hard[j].ConstraintKey
		}
		return firstOrEmpty(hard[i].EventIDs) < firstOrEmpty(hard[j].EventIDs)
	})

	solveMS := time.Since(start).Milliseconds()
	m := metrics.Compute(g.ctx.People, g.events, assignments, len(hard), res.SoftScore, solveMS)

	durationHist.Record(ctx, float64(solveMS))
	hardCounter.Add(ctx, int64(len(hard)))

	bundle := model.SolutionBundle{
		Meta: model.Meta{
			GeneratedAt: time.Now().UTC(),
			RangeStart:  g.ctx.RangeStart,
			RangeEnd:    g.ctx.RangeEnd,
			Mode:        g.ctx.Mode,
			Solver:      model.SolverInfo{Name: Name, Version: Version, Strategy: Strategy},
		},
		Assignments: assignments,
		Metrics:     m,
		Violations: model.ViolationSet{
			Hard: hard,
			Soft: res.Soft,
		},
	}
	return bundle, nil
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func (g *GreedyHeuristic) namesFor(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if p, ok := g.people[id]; ok {
			out[i] = p.Name
		}
	}
	return out
}

func (g *GreedyHeuristic) isBlockedByLongWeekend(e model.Event) bool {
	if len(g.longWeekend) == 0 {
		return false
	}
	for _, c := range g.longWeekend {
		region := g.ctx.Organization.Region
		if c.NoLongWeekend != nil && c.NoLongWeekend.Region != "" {
			region = c.NoLongWeekend.Region
		}
		if predicates.IsBlockedByLongWeekend(e, g.ctx.Holidays, region) {
			return true
		}
	}
	return false
}

func (g *GreedyHeuristic) eligibleFor(e model.Event, r model.Role, alreadyOnEvent map[string]bool) []candidate {
	var out []candidate
	for _, p := range g.ctx.People {
		if alreadyOnEvent[p.ID] {
			continue
		}
		if !predicates.HasRequiredRole(p, r) {
			continue
		}
		if g.noOverlap && !predicates.IsAvailable(p, e, g.ctx.Availability) {
			continue
		}
		if !g.respectsAllRestGaps(p, e) {
			continue
		}
		if !g.withinAllCaps(p, e) {
			continue
		}

		// changeMin is the previous-assignee bonus, weighted by the org's
		// change_min_weight: the previous assignee always keys 0 (most
		// preferred), everyone else keys the weight itself, so a weight of 0
		// collapses the tie-break to a no-op instead of merely shrinking it.
		var changeMin float64
		if g.ctx.MinimizeChanges && g.previousPerson[e.ID] != p.ID {
			changeMin = g.ctx.Organization.Defaults.ChangeMinWeight
		}

		out = append(out, candidate{
			person:      p,
			changeMin:   changeMin,
			totalCount:  g.totalCounts[p.ID],
			roleCount:   g.roleCounts[p.ID][r],
			softPenalty: g.localSoftPenalty(p, e, r),
		})
	}
	return out
}

func (g *GreedyHeuristic) respectsAllRestGaps(p model.Person, e model.Event) bool {
	for _, c := range g.minRestGaps {
		if c.MinRestGap == nil {
			continue
		}
		if !predicates.RespectsRestGap(p, e, g.state, c.MinRestGap.Hours) {
			return false
		}
	}
	return true
}

func (g *GreedyHeuristic) withinAllCaps(p model.Person, e model.Event) bool {
	for _, c := range g.caps {
		if c.CapPerPeriod == nil {
			continue
		}
		if !predicates.WithinCap(p, e, g.state, c.CapPerPeriod.N, c.CapPerPeriod.Period) {
			return false
		}
	}
	return true
}

// localSoftPenalty estimates the marginal soft penalty of assigning p to e
// in role r, against the current working state. It is a local simulation,
// not a full re-evaluation of the solution — used only to break ties among
// otherwise-equal candidates.
func (g *GreedyHeuristic) localSoftPenalty(p model.Person, e model.Event, r model.Role) float64 {
	var penalty float64

	for _, c := range g.roleCooldowns {
		if c.RoleCooldown == nil {
			continue
		}
		window := time.Duration(c.RoleCooldown.Days) * 24 * time.Hour
		for _, existing := range g.state.AssignedEvents(p.ID) {
			if existing.Start.Before(e.Start) {
				if e.Start.Sub(existing.End) <= window {
					penalty += c.Weight
				}
			} else if existing.Start.Sub(e.End) <= window {
				penalty += c.Weight
			}
		}
	}

	for _, c := range g.historical {
		if len(g.ctx.People) == 0 {
			continue
		}
		var sum float64
		for _, person := range g.ctx.People {
			sum += float64(g.ctx.HistoricalCounts[person.ID] + g.totalCounts[person.ID])
		}
		mean := sum / float64(len(g.ctx.People))
		projected := float64(g.ctx.HistoricalCounts[p.ID]+g.totalCounts[p.ID]) + 1
		fairnessWeight := g.ctx.Organization.Defaults.FairnessWeight
		if fairnessWeight <= 0 {
			fairnessWeight = 1.0
		}
		if deviation := projected - mean; deviation > 0 {
			penalty += c.Weight * fairnessWeight * deviation
		}
	}

	for _, c := range g.roundRobins {
		if c.RoundRobin == nil || len(c.RoundRobin.OrderedIDs) == 0 {
			continue
		}
		n := len(c.RoundRobin.OrderedIDs)
		pos := g.tracked[c.Key()] % n
		want := c.RoundRobin.OrderedIDs[pos]
		if want != p.ID {
			penalty += c.Weight
		}
	}

	return penalty
}

func (g *GreedyHeuristic) commit(p model.Person, e model.Event, r model.Role) {
	g.state.Assign(p.ID, e)
	g.totalCounts[p.ID]++
	if g.roleCounts[p.ID] == nil {
		g.roleCounts[p.ID] = make(map[model.Role]int)
	}
	g.roleCounts[p.ID][r]++
	for _, c := range g.roundRobins {
		if c.RoundRobin == nil {
			continue
		}
		for _, id := range c.RoundRobin.OrderedIDs {
			if id == p.ID {
				g.tracked[c.Key()]++
				break
			}
		}
	}
}
