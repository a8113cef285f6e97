package evaluator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftforge/roster/internal/constraints"
	"github.com/shiftforge/roster/internal/evaluator"
	"github.com/shiftforge/roster/internal/model"
)

func mkEvent(id string, start time.Time, dur time.Duration, roles model.RoleRequirement) model.Event {
	return model.Event{ID: id, Start: start, End: start.Add(dur), Roles: roles}
}

func TestEvaluate_RoleCoverage_OneViolationPerMissingSlot(t *testing.T) {
	e1 := mkEvent("e1", time.Date(2025, 9, 7, 9, 0, 0, 0, time.UTC), 3*time.Hour,
		model.RoleRequirement{{Role: "kitchen", Count: 2}, {Role: "av_tech", Count: 1}})

	assignment := model.Assignment{
		EventID:     "e1",
		AssigneeIDs: []string{"p1"},
		Roles:       []model.Role{"kitchen"},
	}

	c := constraints.NewConstraint("coverage", constraints.KindRequireRoleCoverage)
	ev := evaluator.New([]constraints.Constraint{c}, nil, nil, "")
	res := ev.Evaluate([]model.Event{e1}, map[string]model.Person{}, []model.Assignment{assignment}, nil)

	require.Len(t, res.Hard, 2)
	for _, v := range res.Hard {
		assert.Equal(t, "coverage", v.ConstraintKey)
		assert.Equal(t, model.SeverityHard, v.Severity)
		assert.Equal(t, []string{"e1"}, v.EventIDs)
	}
}

func TestEvaluate_NoOverlapExternal(t *testing.T) {
	e1 := mkEvent("e1", time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC), 3*time.Hour, nil)
	assignment := model.Assignment{EventID: "e1", AssigneeIDs: []string{"p1"}, Roles: []model.Role{"kitchen"}}
	availability := []model.Availability{{
		PersonID:  "p1",
		StartDate: time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
	}}

	c := constraints.NewConstraint("no-overlap", constraints.KindNoOverlapExternal)
	ev := evaluator.New([]constraints.Constraint{c}, nil, availability, "")
	res := ev.Evaluate([]model.Event{e1}, nil, []model.Assignment{assignment}, nil)

	require.Len(t, res.Hard, 1)
	assert.Equal(t, []string{"p1"}, res.Hard[0].PersonIDs)
}

func TestEvaluate_MinRestGap(t *testing.T) {
	e1 := mkEvent("e1", time.Date(2025, 9, 7, 9, 0, 0, 0, time.UTC), 3*time.Hour, nil)
	e2 := mkEvent("e2", e1.Start.Add(10*time.Hour), time.Hour, nil) // 7h gap from e1's end

	assignments := []model.Assignment{
		{EventID: "e1", AssigneeIDs: []string{"p1"}, Roles: []model.Role{"kitchen"}},
		{EventID: "e2", AssigneeIDs: []string{"p1"}, Roles: []model.Role{"kitchen"}},
	}

	c := constraints.NewConstraint("rest", constraints.KindMinRestGapHours)
	c.MinRestGap = &constraints.MinRestGapParams{Hours: 12}
	ev := evaluator.New([]constraints.Constraint{c}, nil, nil, "")
	res := ev.Evaluate([]model.Event{e1, e2}, nil, assignments, nil)

	require.Len(t, res.Hard, 1)
	assert.Equal(t, []string{"p1"}, res.Hard[0].PersonIDs)
}

func TestEvaluate_CapPerPeriod(t *testing.T) {
	var events []model.Event
	var assignments []model.Assignment
	base := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := "e" + string(rune('a'+i))
		e := mkEvent(id, base.Add(time.Duration(i)*24*time.Hour), time.Hour, nil)
		events = append(events, e)
		assignments = append(assignments, model.Assignment{EventID: id, AssigneeIDs: []string{"p1"}, Roles: []model.Role{"kitchen"}})
	}

	c := constraints.NewConstraint("cap", constraints.KindCapPerPeriod)
	c.CapPerPeriod = &constraints.CapPerPeriodParams{N: 4, Period: constraints.Period{Rolling: &constraints.RollingPeriod{Days: 30}}}
	ev := evaluator.New([]constraints.Constraint{c}, nil, nil, "")
	res := ev.Evaluate(events, nil, assignments, nil)

	// 5 assignments within the same 30-day rolling window, cap 4: every
	// event at or beyond the 5th occurrence reports an over-cap violation.
	assert.NotEmpty(t, res.Hard)
}

func TestEvaluate_NoLongWeekend(t *testing.T) {
	e1 := mkEvent("e1", time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC), time.Hour, nil)
	holidays := []model.Holiday{{
		Name: "Labour Day", Region: "CA-ON",
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}}
	assignment := model.Assignment{EventID: "e1", AssigneeIDs: []string{"p1"}, Roles: []model.Role{"kitchen"}}

	c := constraints.NewConstraint("long-weekend", constraints.KindNoLongWeekendFriMon)
	ev := evaluator.New([]constraints.Constraint{c}, holidays, nil, "CA-ON")
	res := ev.Evaluate([]model.Event{e1}, nil, []model.Assignment{assignment}, nil)

	require.Len(t, res.Hard, 1)
	assert.Equal(t, "long-weekend", res.Hard[0].ConstraintKey)
}

func TestEvaluate_RoleCooldown_Soft(t *testing.T) {
	e1 := mkEvent("e1", time.Date(2025, 9, 7, 9, 0, 0, 0, time.UTC), time.Hour, nil)
	e2 := mkEvent("e2", time.Date(2025, 9, 14, 9, 0, 0, 0, time.UTC), time.Hour, nil)

	assignments := []model.Assignment{
		{EventID: "e1", AssigneeIDs: []string{"p1"}, Roles: []model.Role{"kitchen"}},
		{EventID: "e2", AssigneeIDs: []string{"p1"}, Roles: []model.Role{"kitchen"}},
	}

	c := constraints.NewConstraint("cooldown", constraints.KindRoleCooldown)
	c.RoleCooldown = &constraints.RoleCooldownParams{Days: 14}
	c.Weight = 20

	ev := evaluator.New([]constraints.Constraint{c}, nil, nil, "")
	res := ev.Evaluate([]model.Event{e1, e2}, nil, assignments, nil)

	require.Len(t, res.Soft, 1)
	assert.Equal(t, 20.0, res.SoftScore)
	assert.Equal(t, model.SeveritySoft, res.Soft[0].Severity)
}

func TestEvaluate_HistoricalRotation_PenalizesAboveMean(t *testing.T) {
	people := map[string]model.Person{
		"p1": {ID: "p1"}, "p2": {ID: "p2"},
	}
	assignments := []model.Assignment{
		{EventID: "e1", AssigneeIDs: []string{"p1"}}, {EventID: "e2", AssigneeIDs: []string{"p1"}},
		{EventID: "e3", AssigneeIDs: []string{"p1"}}, {EventID: "e4", AssigneeIDs: []string{"p2"}},
	}

	c := constraints.NewConstraint("rotation", constraints.KindHistoricalRotation)
	c.Weight = 1.0
	ev := evaluator.New([]constraints.Constraint{c}, nil, nil, "")
	res := ev.Evaluate(nil, people, assignments, nil)

	require.Len(t, res.Soft, 1)
	assert.Equal(t, []string{"p1"}, res.Soft[0].PersonIDs)
	assert.Greater(t, res.SoftScore, 0.0)
}

func TestEvaluate_RoundRobinBalance(t *testing.T) {
	assignments := []model.Assignment{
		{EventID: "e1", AssigneeIDs: []string{"team-b"}},
		{EventID: "e2", AssigneeIDs: []string{"team-b"}},
	}

	c := constraints.NewConstraint("rotation", constraints.KindRoundRobinBalance)
	c.RoundRobin = &constraints.RoundRobinParams{OrderedIDs: []string{"team-a", "team-b"}}
	c.Weight = 5

	ev := evaluator.New([]constraints.Constraint{c}, nil, nil, "")
	res := ev.Evaluate(nil, nil, assignments, nil)

	// e1 wanted team-a (position 0) but got team-b: one violation. e2 wanted
	// team-b (position 1) and got it: no violation.
	require.Len(t, res.Soft, 1)
	assert.Equal(t, []string{"e1"}, res.Soft[0].EventIDs)
	assert.Equal(t, 5.0, res.SoftScore)
}

func TestEvaluate_Deterministic(t *testing.T) {
	e1 := mkEvent("e1", time.Date(2025, 9, 7, 9, 0, 0, 0, time.UTC), time.Hour,
		model.RoleRequirement{{Role: "kitchen", Count: 1}})
	assignment := model.Assignment{EventID: "e1", AssigneeIDs: []string{"p1"}, Roles: []model.Role{"reception"}}

	c := constraints.NewConstraint("coverage", constraints.KindRequireRoleCoverage)
	ev := evaluator.New([]constraints.Constraint{c}, nil, nil, "")

	first := ev.Evaluate([]model.Event{e1}, nil, []model.Assignment{assignment}, nil)
	second := ev.Evaluate([]model.Event{e1}, nil, []model.Assignment{assignment}, nil)
	assert.Equal(t, first, second)
}
