package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiftforge/roster/internal/metrics"
	"github.com/shiftforge/roster/internal/model"
)

func TestPerPersonCounts_ExcludesUnassigned(t *testing.T) {
	assignments := []model.Assignment{
		{EventID: "e1", AssigneeIDs: []string{"p1", "p2"}},
		{EventID: "e2", AssigneeIDs: []string{"p1"}},
	}
	counts := metrics.PerPersonCounts(assignments)
	assert.Equal(t, map[string]int{"p1": 2, "p2": 1}, counts)
}

func TestEligiblePeople_OnlyThoseMatchingARequiredRole(t *testing.T) {
	people := []model.Person{
		{ID: "p1", Roles: []model.Role{"kitchen"}},
		{ID: "p2", Roles: []model.Role{"juggling"}},
	}
	events := []model.Event{{ID: "e1", Roles: model.RoleRequirement{{Role: "kitchen", Count: 1}}}}

	eligible := metrics.EligiblePeople(people, events)
	assert.Equal(t, []string{"p1"}, eligible)
}

func TestFairnessStdev_ZeroWhenBalanced(t *testing.T) {
	counts := map[string]int{"p1": 2, "p2": 2, "p3": 2}
	stdev := metrics.FairnessStdev(counts, []string{"p1", "p2", "p3"})
	assert.Equal(t, 0.0, stdev)
}

func TestFairnessStdev_EligibleButUnassignedCountsAsZero(t *testing.T) {
	counts := map[string]int{"p1": 4}
	stdev := metrics.FairnessStdev(counts, []string{"p1", "p2"})
	assert.Greater(t, stdev, 0.0)
}

func TestFairnessStdev_EmptyPopulation(t *testing.T) {
	assert.Equal(t, 0.0, metrics.FairnessStdev(nil, nil))
}

func TestHealthScore_PerfectIsOneHundred(t *testing.T) {
	assert.Equal(t, 100.0, metrics.HealthScore(0, 0))
}

func TestHealthScore_HardDominatesSoft(t *testing.T) {
	onlySoft := metrics.HealthScore(0, 10)
	onlyHard := metrics.HealthScore(1, 0)
	assert.Greater(t, onlySoft, onlyHard, "a single hard violation must cost more than a realistic soft score")
}

func TestHealthScore_ClampedToZero(t *testing.T) {
	assert.Equal(t, 0.0, metrics.HealthScore(100, 0))
}

func TestHealthScore_NeverExceedsOneHundred(t *testing.T) {
	// Negative inputs can't occur in practice, but the clamp is a hard
	// invariant: health_score never leaves [0, 100].
	assert.LessOrEqual(t, metrics.HealthScore(0, -100), 100.0)
}

func TestCompute_AssemblesMetrics(t *testing.T) {
	people := []model.Person{{ID: "p1", Roles: []model.Role{"kitchen"}}}
	events := []model.Event{{ID: "e1", Roles: model.RoleRequirement{{Role: "kitchen", Count: 1}}}}
	assignments := []model.Assignment{{EventID: "e1", AssigneeIDs: []string{"p1"}}}

	m := metrics.Compute(people, events, assignments, 0, 0, 12)
	assert.Equal(t, int64(12), m.SolveMS)
	assert.Equal(t, 0, m.HardViolations)
	assert.Equal(t, 100.0, m.HealthScore)
	assert.Equal(t, map[string]int{"p1": 1}, m.Fairness.PerPersonCounts)
}

func TestCompute_SolveTimeIsIndependentOfResult(t *testing.T) {
	start := time.Now()
	m := metrics.Compute(nil, nil, nil, 0, 0, time.Since(start).Milliseconds())
	assert.GreaterOrEqual(t, m.SolveMS, int64(0))
}
