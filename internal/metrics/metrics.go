// Package metrics computes the fairness and health figures attached to
// every SolutionBundle: per-person counts, population standard deviation
// over eligible people, soft score, and the 0-100 health score.
package metrics

import (
	"math"
	"sort"

	"github.com/shiftforge/roster/internal/model"
)

// Coefficients for the health score formula. A single hard violation must
// dominate any realistic soft penalty, hence Hp far outweighing Sp.
const (
	HardPenaltyCoefficient = 25.0
	SoftPenaltyCoefficient = 0.5
)

// PerPersonCounts tallies assignments per person from a completed
// assignment list. People never assigned do not appear, matching the
// per-person count map invariant.
func PerPersonCounts(assignments []model.Assignment) map[string]int {
	counts := make(map[string]int)
	for _, a := range assignments {
		for _, pid := range a.AssigneeIDs {
			counts[pid]++
		}
	}
	return counts
}

// EligiblePeople returns the ids of people who could have been assigned at
// least once: those holding at least one role required by at least one
// event in range. People structurally ineligible for every event are
// excluded from the fairness population.
func EligiblePeople(people []model.Person, events []model.Event) []string {
	requiredRoles := make(map[model.Role]struct{})
	for _, e := range events {
		for _, rc := range e.Roles {
			requiredRoles[rc.Role] = struct{}{}
		}
	}
	var eligible []string
	for _, p := range people {
		for _, r := range p.Roles {
			if _, ok := requiredRoles[r]; ok {
				eligible = append(eligible, p.ID)
				break
			}
		}
	}
	sort.Strings(eligible)
	return eligible
}

// FairnessStdev computes the population standard deviation of per-person
// assignment counts over the eligible population. People eligible but
// never assigned count as zero.
func FairnessStdev(counts map[string]int, eligible []string) float64 {
	if len(eligible) == 0 {
		return 0
	}
	var sum float64
	for _, pid := range eligible {
		sum += float64(counts[pid])
	}
	mean := sum / float64(len(eligible))

	var variance float64
	for _, pid := range eligible {
		d := float64(counts[pid]) - mean
		variance += d * d
	}
	variance /= float64(len(eligible))
	return math.Sqrt(variance)
}

// HealthScore implements clamp(100 - Hp*H - Sp*S, 0, 100): zero hard
// violations and zero soft score always score exactly 100.
func HealthScore(hardViolations int, softScore float64) float64 {
	score := 100.0 - HardPenaltyCoefficient*float64(hardViolations) - SoftPenaltyCoefficient*softScore
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Compute assembles the full Metrics value for a completed solve.
func Compute(people []model.Person, events []model.Event, assignments []model.Assignment, hardViolations int, softScore float64, solveMS int64) model.Metrics {
	counts := PerPersonCounts(assignments)
	eligible := EligiblePeople(people, events)
	stdev := FairnessStdev(counts, eligible)
	return model.Metrics{
		SolveMS:        solveMS,
		HardViolations: hardViolations,
		SoftScore:      softScore,
		Fairness: model.Fairness{
			Stdev:           stdev,
			PerPersonCounts: counts,
		},
		HealthScore: HealthScore(hardViolations, softScore),
	}
}
