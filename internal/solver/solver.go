// Package solver defines the pluggable solving contract and the greedy
// heuristic reference implementation.
package solver

import "github.com/shiftforge/roster/internal/model"

// Solver is the strategy-agnostic contract every scheduling strategy
// implements. BuildModel is called once per solve and must not mutate the
// context; Solve then runs the strategy and returns a fully formed bundle.
// A future CP-SAT-style optimizer can implement this interface without
// touching callers or the evaluator.
type Solver interface {
	BuildModel(ctx model.SolveContext) error
	Solve() (model.SolutionBundle, error)
}
