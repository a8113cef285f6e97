package model

// Defaults holds the organization-wide tunables that the solver and
// evaluator consult when a constraint does not pin its own value.
//
// ChangeMinWeight and the per-constraint role_cooldown weight are
// independent knobs: a caller that wants change-minimization to dominate
// role-cooldown penalties must say so here explicitly. Neither field
// defaults from the other.
type Defaults struct {
	// ChangeMinWeight scales the priority-key bonus a greedy solve gives to
	// the person already assigned to an event in the previous snapshot, when
	// SolveContext.MinimizeChanges is true. Zero disables the bonus outright:
	// the previous assignee then ranks identically to everyone else.
	ChangeMinWeight float64 `json:"change_min_weight"`

	// FairnessWeight multiplies on top of historical_rotation's own Weight
	// when scoring deviation from the mean assignment count. Left at zero,
	// it has no override effect (the evaluator falls back to 1.0). Separate
	// from ChangeMinWeight — the two are never conflated.
	FairnessWeight float64 `json:"fairness_weight"`

	// CooldownDays is the organization-wide default for a role_cooldown
	// constraint instance whose params carry Days == 0; 0 means "no
	// default", and such an instance then fails validation instead.
	CooldownDays int `json:"cooldown_days"`
}

// Organization is the tenant an entire solve belongs to. Immutable for the
// duration of a solve.
type Organization struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Region   string   `json:"region"`   // used by no_long_weekend_fri_mon to pick a holiday set
	Timezone string   `json:"timezone"` // IANA zone, e.g. "America/Toronto"
	Defaults Defaults `json:"defaults"`
}
