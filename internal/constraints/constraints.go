// Package constraints defines the closed constraint DSL: eight built-in
// constraint kinds, their severity and weight, and kind-specific parameters.
// Adding a ninth kind is a code change, not a data change — Constraint is a
// closed tagged record, not an extensible plugin point.
package constraints

import "fmt"

// Severity classifies a constraint as structurally required (hard) or
// merely penalized (soft). Duplicated from internal/model rather than
// imported from it: internal/model.SolveContext holds a []Constraint, so
// the dependency runs model → constraints, never the reverse.
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// Kind names one of the eight built-in constraint kinds. The set is closed.
type Kind string

const (
	KindRequireRoleCoverage Kind = "require_role_coverage"
	KindMinRestGapHours     Kind = "min_rest_gap_hours"
	KindCapPerPeriod        Kind = "cap_per_period"
	KindNoLongWeekendFriMon Kind = "no_long_weekend_fri_mon"
	KindNoOverlapExternal   Kind = "no_overlap_external"
	KindRoleCooldown        Kind = "role_cooldown"
	KindHistoricalRotation  Kind = "historical_rotation"
	KindRoundRobinBalance   Kind = "round_robin_balance"
)

var allKinds = map[Kind]Severity{
	KindRequireRoleCoverage: SeverityHard,
	KindMinRestGapHours:     SeverityHard,
	KindCapPerPeriod:        SeverityHard,
	KindNoLongWeekendFriMon: SeverityHard,
	KindNoOverlapExternal:   SeverityHard,
	KindRoleCooldown:        SeveritySoft,
	KindHistoricalRotation:  SeveritySoft,
	KindRoundRobinBalance:   SeveritySoft,
}

// Constraint is a single tagged record in the DSL: a stable key for
// violation reporting, the kind that determines its semantics, a severity,
// a weight (soft constraints score by it; hard constraints may carry one
// for tie-breaking but it never enters the soft score), and exactly one
// populated kind-specific parameter field.
type Constraint struct {
	KeyValue string   `json:"key"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Weight   float64  `json:"weight,omitempty"`

	MinRestGap         *MinRestGapParams         `json:"min_rest_gap,omitempty"`
	CapPerPeriod       *CapPerPeriodParams       `json:"cap_per_period,omitempty"`
	NoLongWeekend      *NoLongWeekendParams      `json:"no_long_weekend,omitempty"`
	RoleCooldown       *RoleCooldownParams       `json:"role_cooldown,omitempty"`
	HistoricalRotation *HistoricalRotationParams `json:"historical_rotation,omitempty"`
	RoundRobin         *RoundRobinParams         `json:"round_robin,omitempty"`
}

// Key returns the constraint's stable reporting identifier.
func (c Constraint) Key() string { return c.KeyValue }

// NewConstraint builds a Constraint with its severity defaulted from Kind
// and its weight defaulted to 1.0 for soft constraints.
func NewConstraint(key string, kind Kind) Constraint {
	sev, ok := allKinds[kind]
	if !ok {
		sev = SeverityHard
	}
	c := Constraint{KeyValue: key, Kind: kind, Severity: sev}
	if sev == SeveritySoft {
		c.Weight = 1.0
	}
	return c
}

// Validate checks that the constraint carries exactly the parameter
// struct its Kind requires, that the parameter values are internally
// consistent, and that its key is non-empty.
func (c Constraint) Validate() error {
	if c.KeyValue == "" {
		return fmt.Errorf("constraints: empty key")
	}
	want, ok := allKinds[c.Kind]
	if !ok {
		return fmt.Errorf("constraints: unknown kind %q", c.Kind)
	}
	if c.Severity != want {
		return fmt.Errorf("constraints: kind %q must have severity %q, got %q", c.Kind, want, c.Severity)
	}

	switch c.Kind {
	case KindRequireRoleCoverage, KindNoOverlapExternal:
		// No kind-specific parameters: coverage counts come from the event
		// itself, and time-off eligibility comes from availability records.
	case KindMinRestGapHours:
		if c.MinRestGap == nil {
			return fmt.Errorf("constraints: %s requires min_rest_gap params", c.Kind)
		}
		if c.MinRestGap.Hours <= 0 {
			return fmt.Errorf("constraints: %s: hours must be > 0", c.Kind)
		}
	case KindCapPerPeriod:
		if c.CapPerPeriod == nil {
			return fmt.Errorf("constraints: %s requires cap_per_period params", c.Kind)
		}
		if err := c.CapPerPeriod.Validate(); err != nil {
			return fmt.Errorf("constraints: %s: %w", c.Kind, err)
		}
	case KindNoLongWeekendFriMon:
		if c.NoLongWeekend == nil {
			c.NoLongWeekend = &NoLongWeekendParams{}
		}
	case KindRoleCooldown:
		if c.RoleCooldown == nil {
			return fmt.Errorf("constraints: %s requires role_cooldown params", c.Kind)
		}
		if c.RoleCooldown.Days <= 0 {
			return fmt.Errorf("constraints: %s: days must be > 0", c.Kind)
		}
	case KindHistoricalRotation:
		// HistoricalRotation has no required parameters beyond weight; the
		// prior-count anchor comes from the context, not the constraint.
	case KindRoundRobinBalance:
		if c.RoundRobin == nil || len(c.RoundRobin.OrderedIDs) == 0 {
			return fmt.Errorf("constraints: %s requires a non-empty round robin ordering", c.Kind)
		}
	}

	if c.Severity == SeveritySoft && c.Weight <= 0 {
		return fmt.Errorf("constraints: %s: soft constraint weight must be > 0", c.Kind)
	}
	return nil
}
