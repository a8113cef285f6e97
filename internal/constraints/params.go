package constraints

import "fmt"

// MinRestGapParams parameterizes min_rest_gap_hours: the minimum gap, in
// hours, required between the end of one event and the start of the next
// for any person assigned to both.
type MinRestGapParams struct {
	Hours int `json:"hours"`
}

// CalendarUnit names a fixed calendar-aligned period.
type CalendarUnit string

const (
	CalendarWeek  CalendarUnit = "week"
	CalendarMonth CalendarUnit = "month"
)

// CalendarPeriod is a fixed calendar-aligned window, e.g. "this month".
type CalendarPeriod struct {
	Unit CalendarUnit `json:"unit"`
}

// RollingPeriod is a trailing window of a fixed number of days, measured
// back from each candidate event's start.
type RollingPeriod struct {
	Days int `json:"days"`
}

// Period is cap_per_period's window, resolved as exactly one of a fixed
// calendar period or a rolling day count.
type Period struct {
	Calendar *CalendarPeriod `json:"calendar,omitempty"`
	Rolling  *RollingPeriod  `json:"rolling,omitempty"`
}

// Validate reports whether exactly one of Calendar or Rolling is set and
// internally well-formed.
func (p Period) Validate() error {
	if p.Calendar != nil && p.Rolling != nil {
		return fmt.Errorf("period: exactly one of calendar or rolling may be set, got both")
	}
	switch {
	case p.Calendar != nil:
		if p.Calendar.Unit != CalendarWeek && p.Calendar.Unit != CalendarMonth {
			return fmt.Errorf("period: unknown calendar unit %q", p.Calendar.Unit)
		}
	case p.Rolling != nil:
		if p.Rolling.Days <= 0 {
			return fmt.Errorf("period: rolling days must be > 0")
		}
	default:
		return fmt.Errorf("period: exactly one of calendar or rolling must be set, got neither")
	}
	return nil
}

// CapPerPeriodParams parameterizes cap_per_period: no person may accrue
// more than N assignments within the window described by Period.
type CapPerPeriodParams struct {
	N      int    `json:"n"`
	Period Period `json:"period"`
}

// Validate reports whether N is positive and Period is well-formed.
func (c CapPerPeriodParams) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("n must be > 0")
	}
	return c.Period.Validate()
}

// NoLongWeekendParams parameterizes no_long_weekend_fri_mon. Region is
// optional; an empty region matches any holiday region.
type NoLongWeekendParams struct {
	Region string `json:"region,omitempty"`
}

// RoleCooldownParams parameterizes role_cooldown: assigning the same
// person to the same role twice within Days accrues a penalty per extra
// occurrence, at the constraint's own Weight (kept independent of the
// organization's change_min_weight). Days left at 0 is filled in from the
// organization's cooldown_days default at solve time; if no default exists
// either, the constraint fails validation.
type RoleCooldownParams struct {
	Days int `json:"days"`
}

// HistoricalRotationParams carries no required fields; the rotation
// penalty is computed from the context's historical counts, the
// constraint's own Weight, and the organization's fairness_weight.
type HistoricalRotationParams struct{}

// RoundRobinParams parameterizes round_robin_balance: OrderedIDs is the
// declared rotation order. Each entry is compared against the person ids
// assigned to an event; a team id is not expanded to the team's members,
// so it matches only an assignee whose person id equals it.
type RoundRobinParams struct {
	OrderedIDs []string `json:"ordered_ids"`
}
