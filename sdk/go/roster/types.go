package roster

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects how strictly a solve treats constraints marked soft-eligible
// by their own definition.
type Mode string

const (
	ModeStrict  Mode = "strict"
	ModeRelaxed Mode = "relaxed"
)

// Severity classifies a Violation as hard (the assignment is invalid) or
// soft (the assignment is valid but penalized).
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// Assignment is one event's resolved staffing in a solution.
type Assignment struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Assignees   []string  `json:"assignees"`
	AssigneeIDs []string  `json:"assignee_ids"`
	ResourceID  string    `json:"resource_id,omitempty"`
	TeamIDs     []string  `json:"team_ids,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
}

// Violation is one constraint firing against a solution.
type Violation struct {
	ConstraintKey string   `json:"constraint_key"`
	Severity      Severity `json:"severity"`
	EventIDs      []string `json:"event_ids,omitempty"`
	PersonIDs     []string `json:"person_ids,omitempty"`
	Message       string   `json:"message"`
	Weight        float64  `json:"weight,omitempty"`
}

// ViolationSet splits a solution's violations by severity.
type ViolationSet struct {
	Hard []Violation `json:"hard"`
	Soft []Violation `json:"soft"`
}

// Fairness summarizes how evenly a solution spread assignments across people.
type Fairness struct {
	Stdev           float64        `json:"stdev"`
	PerPersonCounts map[string]int `json:"per_person_counts"`
}

// SolverInfo identifies which strategy produced a SolutionBundle.
type SolverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Metrics is the quantitative summary of a solve.
type Metrics struct {
	SolveMS        int64    `json:"solve_ms"`
	HardViolations int      `json:"hard_violations"`
	SoftScore      float64  `json:"soft_score"`
	Fairness       Fairness `json:"fairness"`
	HealthScore    float64  `json:"health_score"`
}

// Meta is a solution's provenance: what range and mode produced it, and when.
type Meta struct {
	GeneratedAt time.Time  `json:"generated_at"`
	RangeStart  time.Time  `json:"range_start"`
	RangeEnd    time.Time  `json:"range_end"`
	Mode        Mode       `json:"mode"`
	Solver      SolverInfo `json:"solver"`
}

// SolutionBundle is the complete output of a solve.
type SolutionBundle struct {
	Meta        Meta         `json:"meta"`
	Assignments []Assignment `json:"assignments"`
	Metrics     Metrics      `json:"metrics"`
	Violations  ViolationSet `json:"violations"`
}

// Solution is a persisted SolutionBundle with its storage identity.
type Solution struct {
	ID        uuid.UUID      `json:"id"`
	OrgID     string         `json:"org_id"`
	Bundle    SolutionBundle `json:"bundle"`
	CreatedAt time.Time      `json:"created_at"`
}

// SolveRequest holds the fields of a POST /v1/solve request. RangeStart and
// RangeEnd are left out of its JSON encoding.
type SolveRequest struct {
	OrgID           string    `json:"org_id"`
	RangeStart      time.Time `json:"-"`
	RangeEnd        time.Time `json:"-"`
	Mode            Mode      `json:"mode,omitempty"`
	MinimizeChanges bool      `json:"minimize_changes,omitempty"`
}

// SolveResponse is the data of a POST /v1/solve response.
type SolveResponse struct {
	SolutionID uuid.UUID      `json:"solution_id"`
	Bundle     SolutionBundle `json:"bundle"`
}

// DiffPair identifies one (event, person) assignment.
type DiffPair struct {
	EventID  string `json:"event_id"`
	PersonID string `json:"person_id"`
}

// DiffResult is the structural difference between two solutions.
type DiffResult struct {
	Added           []DiffPair `json:"added"`
	Removed         []DiffPair `json:"removed"`
	ChangedEventIDs []string   `json:"changed_event_ids"`
	AffectedPersons []string   `json:"affected_persons"`
	TotalChanges    int        `json:"total_changes"`
}

// ExportFormat names an export rendering: the {format} segment of
// GET /v1/solutions/{id}/export/{format}.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportICS  ExportFormat = "ics"
)

// HealthResponse is the data of a GET /health response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
