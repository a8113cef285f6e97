package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/shiftforge/roster/internal/diff"
	"github.com/shiftforge/roster/internal/model"
	"github.com/shiftforge/roster/internal/solver"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcplib.NewTool("validate_context",
			mcplib.WithDescription(`Validate that an organization's scheduling data (people, events, teams,
resources, constraints, availability) is well-formed enough to attempt a
solve, without actually solving.

WHEN TO USE: before solve_roster, especially right after creating or
editing events/constraints/availability. Catches dangling id references,
malformed time windows, and unsatisfiable role requirements early, as a
ConfigurationError rather than a confusing solve failure.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithString("org_id", mcplib.Description("Organization id"), mcplib.Required()),
			mcplib.WithString("range_start", mcplib.Description("RFC3339 start of the event window"), mcplib.Required()),
			mcplib.WithString("range_end", mcplib.Description("RFC3339 end of the event window"), mcplib.Required()),
		),
		s.handleValidateContext,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("solve_roster",
			mcplib.WithDescription(`Run the scheduling solver over an organization's events in a date range
and return the resulting assignments, metrics, and violations.

WHEN TO USE: to generate or regenerate a roster. The result is persisted as
a solution snapshot and returned with an id; pass that id to diff_solutions
or explain_violation afterward.

mode="strict" requires the solver to report every unfilled required slot as
an explicit hard violation rather than silently under-covering. mode="relaxed"
(default) permits a solution with nonzero hard violations without further
reporting obligations.`),
			mcplib.WithDestructiveHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithString("org_id", mcplib.Description("Organization id"), mcplib.Required()),
			mcplib.WithString("range_start", mcplib.Description("RFC3339 start of the event window"), mcplib.Required()),
			mcplib.WithString("range_end", mcplib.Description("RFC3339 end of the event window"), mcplib.Required()),
			mcplib.WithString("mode", mcplib.Description(`"strict" or "relaxed" (default "relaxed")`)),
			mcplib.WithBoolean("minimize_changes", mcplib.Description("Prefer assignments matching the previous published solution, weighted by change_min_weight")),
		),
		s.handleSolveRoster,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("diff_solutions",
			mcplib.WithDescription(`Compare two persisted solutions structurally: which (event, person) pairs
were added or removed, which events changed, and which people were affected.

WHEN TO USE: after a re-solve, to see what actually moved before publishing
or notifying anyone — the diff is computed over assignment pairs, not a
textual diff of the JSON.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithString("org_id", mcplib.Description("Organization id"), mcplib.Required()),
			mcplib.WithString("old_solution_id", mcplib.Description("Solution snapshot id to diff from"), mcplib.Required()),
			mcplib.WithString("new_solution_id", mcplib.Description("Solution snapshot id to diff to"), mcplib.Required()),
		),
		s.handleDiffSolutions,
	)

	s.mcpServer.AddTool(
		mcplib.NewTool("explain_violation",
			mcplib.WithDescription(`Look up the violations a persisted solution reported, optionally filtered
by constraint key or event id, with their human-readable messages.

WHEN TO USE: when a solution has nonzero hard_violations or a nonzero
soft_score and you need to know exactly which constraint(s) fired and why,
rather than just the aggregate counts in metrics.`),
			mcplib.WithReadOnlyHintAnnotation(true),
			mcplib.WithIdempotentHintAnnotation(true),
			mcplib.WithString("org_id", mcplib.Description("Organization id"), mcplib.Required()),
			mcplib.WithString("solution_id", mcplib.Description("Solution snapshot id"), mcplib.Required()),
			mcplib.WithString("constraint_key", mcplib.Description("Optional: only violations from this constraint")),
			mcplib.WithString("event_id", mcplib.Description("Optional: only violations touching this event")),
		),
		s.handleExplainViolation,
	)
}

func parseRange(request mcplib.CallToolRequest) (time.Time, time.Time, error) {
	startStr := request.GetString("range_start", "")
	endStr := request.GetString("range_end", "")
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range_start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range_end: %w", err)
	}
	return start, end, nil
}

func (s *Server) handleValidateContext(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	orgID := request.GetString("org_id", "")
	if orgID == "" {
		return errorResult("org_id is required"), nil
	}
	start, end, err := parseRange(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	sc, err := s.db.LoadSolveContext(ctx, orgID, start, end, model.ModeRelaxed)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to load context: %v", err)), nil
	}

	if err := sc.Validate(); err != nil {
		return toolJSON(map[string]any{
			"valid": false,
			"error": err.Error(),
		})
	}

	return toolJSON(map[string]any{
		"valid":        true,
		"people":       len(sc.People),
		"events":       len(sc.Events),
		"constraints":  len(sc.Constraints),
		"availability": len(sc.Availability),
	})
}

func (s *Server) handleSolveRoster(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	orgID := request.GetString("org_id", "")
	if orgID == "" {
		return errorResult("org_id is required"), nil
	}
	start, end, err := parseRange(request)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	mode := model.ModeRelaxed
	if request.GetString("mode", "") == string(model.ModeStrict) {
		mode = model.ModeStrict
	}

	sc, err := s.db.LoadSolveContext(ctx, orgID, start, end, mode)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to load context: %v", err)), nil
	}

	if request.GetBool("minimize_changes", false) {
		if rec, ok, lookupErr := s.db.LatestSolution(ctx, orgID); lookupErr == nil && ok {
			sc.MinimizeChanges = true
			prev := rec.Bundle
			sc.Previous = &prev
		}
	}

	g := solver.NewGreedyHeuristic()
	if err := g.BuildModel(sc); err != nil {
		return errorResult(fmt.Sprintf("invalid context: %v", err)), nil
	}
	bundle, err := g.SolveContext(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("solve failed: %v", err)), nil
	}

	id, err := s.db.PutSolution(ctx, orgID, bundle)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to persist solution: %v", err)), nil
	}

	return toolJSON(map[string]any{
		"solution_id": id,
		"metrics":     bundle.Metrics,
		"violations":  bundle.Violations,
		"assignments": len(bundle.Assignments),
	})
}

func (s *Server) handleDiffSolutions(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	orgID := request.GetString("org_id", "")
	if orgID == "" {
		return errorResult("org_id is required"), nil
	}
	oldID, err := uuid.Parse(request.GetString("old_solution_id", ""))
	if err != nil {
		return errorResult("invalid old_solution_id"), nil
	}
	newID, err := uuid.Parse(request.GetString("new_solution_id", ""))
	if err != nil {
		return errorResult("invalid new_solution_id"), nil
	}

	oldRec, err := s.db.GetSolution(ctx, orgID, oldID)
	if err != nil {
		return errorResult(fmt.Sprintf("old_solution_id: %v", err)), nil
	}
	newRec, err := s.db.GetSolution(ctx, orgID, newID)
	if err != nil {
		return errorResult(fmt.Sprintf("new_solution_id: %v", err)), nil
	}

	result := diff.Compute(oldRec.Bundle, newRec.Bundle)
	return toolJSON(result)
}

func (s *Server) handleExplainViolation(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	orgID := request.GetString("org_id", "")
	if orgID == "" {
		return errorResult("org_id is required"), nil
	}
	solID, err := uuid.Parse(request.GetString("solution_id", ""))
	if err != nil {
		return errorResult("invalid solution_id"), nil
	}

	rec, err := s.db.GetSolution(ctx, orgID, solID)
	if err != nil {
		return errorResult(fmt.Sprintf("solution_id: %v", err)), nil
	}

	constraintKey := request.GetString("constraint_key", "")
	eventID := request.GetString("event_id", "")

	matches := func(v model.Violation) bool {
		if constraintKey != "" && v.ConstraintKey != constraintKey {
			return false
		}
		if eventID != "" && !containsString(v.EventIDs, eventID) {
			return false
		}
		return true
	}

	var hard, soft []model.Violation
	for _, v := range rec.Bundle.Violations.Hard {
		if matches(v) {
			hard = append(hard, v)
		}
	}
	for _, v := range rec.Bundle.Violations.Soft {
		if matches(v) {
			soft = append(soft, v)
		}
	}

	return toolJSON(map[string]any{
		"hard":  hard,
		"soft":  soft,
		"total": len(hard) + len(soft),
	})
}

func containsString(ss []string, target string) bool {
	for _, s := range ss {
		if s == target {
			return true
		}
	}
	return false
}

func toolJSON(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}
