// Package batch runs independent solves concurrently. Each SolveContext is
// read-only and self-contained, so different solves may run in parallel
// goroutines without sharing state.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shiftforge/roster/internal/model"
	"github.com/shiftforge/roster/internal/solver"
)

// Request pairs a SolveContext with a caller-chosen label used to route the
// matching Result back.
type Request struct {
	Label string
	Ctx   model.SolveContext
}

// Result is one request's outcome: exactly one of Bundle or Err is set.
type Result struct {
	Label  string
	Bundle model.SolutionBundle
	Err    error
}

// Run solves every request concurrently, bounded by workers (default 4 if
// <= 0), and returns one Result per request in input order. A failure in
// one request never aborts the others — each Result carries its own error.
func Run(ctx context.Context, requests []Request, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 4
	}
	results := make([]Result, len(requests))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range requests {
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				results[i] = Result{Label: req.Label, Err: gCtx.Err()}
				return gCtx.Err()
			default:
			}
			s := solver.NewGreedyHeuristic()
			if err := s.BuildModel(req.Ctx); err != nil {
				results[i] = Result{Label: req.Label, Err: fmt.Errorf("batch: build model for %q: %w", req.Label, err)}
				return nil
			}
			bundle, err := s.SolveContext(gCtx)
			if err != nil {
				results[i] = Result{Label: req.Label, Err: fmt.Errorf("batch: solve %q: %w", req.Label, err)}
				return nil
			}
			results[i] = Result{Label: req.Label, Bundle: bundle}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
