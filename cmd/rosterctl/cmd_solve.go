package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiftforge/roster/internal/solver"
)

func newSolveCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run the greedy heuristic solver over a SolveContext file and print the resulting SolutionBundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := readContext(in)
			if err != nil {
				return err
			}

			s := solver.NewGreedyHeuristic()
			if err := s.BuildModel(ctx); err != nil {
				return fmt.Errorf("rosterctl: %w", err)
			}
			bundle, err := s.Solve()
			if err != nil {
				return fmt.Errorf("rosterctl: solve: %w", err)
			}

			f, closeF, err := openOutput(out)
			if err != nil {
				return err
			}
			defer closeF()

			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			return enc.Encode(bundle)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "path to a SolveContext JSON file (required)")
	cmd.Flags().StringVar(&out, "out", "-", "path to write the SolutionBundle JSON (default: stdout)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
