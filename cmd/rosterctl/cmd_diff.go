package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiftforge/roster/internal/diff"
)

func newDiffCmd() *cobra.Command {
	var oldPath, newPath, out string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Structurally diff two SolutionBundle files",
		RunE: func(cmd *cobra.Command, args []string) error {
			oldBundle, err := readBundle(oldPath)
			if err != nil {
				return err
			}
			newBundle, err := readBundle(newPath)
			if err != nil {
				return err
			}

			result := diff.Compute(oldBundle, newBundle)

			f, closeF, err := openOutput(out)
			if err != nil {
				return err
			}
			defer closeF()

			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("rosterctl: encode diff: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&oldPath, "old", "", "path to the prior SolutionBundle JSON (required)")
	cmd.Flags().StringVar(&newPath, "new", "", "path to the new SolutionBundle JSON (required)")
	cmd.Flags().StringVar(&out, "out", "-", "path to write the diff JSON (default: stdout)")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
