package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a SolveContext file for semantic validation errors without solving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := readContext(in)
			if err != nil {
				return err
			}
			if err := ctx.Validate(); err != nil {
				return fmt.Errorf("rosterctl: invalid context: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "path to a SolveContext JSON file (required)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
