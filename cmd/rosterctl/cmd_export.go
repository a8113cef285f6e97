package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiftforge/roster/internal/export"
)

func newExportCmd() *cobra.Command {
	var in, out, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a SolutionBundle file as json, csv, or ics",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := readBundle(in)
			if err != nil {
				return err
			}

			f, closeF, err := openOutput(out)
			if err != nil {
				return err
			}
			defer closeF()

			switch format {
			case "json":
				return export.JSON(f, bundle)
			case "csv":
				return export.CSV(f, bundle)
			case "ics":
				return export.ICS(f, bundle)
			default:
				return fmt.Errorf("rosterctl: unknown format %q (want json, csv, or ics)", format)
			}
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "path to a SolutionBundle JSON file (required)")
	cmd.Flags().StringVar(&out, "out", "-", "path to write the rendered output (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, csv, or ics")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
