// Command rosterctl is the offline counterpart to rosterd: it solves,
// validates, diffs, and exports SolutionBundles against JSON context/bundle
// files on disk, without a server or a database. Useful for CI checks,
// local experimentation, and scripting.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags, matching cmd/rosterd.
var version = "dev"

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Solve, validate, diff, and export roster SolutionBundles offline",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newSolveCmd(),
		newValidateCmd(),
		newDiffCmd(),
		newExportCmd(),
	)
	return root
}
