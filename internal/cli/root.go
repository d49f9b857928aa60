// Package cli implements the fingrid command-line interface.
//
// Commands solve individual transistor-row building blocks (row, ext, tap,
// end) or a full row stack, and render the result as SVG, PDF or PNG, or
// dump the solved geometry as JSON.  All commands take the process constant
// table from a TOML file via --tech, defaulting to the built-in table.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version, typically
// injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the fingrid CLI and returns an error if any command fails.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "fingrid",
		Short:        "fingrid solves FinFET transistor-row geometry",
		Long:         `fingrid sizes and places the primitives of FinFET transistor rows (active regions, poly, contacts, via stacks, implants) on the fin and source/drain grids, and renders the result.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("fingrid %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRowCmd())
	root.AddCommand(newExtCmd())
	root.AddCommand(newTapCmd())
	root.AddCommand(newEndCmd())
	root.AddCommand(newStackCmd())

	return root.ExecuteContext(context.Background())
}
