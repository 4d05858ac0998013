// Package cmd implements the idleforge command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/idleforge/internal/ux"
)

// NewRootCommand builds the full command tree. Every call returns a
// fresh tree with its own flag state.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "idleforge",
		Short: "Idle progression engine with content packs and local saves",
		Long: `idleforge runs an idle progression game: tasks train stats or earn money
over time, content packs define what can be trained, and progress is saved
locally with versioned, migratable saves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.String("config", "", "config file (default is $HOME/.idleforge/config.yaml)")
	f.String("packs-dir", "", "content packs directory")
	f.StringSlice("packs", nil, "active content packs (default: every pack in the directory)")
	f.String("equipment", "", "equipment data file, a flat JSON array")
	f.String("storage", "", "save backend: memory, file or sqlite")
	f.String("storage-path", "", "save directory (file) or database path (sqlite)")
	f.String("log-level", "", "log level: debug, info, warn or error")
	f.String("log-format", "", "log format: text or json")
	f.StringP("output", "o", "text", "output format: text, json or yaml")
	f.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		newValidateCmd(),
		newPacksCmd(),
		newStatusCmd(),
		newSimulateCmd(),
		newPlayCmd(),
		newSaveCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// RenderError formats a command error for stderr.
func RenderError(err error) string {
	return ux.RenderError(err, ux.DefaultStyles())
}
