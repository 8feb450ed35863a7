// Package cli implements the layoutview command tree.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/javagg/layoutview"
)

var (
	version string
	commit  string
)

// SetVersion sets the version information displayed by --version.
// Typically called by the main package with values injected via ldflags.
func SetVersion(v, c string) {
	version = v
	commit = c
}

// Execute runs the layoutview CLI.
//
// Logging goes to stderr: warnings by default, debug with --verbose.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "layoutview",
		Short:        "layoutview renders IC layout files to images and SVG",
		Long:         `layoutview reads GDSII layout libraries, flattens their cell hierarchies, and renders the result as vector output or GPU-ready geometry.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			layoutview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.SetVersionTemplate("layoutview " + version + " (" + commit + ")\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newExportCmd())
	root.AddCommand(newInfoCmd())

	return root.ExecuteContext(ctx)
}
