package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/gds"
	"github.com/javagg/layoutview/geometry"
	"github.com/javagg/layoutview/model"
	"github.com/javagg/layoutview/resolve"
	"github.com/javagg/layoutview/vector"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output   string // output SVG path
	root     string // root structure name; empty means auto-detect
	maxDepth int    // instantiation depth limit
	styles   string // optional TOML style table path
}

func newExportCmd() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <layout.gds>",
		Short: "Export a layout to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "out.svg", "output SVG file")
	cmd.Flags().StringVar(&opts.root, "root", "", "root structure (default: auto-detect)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "instantiation depth limit (0 = default)")
	cmd.Flags().StringVar(&opts.styles, "styles", "", "TOML style table file")

	return cmd
}

func runExport(cmd *cobra.Command, input string, opts exportOpts) error {
	lib, err := loadLibrary(input)
	if err != nil {
		return err
	}

	root, err := pickRoot(lib, opts.root)
	if err != nil {
		return err
	}

	styles := layoutview.NewStyleTable()
	if opts.styles != "" {
		styles, err = layoutview.LoadStyleTable(opts.styles)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	res, err := resolve.NewResolver(lib).Resolve(ctx, root, resolve.Options{
		MaxDepth: opts.maxDepth,
	})
	if err != nil {
		return err
	}

	builder := geometry.NewBuilder()
	defer builder.Close()
	prims, warns, err := builder.Build(ctx, res.Shapes)
	if err != nil {
		return err
	}
	for _, w := range warns {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	out, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", opts.output, err)
	}
	defer out.Close()

	if err := vector.Export(out, prims, res.Bounds, res.Units, styles); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", opts.output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d shapes from %q -> %s\n",
		input, len(prims), root, opts.output)
	return nil
}

func loadLibrary(path string) (*model.Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	lib, err := gds.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lib, nil
}

// pickRoot returns the requested root, or the first structure nothing
// else references.
func pickRoot(lib *model.Library, requested string) (string, error) {
	if requested != "" {
		if !lib.Has(requested) {
			return "", &model.NotFoundError{Name: requested}
		}
		return requested, nil
	}
	roots := lib.RootCandidates()
	if len(roots) == 0 {
		return "", fmt.Errorf("no root candidates in library %q; use --root", lib.Name)
	}
	return roots[0], nil
}
