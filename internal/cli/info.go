package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <layout.gds>",
		Short: "Print library structure and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, input string) error {
	lib, err := loadLibrary(input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "library: %s\n", lib.Name)
	fmt.Fprintf(out, "units: %g dbu per user unit, %g m per dbu\n",
		lib.Units.DBUPerUU, lib.Units.MetersPerDBU)
	fmt.Fprintf(out, "structures: %d\n", lib.Len())

	roots := lib.RootCandidates()
	if len(roots) > 0 {
		fmt.Fprintf(out, "root candidates: %s\n", strings.Join(roots, ", "))
	}

	for _, name := range lib.Names() {
		s, err := lib.Structure(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s: %d polygons, %d paths, %d instances\n",
			name, len(s.Polygons()), len(s.Paths()), len(s.Instances()))
	}
	return nil
}
