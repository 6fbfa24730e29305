package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var symmetryCmd = &cobra.Command{
	Use:   "symmetry <netlist>",
	Short: "Show symmetry declarations and the groups they resolve to",
	Long: `Flatten the netlist, then print the symmetry declarations in symmetry file
syntax followed by every resolved group with its node ids.

Examples:
  spiceflat symmetry COMP.sp
  spiceflat symmetry --policy all TOP.sp`,
	Args: cobra.ExactArgs(1),
	RunE: runSymmetry,
}

func init() {
	rootCmd.AddCommand(symmetryCmd)
	addRunFlags(symmetryCmd)
}

func runSymmetry(cmd *cobra.Command, args []string) error {
	res, err := runPipeline(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := string(res.SymmetrySource)
	if res.SymmetryFile != "" {
		source += " " + res.SymmetryFile
	}
	fmt.Fprintf(out, "Declarations (%s):\n", source)
	if _, err := res.Symmetry.Declarations.WriteTo(out); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nResolved Groups: %d\n", len(res.Symmetry.Groups))
	for _, rg := range res.Symmetry.Groups {
		fmt.Fprintf(out, "  %s\n", formatGroup(rg))
	}
	return nil
}
