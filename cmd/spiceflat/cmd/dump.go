package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/spiceflat/pkg/flatten"
	"github.com/OpenTraceLab/spiceflat/pkg/pipeline"
	"github.com/OpenTraceLab/spiceflat/pkg/spice"
)

var dumpRaw bool

var dumpCmd = &cobra.Command{
	Use:   "dump <netlist> [subckt]",
	Short: "Print the flattened devices below a subckt",
	Long: `Flatten the given subckt (or the root) and print one line per device: the
context-qualified name, the nets of its pins, the cell and its attributes.
This is a debugging aid, not a stable format.

With --raw the parsed subckt definitions are dumped instead.

Examples:
  spiceflat dump COMP.sp
  spiceflat dump COMP.sp LATCH
  spiceflat dump --raw COMP.sp LATCH`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVar(&dumpRaw, "raw", false,
		"dump the parsed subckt definitions")
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	nl, h, err := pipeline.Load(cmd.Context(), path, cfg)
	if err != nil {
		return err
	}

	var root *spice.Subckt
	if len(args) == 2 {
		s, ok := nl.Lookup(args[1])
		if !ok {
			return fmt.Errorf("no subckt %q in %s", args[1], path)
		}
		root = s
	}

	out := cmd.OutOrStdout()
	if dumpRaw {
		dumper := spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		if root != nil {
			dumper.Fdump(out, root)
		} else {
			dumper.Fdump(out, nl.Subckts)
		}
		return nil
	}

	if root == nil {
		root, err = h.ResolveRoot(pipeline.RootHint(path))
		if err != nil {
			return err
		}
	}
	cls, err := cfg.Classifier()
	if err != nil {
		return err
	}
	g, err := flatten.Flatten(cmd.Context(), h, root, cls)
	if err != nil {
		return err
	}
	return g.Dump(out, cfg.SymmetryTag)
}
