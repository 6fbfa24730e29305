package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/spiceflat/pkg/hier"
	"github.com/OpenTraceLab/spiceflat/pkg/pipeline"
)

var hierCmd = &cobra.Command{
	Use:   "hier <netlist>",
	Short: "Show the root candidates and the instance tree",
	Long: `Show every subckt that no other subckt instantiates, then the instance tree
below each of them. The subckt that flatten would pick is marked.

Examples:
  spiceflat hier COMP.sp`,
	Args: cobra.ExactArgs(1),
	RunE: runHier,
}

func init() {
	rootCmd.AddCommand(hierCmd)
}

func runHier(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	nl, h, err := pipeline.Load(cmd.Context(), path, cfg)
	if err != nil {
		return err
	}
	if err := h.DetectCycles(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	roots := h.Roots()
	fmt.Fprintf(out, "Subckts: %d\n", len(nl.Subckts))
	fmt.Fprintf(out, "Roots:   %s\n", strings.Join(roots, " "))

	selected := ""
	if root, err := h.ResolveRoot(pipeline.RootHint(path)); err == nil {
		selected = root.Name
	} else {
		fmt.Fprintf(out, "Root:    unresolved (%v)\n", err)
	}

	for _, name := range roots {
		s, _ := h.Subckt(name)
		mark := ""
		if name == selected {
			mark = " [root]"
		}
		fmt.Fprintf(out, "\n%s (%s)%s\n", name, strings.Join(s.Pins, " "), mark)
		printTree(out, h, name, "  ")
	}
	return nil
}

// printTree prints the subckt instances of name, one level per indent.
func printTree(w io.Writer, h *hier.Hierarchy, name, indent string) {
	s, ok := h.Subckt(name)
	if !ok {
		return
	}
	for _, e := range s.Entries {
		if _, ok := h.Subckt(e.Cell); !ok {
			continue
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, e.Name, e.Cell)
		printTree(w, h, e.Cell, indent+"  ")
	}
}
