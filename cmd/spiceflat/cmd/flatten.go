package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/spiceflat/pkg/export"
	"github.com/OpenTraceLab/spiceflat/pkg/pipeline"
	"github.com/OpenTraceLab/spiceflat/pkg/symmetry"
)

var (
	rootHint     string
	symmetryFile string
	policyName   string
	outputFormat string
	outputPath   string
)

var flattenCmd = &cobra.Command{
	Use:   "flatten <netlist>",
	Short: "Flatten a netlist and resolve its symmetry groups",
	Long: `Flatten the hierarchy below the root subckt into a graph of nodes, nets and
typed pins, then map the symmetry declarations onto node ids.

The root is the subckt named like the netlist file (without extension) when
that subckt is not instantiated anywhere, otherwise the only such subckt.

Examples:
  spiceflat flatten COMP.sp
  spiceflat flatten --root TOP --symmetry pairs.txt design.sp
  spiceflat flatten --format sexp --output COMP.net COMP.sp`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
}

func init() {
	rootCmd.AddCommand(flattenCmd)
	addRunFlags(flattenCmd)

	flattenCmd.Flags().StringVarP(&outputFormat, "format", "f", "summary",
		"output format: summary, json or sexp")
	flattenCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"write output to file instead of stdout")
}

// addRunFlags registers the flags shared by commands that run the pipeline.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rootHint, "root", "r", "",
		"root subckt (defaults to the netlist file name)")
	cmd.Flags().StringVarP(&symmetryFile, "symmetry", "s", "",
		"symmetry file (defaults to <netlist>.txt, then instance tags)")
	cmd.Flags().StringVarP(&policyName, "policy", "p", "single",
		"subckts instantiated more than once: single (reject) or all (resolve every instance)")
}

// runPipeline runs the pipeline with the shared flags.
func runPipeline(cmd *cobra.Command, path string) (*pipeline.Result, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	policy, err := symmetry.ParsePolicy(policyName)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(cmd.Context(), path, pipeline.Options{
		RootHint:     rootHint,
		SymmetryFile: symmetryFile,
		Policy:       policy,
		Config:       cfg,
	})
}

func runFlatten(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case "summary", "json", "sexp":
	default:
		return fmt.Errorf("unknown format %q (want summary, json or sexp)", outputFormat)
	}

	res, err := runPipeline(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	switch outputFormat {
	case "json":
		err = export.WriteJSON(out, res.Graph, res.Symmetry)
	case "sexp":
		err = export.WriteSexp(out, res.Graph, res.Symmetry)
	default:
		printSummary(out, res)
	}
	if err != nil {
		return err
	}

	if outputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s output to %s\n", outputFormat, outputPath)
	}
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	g := res.Graph
	ports := 0
	for _, n := range g.Nodes {
		if n.IsIO() {
			ports++
		}
	}

	fmt.Fprintf(w, "Netlist:  %s\n", res.Path)
	fmt.Fprintf(w, "Root:     %s\n", g.Root)
	fmt.Fprintf(w, "Nodes:    %d (%d IO, %d devices)\n", len(g.Nodes), ports, len(g.Nodes)-ports)
	fmt.Fprintf(w, "Nets:     %d\n", len(g.Nets))
	fmt.Fprintf(w, "Pins:     %d\n", len(g.Pins))

	source := string(res.SymmetrySource)
	if res.SymmetryFile != "" {
		source += " " + res.SymmetryFile
	}
	sym := res.Symmetry
	fmt.Fprintf(w, "Symmetry: %s (%d groups, %d pairs, %d self-symmetric)\n",
		source, len(sym.Groups), len(sym.Pairs()), len(sym.SelfSymmetric()))

	if len(sym.Groups) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSymmetry Groups:\n")
	for _, rg := range sym.Groups {
		fmt.Fprintf(w, "  %s\n", formatGroup(rg))
	}
}

func formatGroup(rg symmetry.ResolvedGroup) string {
	scope := rg.Subckt
	if rg.Path != "" {
		scope += " @ " + rg.Path
	}
	ids := make([]string, len(rg.Nodes))
	for i, id := range rg.Nodes {
		ids[i] = fmt.Sprint(id)
	}
	line := fmt.Sprintf("%-20s %s -> [%s]", scope, strings.Join(rg.Names, " "), strings.Join(ids, " "))
	switch {
	case rg.Block:
		line += " (block)"
	case rg.SelfSymmetric():
		line += " (self)"
	}
	return line
}
