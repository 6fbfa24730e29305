package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/spiceflat/pkg/flatten"
	"github.com/OpenTraceLab/spiceflat/pkg/symmetry"
)

// WriteSexp writes g and res as a KiCad-style netlist: one comp per node
// with its attributes as properties, one net per flattened net listing the
// node, pin ordinal and role of every terminal, and the resolved symmetry
// groups. res may be nil.
func WriteSexp(w io.Writer, g *flatten.Graph, res *symmetry.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "(export (version %s)\n", quote(FormatVersion))
	b.WriteString("  (design\n")
	fmt.Fprintf(&b, "    (source %s)\n", quote(generatedBy))
	fmt.Fprintf(&b, "    (root %s)\n", quote(g.Root))
	b.WriteString("  )\n")

	b.WriteString("  (components\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "    (comp (ref %s) (id %d) (value %s) (type %s)",
			quote(n.Name), n.ID, quote(n.Cell), quote(n.Family.String()))
		if !n.IsIO() {
			for _, kv := range n.Attrs.KeyValues("symmetry_group") {
				fmt.Fprintf(&b, "\n      (property (name %s) (value %s))", quote(kv[0]), quote(kv[1]))
			}
		}
		b.WriteString(")\n")
	}
	b.WriteString("  )\n")

	b.WriteString("  (nets\n")
	for _, net := range g.Nets {
		fmt.Fprintf(&b, "    (net (code %d) (name %s) (class %s)", net.ID, quote(net.Name), quote(net.Class.String()))
		for _, id := range net.Pins {
			p := g.Pins[id]
			node := g.Nodes[p.NodeID]
			fmt.Fprintf(&b, "\n      (node (ref %s) (pin %d) (role %s))",
				quote(node.Name), pinOrdinal(node, id), quote(string(p.Role)))
		}
		b.WriteString(")\n")
	}
	b.WriteString("  )\n")

	b.WriteString("  (symmetry\n")
	if res != nil {
		for _, rg := range res.Groups {
			kind := "pair"
			switch {
			case rg.Block:
				kind = "block"
			case rg.SelfSymmetric():
				kind = "self"
			}
			fmt.Fprintf(&b, "    (group (kind %s) (subckt %s)", kind, quote(rg.Subckt))
			if rg.Path != "" {
				fmt.Fprintf(&b, " (path %s)", quote(rg.Path))
			}
			b.WriteString("\n      (members")
			for _, name := range rg.Names {
				b.WriteString(" " + quote(name))
			}
			b.WriteString(")\n      (nodes")
			for _, id := range rg.Nodes {
				fmt.Fprintf(&b, " %d", id)
			}
			b.WriteString("))\n")
		}
	}
	b.WriteString("  )\n")
	b.WriteString(")\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("export: failed to write s-expression: %w", err)
	}
	return nil
}

// pinOrdinal returns the position of pin among the terminals of node.
func pinOrdinal(node *flatten.Node, pin int) int {
	for i, id := range node.Pins {
		if id == pin {
			return i
		}
	}
	return -1
}

func quote(s string) string {
	return strconv.Quote(s)
}
