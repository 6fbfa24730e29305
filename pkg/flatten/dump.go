package flatten

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dump writes the graph as a flat .subckt whose pins are the root I/O
// nodes. Each device line lists the node name, the names of its nets in pin
// order, its cell and its attributes as key=value. symKey is the parameter
// name used for the symmetry tag.
func (g *Graph) Dump(w io.Writer, symKey string) error {
	bw := bufio.NewWriter(w)

	var ports []string
	for _, n := range g.Nodes {
		if n.IsIO() {
			ports = append(ports, n.Name)
		}
	}
	fmt.Fprintf(bw, ".subckt %s", g.Root)
	for _, name := range ports {
		fmt.Fprintf(bw, " %s", name)
	}
	bw.WriteString("\n")

	for _, n := range g.Nodes {
		if n.IsIO() {
			continue
		}
		fields := []string{n.Name}
		for i := range n.Pins {
			fields = append(fields, g.PinNet(n, i).Name)
		}
		fields = append(fields, n.Cell)
		for _, kv := range n.Attrs.KeyValues(symKey) {
			fields = append(fields, kv[0]+"="+kv[1])
		}
		bw.WriteString(strings.Join(fields, " "))
		bw.WriteString("\n")
	}

	fmt.Fprintf(bw, ".ends %s\n", g.Root)
	return bw.Flush()
}
