package flatten

import (
	"fmt"

	"github.com/OpenTraceLab/spiceflat/pkg/device"
	"github.com/OpenTraceLab/spiceflat/pkg/spice"
)

// Node is one flattened device or root I/O terminal.
type Node struct {
	ID     int
	Name   string
	Cell   string
	Family device.Family
	Attrs  spice.Attributes
	Pins   []int
}

// IsIO reports whether the node stands for a root formal pin.
func (n *Node) IsIO() bool {
	return n.Family.Kind == device.KindIO
}

// Net is one flattened electrical connection.
type Net struct {
	ID    int
	Name  string
	Class device.NetClass
	Pins  []int
}

// Pin is one terminal occurrence, owned by exactly one node and one net.
type Pin struct {
	ID     int
	NodeID int
	NetID  int
	Role   device.Role
}

// Graph is the flattened connectivity of a netlist. Node, net and pin ids
// are dense and equal their slice index. A Graph is read-only once Flatten
// returns it.
type Graph struct {
	Root  string
	Nodes []*Node
	Nets  []*Net
	Pins  []*Pin

	byName map[string][]int
}

// NodesNamed returns the ids of every node whose context-qualified name is
// exactly name.
func (g *Graph) NodesNamed(name string) []int {
	return g.byName[name]
}

// PinNet returns the net of the pin-th terminal of node.
func (g *Graph) PinNet(node *Node, pin int) *Net {
	return g.Nets[g.Pins[node.Pins[pin]].NetID]
}

// Validate checks the id and ownership invariants of the graph.
func (g *Graph) Validate() error {
	for i, n := range g.Nodes {
		if n.ID != i {
			return fmt.Errorf("flatten: node %q has id %d at index %d", n.Name, n.ID, i)
		}
	}
	for i, n := range g.Nets {
		if n.ID != i {
			return fmt.Errorf("flatten: net %q has id %d at index %d", n.Name, n.ID, i)
		}
	}

	nodeRefs := make([]int, len(g.Pins))
	netRefs := make([]int, len(g.Pins))
	for _, n := range g.Nodes {
		for _, p := range n.Pins {
			if p < 0 || p >= len(g.Pins) || g.Pins[p].NodeID != n.ID {
				return fmt.Errorf("flatten: node %q lists foreign pin %d", n.Name, p)
			}
			nodeRefs[p]++
		}
	}
	for _, n := range g.Nets {
		for _, p := range n.Pins {
			if p < 0 || p >= len(g.Pins) || g.Pins[p].NetID != n.ID {
				return fmt.Errorf("flatten: net %q lists foreign pin %d", n.Name, p)
			}
			netRefs[p]++
		}
	}
	for i, p := range g.Pins {
		if p.ID != i {
			return fmt.Errorf("flatten: pin has id %d at index %d", p.ID, i)
		}
		if p.NodeID < 0 || p.NodeID >= len(g.Nodes) || p.NetID < 0 || p.NetID >= len(g.Nets) {
			return fmt.Errorf("flatten: pin %d references node %d / net %d out of range", i, p.NodeID, p.NetID)
		}
		if nodeRefs[i] != 1 || netRefs[i] != 1 {
			return fmt.Errorf("flatten: pin %d owned by %d nodes and %d nets", i, nodeRefs[i], netRefs[i])
		}
	}
	return nil
}

func (g *Graph) index() {
	g.byName = make(map[string][]int, len(g.Nodes))
	for _, n := range g.Nodes {
		g.byName[n.Name] = append(g.byName[n.Name], n.ID)
	}
}
