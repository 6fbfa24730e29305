// Package flatten expands a subckt hierarchy into a single device-level
// graph of nodes, nets and typed pins.
//
// Names are context-qualified: a device M1 inside instance X2 of instance
// X1 of the root TOP is called "TOP/X1/X2/M1". Nets local to an instance
// follow the same scheme; nets bound to an instance's formal pins take the
// identity of the net they are bound to in the enclosing scope. Root formal
// pins become I/O nodes whose nets carry the bare pin name.
package flatten

import (
	"context"
	"errors"
	"fmt"

	"github.com/OpenTraceLab/spiceflat/internal/ctxlog"
	"github.com/OpenTraceLab/spiceflat/pkg/device"
	"github.com/OpenTraceLab/spiceflat/pkg/hier"
	"github.com/OpenTraceLab/spiceflat/pkg/spice"
)

var (
	// ErrPinCount is returned when an instance connects more or fewer pins
	// than its device family or subckt definition allows.
	ErrPinCount = errors.New("flatten: pin count mismatch")
)

// Flatten expands root and everything it instantiates. The hierarchy is
// checked for cycles first.
func Flatten(ctx context.Context, h *hier.Hierarchy, root *spice.Subckt, cls *device.Classifier) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	if err := h.DetectCycles(); err != nil {
		return nil, err
	}

	b := &builder{
		netlist: h.Netlist(),
		cls:     cls,
		graph:   &Graph{Root: root.Name},
	}

	bindings := make(map[string]*Net, len(root.Pins))
	for _, pin := range root.Pins {
		node := b.newNode(pin, "IO", device.IO, spice.Attributes{})
		net := b.newNet(pin)
		b.connect(node, net, device.RoleIO)
		bindings[pin] = net
	}

	if err := b.flatten(root, root.Name+"/", bindings); err != nil {
		return nil, err
	}
	b.graph.index()

	logger.Debug("Flattened hierarchy.",
		"root", root.Name,
		"nodes", len(b.graph.Nodes),
		"nets", len(b.graph.Nets),
		"pins", len(b.graph.Pins))
	return b.graph, nil
}

type builder struct {
	netlist *spice.Netlist
	cls     *device.Classifier
	graph   *Graph
}

// flatten instantiates the entries of s under scope. bindings maps each
// formal pin of s to the net it is connected to in the enclosing scope.
func (b *builder) flatten(s *spice.Subckt, scope string, bindings map[string]*Net) error {
	// Local nets are allocated up front in entry/pin order so ids do not
	// depend on how deep each entry expands.
	local := make(map[string]*Net)
	for _, e := range s.Entries {
		for _, pin := range e.Pins {
			if s.HasPin(pin) {
				continue
			}
			if _, ok := local[pin]; !ok {
				local[pin] = b.newNet(scope + pin)
			}
		}
	}

	resolve := func(pin string) *Net {
		if s.HasPin(pin) {
			return bindings[pin]
		}
		return local[pin]
	}

	for _, e := range s.Entries {
		if sub, ok := b.netlist.Lookup(e.Cell); ok {
			if len(e.Pins) != len(sub.Pins) {
				return fmt.Errorf("%w: %s%s connects %d pins, subckt %s has %d",
					ErrPinCount, scope, e.Name, len(e.Pins), sub.Name, len(sub.Pins))
			}
			subBindings := make(map[string]*Net, len(sub.Pins))
			for i, pin := range e.Pins {
				subBindings[sub.Pins[i]] = resolve(pin)
			}
			if err := b.flatten(sub, scope+e.Name+"/", subBindings); err != nil {
				return err
			}
			continue
		}

		family, err := b.cls.Classify(e.Cell)
		if err != nil {
			return fmt.Errorf("%s%s: %w", scope, e.Name, err)
		}
		if len(e.Pins) < family.MinPins() {
			return fmt.Errorf("%w: %s%s connects %d pins, %s needs at least %d",
				ErrPinCount, scope, e.Name, len(e.Pins), family, family.MinPins())
		}

		node := b.newNode(scope+e.Name, e.Cell, family, e.Attrs)
		for i, pin := range e.Pins {
			role, err := family.PinRole(i)
			if err != nil {
				return fmt.Errorf("%s%s: %w", scope, e.Name, err)
			}
			b.connect(node, resolve(pin), role)
		}
	}
	return nil
}

func (b *builder) newNode(name, cell string, family device.Family, attrs spice.Attributes) *Node {
	n := &Node{
		ID:     len(b.graph.Nodes),
		Name:   name,
		Cell:   cell,
		Family: family,
		Attrs:  attrs,
	}
	b.graph.Nodes = append(b.graph.Nodes, n)
	return n
}

func (b *builder) newNet(name string) *Net {
	n := &Net{
		ID:    len(b.graph.Nets),
		Name:  name,
		Class: b.cls.NetClass(name),
	}
	b.graph.Nets = append(b.graph.Nets, n)
	return n
}

func (b *builder) connect(node *Node, net *Net, role device.Role) {
	p := &Pin{
		ID:     len(b.graph.Pins),
		NodeID: node.ID,
		NetID:  net.ID,
		Role:   role,
	}
	b.graph.Pins = append(b.graph.Pins, p)
	node.Pins = append(node.Pins, p.ID)
	net.Pins = append(net.Pins, p.ID)
}
