// Package hier builds the instantiation relation between subckts and
// resolves the top-level (root) subckt of a netlist.
package hier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/spiceflat/pkg/spice"
)

var (
	ErrAmbiguousRoot = errors.New("hier: ambiguous or missing root")
	ErrCycle         = errors.New("hier: cyclic subckt hierarchy")
)

// Hierarchy is the directed relation A -> B for every subckt A that
// instantiates subckt B. It is read-only after Build.
type Hierarchy struct {
	netlist  *spice.Netlist
	children map[string][]string
	inDegree map[string]int
}

// Instance is one entry that instantiates a subckt.
type Instance struct {
	Parent *spice.Subckt
	Entry  *spice.Entry
}

// Build derives the hierarchy from a parsed netlist.
func Build(nl *spice.Netlist) *Hierarchy {
	h := &Hierarchy{
		netlist:  nl,
		children: make(map[string][]string),
		inDegree: make(map[string]int),
	}
	for _, s := range nl.Subckts {
		seen := make(map[string]bool)
		for _, e := range s.Entries {
			if !nl.IsSubckt(e.Cell) || seen[e.Cell] {
				continue
			}
			seen[e.Cell] = true
			h.children[s.Name] = append(h.children[s.Name], e.Cell)
			h.inDegree[e.Cell]++
		}
	}
	return h
}

// Netlist returns the netlist the hierarchy was built from.
func (h *Hierarchy) Netlist() *spice.Netlist {
	return h.netlist
}

// Subckt returns the definition called name.
func (h *Hierarchy) Subckt(name string) (*spice.Subckt, bool) {
	return h.netlist.Lookup(name)
}

// Children returns the distinct subckts instantiated by name, in first-use order.
func (h *Hierarchy) Children(name string) []string {
	return h.children[name]
}

// Roots returns the subckts that no other subckt instantiates, in
// definition order.
func (h *Hierarchy) Roots() []string {
	var roots []string
	for _, s := range h.netlist.Subckts {
		if h.inDegree[s.Name] == 0 {
			roots = append(roots, s.Name)
		}
	}
	return roots
}

// ResolveRoot picks the root subckt. A hint naming one of the candidates
// wins; otherwise a single .topckt candidate wins; otherwise there must be
// exactly one candidate.
func (h *Hierarchy) ResolveRoot(hint string) (*spice.Subckt, error) {
	roots := h.Roots()
	for _, r := range roots {
		if r == hint {
			s, _ := h.netlist.Lookup(r)
			return s, nil
		}
	}

	var tops []*spice.Subckt
	for _, r := range roots {
		if s, _ := h.netlist.Lookup(r); s.Top {
			tops = append(tops, s)
		}
	}
	if len(tops) == 1 {
		return tops[0], nil
	}

	if len(roots) != 1 {
		return nil, fmt.Errorf("%w: candidates [%s], hint %q", ErrAmbiguousRoot, strings.Join(roots, " "), hint)
	}
	s, _ := h.netlist.Lookup(roots[0])
	return s, nil
}

// DetectCycles checks the relation for cycles and reports the first one
// found as a path of subckt names.
func (h *Hierarchy) DetectCycles() error {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int)
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case onStack:
			start := 0
			for i, n := range stack {
				if n == name {
					start = i
					break
				}
			}
			path := append(append([]string(nil), stack[start:]...), name)
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(path, " -> "))
		}

		state[name] = onStack
		stack = append(stack, name)
		for _, child := range h.children[name] {
			if err := visit(child); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, s := range h.netlist.Subckts {
		if state[s.Name] == unvisited {
			if err := visit(s.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Instantiations returns every entry, in any subckt, whose cell is name.
func (h *Hierarchy) Instantiations(name string) []Instance {
	var out []Instance
	for _, s := range h.netlist.Subckts {
		for _, e := range s.Entries {
			if e.Cell == name {
				out = append(out, Instance{Parent: s, Entry: e})
			}
		}
	}
	return out
}

// InstancePaths returns the hierarchical instance path ("X1/X2") of every
// instantiation of name reachable from root, in depth-first entry order.
// The hierarchy must be acyclic.
func (h *Hierarchy) InstancePaths(root, name string) []string {
	var paths []string
	var walk func(subckt, prefix string)
	walk = func(subckt, prefix string) {
		s, ok := h.netlist.Lookup(subckt)
		if !ok {
			return
		}
		for _, e := range s.Entries {
			if !h.netlist.IsSubckt(e.Cell) {
				continue
			}
			path := prefix + e.Name
			if e.Cell == name {
				paths = append(paths, path)
			}
			walk(e.Cell, path+"/")
		}
	}
	walk(root, "")
	return paths
}
