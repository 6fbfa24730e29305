package spice

import (
	"fmt"
	"slices"
	"strings"
)

// Netlist is the parsed content of one netlist file.
type Netlist struct {
	// Subckts in definition order.
	Subckts []*Subckt

	// Potentials interns the secondary terminal tuples of multi-well
	// instances. Index 0 is the empty tuple used by ungrouped instances.
	Potentials [][]string

	byName map[string]*Subckt
}

// Subckt is one .subckt/.ends block. It is not modified after parsing.
type Subckt struct {
	Name    string
	Pins    []string
	Entries []*Entry

	// Top is set for blocks opened with .topckt.
	Top bool

	Line int
}

// Entry is one instance line inside a subckt.
type Entry struct {
	Name  string
	Pins  []string
	Cell  string
	Attrs Attributes
	Line  int
}

// Lookup returns the subckt called name.
func (n *Netlist) Lookup(name string) (*Subckt, bool) {
	s, ok := n.byName[name]
	return s, ok
}

// IsSubckt reports whether cell names a parsed subckt.
func (n *Netlist) IsSubckt(cell string) bool {
	_, ok := n.byName[cell]
	return ok
}

func (n *Netlist) add(s *Subckt) error {
	if n.byName == nil {
		n.byName = make(map[string]*Subckt)
	}
	if prev, ok := n.byName[s.Name]; ok {
		return fmt.Errorf("%w: %s (lines %d and %d)", ErrDuplicateSubckt, s.Name, prev.Line, s.Line)
	}
	n.byName[s.Name] = s
	n.Subckts = append(n.Subckts, s)
	return nil
}

// internPotential returns the index of tuple in the potential table,
// appending it when it has not been seen before.
func (n *Netlist) internPotential(tuple []string) int {
	for i, p := range n.Potentials {
		if slices.Equal(p, tuple) {
			return i
		}
	}
	n.Potentials = append(n.Potentials, append([]string(nil), tuple...))
	return len(n.Potentials) - 1
}

// HasPin reports whether name is one of the subckt's formal pins.
func (s *Subckt) HasPin(name string) bool {
	for _, p := range s.Pins {
		if p == name {
			return true
		}
	}
	return false
}

// Entry returns the entry called name.
func (s *Subckt) Entry(name string) (*Entry, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (e *Entry) String() string {
	return fmt.Sprintf("name: %s; pins: %s; cell: %s; attr: %s",
		e.Name, strings.Join(e.Pins, " "), e.Cell, e.Attrs)
}
