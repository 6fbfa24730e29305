package device

import (
	"fmt"
	"sort"
	"strings"
)

// Table lists the cell names that belong to one family.
type Table struct {
	Family Family
	Cells  []string
}

// PowerNames holds the substrings that mark supply and ground nets.
type PowerNames struct {
	Supply []string
	Ground []string
}

// Classifier maps raw cell names to families. It is built once from
// configuration and is read-only afterwards.
type Classifier struct {
	cells  map[string]Family
	supply []string
	ground []string
}

// NewClassifier builds a classifier from family tables and power net names.
// A cell listed under two different families is rejected.
func NewClassifier(tables []Table, power PowerNames) (*Classifier, error) {
	c := &Classifier{cells: make(map[string]Family)}
	for _, t := range tables {
		if !t.Family.Valid() {
			return nil, fmt.Errorf("device: invalid family %s/%d", t.Family.Kind, t.Family.Polarity)
		}
		if t.Family.Kind == KindIO {
			return nil, fmt.Errorf("device: IO is reserved for subckt terminals")
		}
		for _, cell := range t.Cells {
			if prev, ok := c.cells[cell]; ok && prev != t.Family {
				return nil, fmt.Errorf("device: cell %q listed as both %s and %s", cell, prev, t.Family)
			}
			c.cells[cell] = t.Family
		}
	}
	for _, s := range power.Supply {
		c.supply = append(c.supply, strings.ToLower(s))
	}
	for _, g := range power.Ground {
		c.ground = append(c.ground, strings.ToLower(g))
	}
	return c, nil
}

// Classify returns the family of cell.
func (c *Classifier) Classify(cell string) (Family, error) {
	if f, ok := c.cells[cell]; ok {
		return f, nil
	}
	return Family{}, fmt.Errorf("%w: %s", ErrUnknownDevice, cell)
}

// Known reports whether cell is a primitive device.
func (c *Classifier) Known(cell string) bool {
	_, ok := c.cells[cell]
	return ok
}

// NetClass classifies a net name. Ground takes precedence over supply.
func (c *Classifier) NetClass(name string) NetClass {
	lower := strings.ToLower(name)
	for _, g := range c.ground {
		if strings.Contains(lower, g) {
			return NetGround
		}
	}
	for _, s := range c.supply {
		if strings.Contains(lower, s) {
			return NetSupply
		}
	}
	return NetSignal
}

// Cells returns the known cell names of f in sorted order.
func (c *Classifier) Cells(f Family) []string {
	var out []string
	for cell, fam := range c.cells {
		if fam == f {
			out = append(out, cell)
		}
	}
	sort.Strings(out)
	return out
}
