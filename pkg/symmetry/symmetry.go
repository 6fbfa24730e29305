// Package symmetry extracts symmetry declarations from a side file or from
// instance attributes, and maps them onto node ids of a flattened graph.
//
// A declaration belongs to one subckt and lists groups of element names
// local to it. Groups of two or more names are symmetric counterparts; a
// single name marks a self-symmetric element. When the subckt is not the
// root, names are qualified with the instance path that leads to it.
package symmetry

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrMalformedFile     = errors.New("symmetry: malformed symmetry file")
	ErrAmbiguousInstance = errors.New("symmetry: subckt is instantiated more than once")
	ErrInconsistent      = errors.New("symmetry: inconsistent declaration")
)

// Group is one set of element names declared symmetric to each other.
type Group []string

// Declaration holds the groups declared for one subckt.
type Declaration struct {
	Subckt string
	Groups []Group
}

// Declarations are kept in the order their subckts first appear.
type Declarations []Declaration

// Lookup returns the declaration for subckt.
func (d Declarations) Lookup(subckt string) (*Declaration, bool) {
	for i := range d {
		if d[i].Subckt == subckt {
			return &d[i], true
		}
	}
	return nil, false
}

// GroupCount returns the total number of groups over all subckts.
func (d Declarations) GroupCount() int {
	n := 0
	for _, decl := range d {
		n += len(decl.Groups)
	}
	return n
}

// WriteTo renders the declarations in symmetry file syntax.
func (d Declarations) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, decl := range d {
		b.WriteString(decl.Subckt)
		b.WriteString("\n")
		for _, g := range decl.Groups {
			b.WriteString(strings.Join(g, " "))
			b.WriteString("\n")
		}
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// block returns the declaration for subckt, appending an empty one if
// there is none yet.
func (d *Declarations) block(subckt string) *Declaration {
	if decl, ok := d.Lookup(subckt); ok {
		return decl
	}
	*d = append(*d, Declaration{Subckt: subckt})
	return &(*d)[len(*d)-1]
}

// Policy decides how declarations of a subckt with several instances under
// the root are resolved.
type Policy int

const (
	// PolicyRequireSingle rejects subckts instantiated more than once.
	PolicyRequireSingle Policy = iota
	// PolicyApplyAll resolves the declarations once per instance path.
	PolicyApplyAll
)

func (p Policy) String() string {
	switch p {
	case PolicyRequireSingle:
		return "single"
	case PolicyApplyAll:
		return "all"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy maps "single" or "all" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "single":
		return PolicyRequireSingle, nil
	case "all":
		return PolicyApplyAll, nil
	}
	return 0, fmt.Errorf("symmetry: unknown policy %q (want single or all)", s)
}

// ResolvedGroup is one declared group mapped onto graph nodes.
type ResolvedGroup struct {
	// Subckt is the subckt the group was declared in.
	Subckt string
	// Path is the instance path of Subckt below the root, empty for the root.
	Path string
	// Names are the context-qualified element names.
	Names []string
	// Nodes holds one node id per name, or every node below the instance
	// for a block-level group.
	Nodes []int
	// Block is set for a self-symmetric sub-instance.
	Block bool
}

// SelfSymmetric reports whether the group names a single element.
func (g ResolvedGroup) SelfSymmetric() bool {
	return len(g.Names) == 1
}

// Result is the outcome of mapping declarations onto a graph.
type Result struct {
	Declarations Declarations
	Groups       []ResolvedGroup
}

// Pairs returns the node-id tuples of every group with two or more members.
func (r *Result) Pairs() [][]int {
	var out [][]int
	for _, g := range r.Groups {
		if !g.SelfSymmetric() {
			out = append(out, g.Nodes)
		}
	}
	return out
}

// SelfSymmetric returns the single-element groups.
func (r *Result) SelfSymmetric() []ResolvedGroup {
	var out []ResolvedGroup
	for _, g := range r.Groups {
		if g.SelfSymmetric() {
			out = append(out, g)
		}
	}
	return out
}
