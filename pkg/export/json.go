// Package export serializes a flattened graph and its resolved symmetry
// groups for downstream tools.
//
// Two formats are provided. WriteJSON emits the id-indexed node, net and
// pin tables together with the symmetry pairs and the declarations they
// came from. WriteSexp emits a KiCad-style s-expression netlist.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/OpenTraceLab/spiceflat/pkg/flatten"
	"github.com/OpenTraceLab/spiceflat/pkg/symmetry"
)

// FormatVersion is written into every export.
const FormatVersion = "1.0"

const generatedBy = "spiceflat hierarchical netlist flattener"

// Document is the JSON handoff of a flattened netlist.
type Document struct {
	Version     string      `json:"version"`
	Root        string      `json:"root"`
	Nodes       []Node      `json:"nodes"`
	Nets        []Net       `json:"nets"`
	Pins        []Pin       `json:"pins"`
	Symmetry    SymmetryDoc `json:"symmetry"`
	GeneratedBy string      `json:"generated_by"`
}

type Node struct {
	ID         int            `json:"id"`
	Attributes NodeAttributes `json:"attributes"`
	Pins       []int          `json:"pins"`
}

type NodeAttributes struct {
	Name          string            `json:"name"`
	Cell          string            `json:"cell"`
	Type          string            `json:"type"`
	W             float64           `json:"w"`
	L             float64           `json:"l"`
	NF            int               `json:"nf"`
	Potential     int               `json:"potential"`
	SymmetryGroup string            `json:"symmetry_group,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

type Net struct {
	ID         int           `json:"id"`
	Attributes NetAttributes `json:"attributes"`
	Pins       []int         `json:"pins"`
}

type NetAttributes struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type Pin struct {
	ID         int           `json:"id"`
	NodeID     int           `json:"node_id"`
	NetID      int           `json:"net_id"`
	Attributes PinAttributes `json:"attributes"`
}

type PinAttributes struct {
	Type string `json:"type"`
}

// SymmetryDoc carries the resolved node-id tuples and, for traceability,
// the per-subckt declarations they were resolved from.
type SymmetryDoc struct {
	Pairs         [][]int       `json:"pairs"`
	SelfSymmetric []Group       `json:"self_symmetric"`
	Groups        []Group       `json:"groups"`
	Declarations  []Declaration `json:"declarations"`
}

type Group struct {
	Subckt string   `json:"subckt"`
	Path   string   `json:"path,omitempty"`
	Names  []string `json:"names"`
	Nodes  []int    `json:"nodes"`
	Block  bool     `json:"block,omitempty"`
}

type Declaration struct {
	Subckt string     `json:"subckt"`
	Groups [][]string `json:"groups"`
}

// NewDocument builds the JSON document for g. res may be nil when no
// symmetry was resolved.
func NewDocument(g *flatten.Graph, res *symmetry.Result) *Document {
	doc := &Document{
		Version:     FormatVersion,
		Root:        g.Root,
		Nodes:       make([]Node, 0, len(g.Nodes)),
		Nets:        make([]Net, 0, len(g.Nets)),
		Pins:        make([]Pin, 0, len(g.Pins)),
		GeneratedBy: generatedBy,
		Symmetry: SymmetryDoc{
			Pairs:         [][]int{},
			SelfSymmetric: []Group{},
			Groups:        []Group{},
			Declarations:  []Declaration{},
		},
	}

	for _, n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, Node{
			ID: n.ID,
			Attributes: NodeAttributes{
				Name:          n.Name,
				Cell:          n.Cell,
				Type:          n.Family.String(),
				W:             n.Attrs.Width,
				L:             n.Attrs.Length,
				NF:            n.Attrs.Fingers,
				Potential:     n.Attrs.Potential,
				SymmetryGroup: n.Attrs.SymmetryGroup,
				Extra:         n.Attrs.Extra,
			},
			Pins: n.Pins,
		})
	}
	for _, n := range g.Nets {
		doc.Nets = append(doc.Nets, Net{
			ID:         n.ID,
			Attributes: NetAttributes{Name: n.Name, Class: n.Class.String()},
			Pins:       n.Pins,
		})
	}
	for _, p := range g.Pins {
		doc.Pins = append(doc.Pins, Pin{
			ID:         p.ID,
			NodeID:     p.NodeID,
			NetID:      p.NetID,
			Attributes: PinAttributes{Type: string(p.Role)},
		})
	}

	if res == nil {
		return doc
	}
	for _, rg := range res.Groups {
		grp := Group{
			Subckt: rg.Subckt,
			Path:   rg.Path,
			Names:  rg.Names,
			Nodes:  rg.Nodes,
			Block:  rg.Block,
		}
		doc.Symmetry.Groups = append(doc.Symmetry.Groups, grp)
		if rg.SelfSymmetric() {
			doc.Symmetry.SelfSymmetric = append(doc.Symmetry.SelfSymmetric, grp)
		} else {
			doc.Symmetry.Pairs = append(doc.Symmetry.Pairs, rg.Nodes)
		}
	}
	for _, d := range res.Declarations {
		decl := Declaration{Subckt: d.Subckt, Groups: make([][]string, 0, len(d.Groups))}
		for _, grp := range d.Groups {
			decl.Groups = append(decl.Groups, grp)
		}
		doc.Symmetry.Declarations = append(doc.Symmetry.Declarations, decl)
	}
	return doc
}

// WriteJSON writes g and res as indented JSON.
func WriteJSON(w io.Writer, g *flatten.Graph, res *symmetry.Result) error {
	data, err := json.MarshalIndent(NewDocument(g, res), "", "  ")
	if err != nil {
		return fmt.Errorf("export: failed to encode JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export: failed to write JSON: %w", err)
	}
	return nil
}
