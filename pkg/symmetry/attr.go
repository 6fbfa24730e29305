package symmetry

import "github.com/OpenTraceLab/spiceflat/pkg/spice"

// FromAttributes derives declarations from the symmetry tags of instances.
// Within each subckt, every entry is paired with each later entry carrying
// the same non-empty tag, so three entries A, B, C sharing a tag yield
// (A,B), (A,C) and (B,C). Subckts without tagged pairs are omitted.
func FromAttributes(nl *spice.Netlist) Declarations {
	var decls Declarations
	for _, s := range nl.Subckts {
		var groups []Group
		for i, a := range s.Entries {
			tag := a.Attrs.SymmetryGroup
			if tag == "" {
				continue
			}
			for _, b := range s.Entries[i+1:] {
				if b.Attrs.SymmetryGroup == tag {
					groups = append(groups, Group{a.Name, b.Name})
				}
			}
		}
		if len(groups) > 0 {
			decls = append(decls, Declaration{Subckt: s.Name, Groups: groups})
		}
	}
	return decls
}
