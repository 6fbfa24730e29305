// Package spice parses the subckt dialect of SPICE netlists used by analog
// layout flows.
//
// # Syntax
//
// The parser accepts:
//
//	.subckt <name> <pin>...      opens a definition
//	.topckt <name> <pin>...      opens a definition and marks it as the root
//	.ends [<name>]               closes the current definition
//	.end                         ignored
//	<inst> <pin>... <cell> [<key>=<value>]...
//
// Directive keywords are case-insensitive. A "*" starts a comment that runs
// to the end of the line, parentheses are deleted before tokenizing
// ("bus(0)" is the net "bus0"), and a line beginning with "+" continues the
// previous one. Any other directive is rejected.
//
// # Parameters
//
// Instance parameters are normalized while parsing:
//
//   - w, wr, wt set the width and l, lr, lt the length, both in meters.
//     "2u" and "5n" carry a micro or nano suffix in either case; the legacy form "w1"
//     (the parameter's own letter and an index) means (index+1) microns.
//   - nf and mf set the finger count.
//   - the symmetry key ("sg" unless changed with WithSymmetryKey) sets the
//     symmetry group tag.
//   - every other key is kept verbatim.
//
// When a key appears twice the leftmost value wins. An instance with more
// than four pins and at least one parameter lists a potential group after
// its four device terminals; the extra pins are interned into
// Netlist.Potentials and the entry keeps only the first four.
//
// # Usage
//
//	p, err := spice.NewParser()
//	if err != nil {
//		return err
//	}
//	nl, err := p.ParseFile("COMP.sp")
//	if err != nil {
//		return err
//	}
//	for _, s := range nl.Subckts {
//		fmt.Println(s.Name, len(s.Entries))
//	}
package spice
