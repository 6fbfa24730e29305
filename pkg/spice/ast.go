package spice

import "github.com/alecthomas/participle/v2/lexer"

// netlistFile is the line-level parse tree of a netlist. Semantic checks
// (subckt mode, parameter splitting) happen in a second pass.
type netlistFile struct {
	Statements []*statement `parser:"( @@ | EOL )*"`
}

type statement struct {
	Pos lexer.Position

	Directive *directiveLine `parser:"  @@"`
	Instance  *instanceLine  `parser:"| @@"`
}

// directiveLine is ".keyword arg..." up to the end of the line.
type directiveLine struct {
	Keyword string   `parser:"@Directive"`
	Args    []string `parser:"@Word* EOL"`
}

// instanceLine is "name pin... cell key=value..." up to the end of the line.
type instanceLine struct {
	Tokens []string `parser:"@Word+ EOL"`
}
