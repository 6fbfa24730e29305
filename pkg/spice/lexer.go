package spice

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// NetlistLexer defines the lexical structure of the SPICE subckt dialect.
// Comments, whitespace and "+" continuations are elided by the parser, so a
// continued instance line reaches the grammar as one statement. Parentheses
// never reach the lexer; ParseString removes them from the source first.
var NetlistLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Newline followed by "+" joins the next line onto the current one
	{Name: "Continuation", Pattern: `\r?\n[ \t]*\+`},

	{Name: "EOL", Pattern: `\r?\n`},

	// "*" starts a comment that runs to the end of the line
	{Name: "Comment", Pattern: `\*[^\n]*`},

	{Name: "Whitespace", Pattern: `[ \t\r]+`},

	// Dot directives (.subckt, .ends, ...)
	{Name: "Directive", Pattern: `\.[A-Za-z_]+`},

	// Names, nets, cells and key=value assignments
	{Name: "Word", Pattern: `\S+`},
})
