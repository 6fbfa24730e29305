package spice

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
)

var (
	ErrNotInSubckt          = errors.New("spice: not in a subckt")
	ErrMalformedParameter   = errors.New("spice: malformed parameter")
	ErrMissingCell          = errors.New("spice: instance has no cell type")
	ErrMissingName          = errors.New("spice: subckt has no name")
	ErrDuplicateSubckt      = errors.New("spice: duplicate subckt")
	ErrUnsupportedDirective = errors.New("spice: unsupported directive")
)

var stripParens = strings.NewReplacer("(", "", ")", "")

// maxTerminals is the number of leading pins that are real device
// terminals when an instance also lists a secondary potential group.
const maxTerminals = 4

// Parser turns netlist text into subckt definitions.
type Parser struct {
	parser *participle.Parser[netlistFile]
	symKey string
}

// Option configures a Parser.
type Option func(*Parser)

// WithSymmetryKey sets the instance parameter that carries the symmetry tag.
func WithSymmetryKey(key string) Option {
	return func(p *Parser) { p.symKey = key }
}

// NewParser creates a new netlist parser instance.
func NewParser(opts ...Option) (*Parser, error) {
	parser, err := participle.Build[netlistFile](
		participle.Lexer(NetlistLexer),
		participle.Elide("Comment", "Whitespace", "Continuation"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	p := &Parser{parser: parser, symKey: "sg"}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parse parses a netlist from a reader.
func (p *Parser) Parse(r io.Reader) (*Netlist, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read netlist: %w", err)
	}
	return p.ParseString(string(data))
}

// ParseFile parses a netlist from a file path.
func (p *Parser) ParseFile(filename string) (*Netlist, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	nl, err := p.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return nl, nil
}

// ParseString parses a netlist from a string.
func (p *Parser) ParseString(input string) (*Netlist, error) {
	// "bus(0)" is the net "bus0" and "w=(2u)" is "w=2u".
	input = stripParens.Replace(input)
	// Every statement is terminated by EOL in the grammar.
	if !strings.HasSuffix(input, "\n") {
		input += "\n"
	}
	tree, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return p.build(tree)
}

// build is the single forward pass over statements with the "inside a
// subckt" flag.
func (p *Parser) build(tree *netlistFile) (*Netlist, error) {
	nl := &Netlist{Potentials: [][]string{nil}}
	var current *Subckt

	for _, st := range tree.Statements {
		line := st.Pos.Line
		switch {
		case st.Directive != nil:
			d := st.Directive
			switch strings.ToLower(d.Keyword) {
			case ".subckt", ".topckt":
				if len(d.Args) == 0 {
					return nil, fmt.Errorf("line %d: %w", line, ErrMissingName)
				}
				current = &Subckt{
					Name: d.Args[0],
					Pins: append([]string(nil), d.Args[1:]...),
					Top:  strings.EqualFold(d.Keyword, ".topckt"),
					Line: line,
				}
				if err := nl.add(current); err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
			case ".ends":
				current = nil
			case ".end":
			default:
				return nil, fmt.Errorf("line %d: %w: %s", line, ErrUnsupportedDirective, d.Keyword)
			}

		case st.Instance != nil:
			tokens := st.Instance.Tokens
			if current == nil {
				return nil, fmt.Errorf("line %d: %w: %s", line, ErrNotInSubckt, strings.Join(tokens, " "))
			}
			entry, err := p.parseEntry(nl, tokens)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			entry.Line = line
			current.Entries = append(current.Entries, entry)
		}
	}
	return nl, nil
}

// parseEntry scans an instance line from the last token backward: trailing
// key=value tokens are parameters, the first other token is the cell and
// everything between the instance name and the cell is the pin list.
func (p *Parser) parseEntry(nl *Netlist, tokens []string) (*Entry, error) {
	entry := &Entry{Name: tokens[0], Attrs: DefaultAttributes()}
	hasParams := false

	cellIdx := -1
	for i := len(tokens) - 1; i > 0; i-- {
		token := tokens[i]
		if !strings.Contains(token, "=") {
			cellIdx = i
			break
		}
		hasParams = true
		if err := applyParam(&entry.Attrs, token, p.symKey); err != nil {
			return nil, err
		}
	}
	if cellIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCell, entry.Name)
	}

	entry.Cell = tokens[cellIdx]
	pins := tokens[1:cellIdx]
	if len(pins) > maxTerminals && hasParams {
		entry.Pins = append([]string(nil), pins[:maxTerminals]...)
		entry.Attrs.Potential = nl.internPotential(pins[maxTerminals:])
	} else {
		entry.Pins = append([]string(nil), pins...)
	}
	return entry, nil
}
