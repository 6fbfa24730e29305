package symmetry

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// FileLexer tokenizes symmetry files: whitespace-separated names, one group
// or block header per line. Lines starting with "*" or "#" are comments.
var FileLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Comment", Pattern: `[*#][^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Name", Pattern: `[^\s*#]+`},
})

type symFile struct {
	Lines []*symLine `parser:"( @@ | EOL )*"`
}

type symLine struct {
	Pos lexer.Position

	Names []string `parser:"@Name+ EOL"`
}

var fileParser = participle.MustBuild[symFile](
	participle.Lexer(FileLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Parse reads a symmetry file. A line holding a single name that is not an
// instance reference (does not start with "x") opens the block of that
// subckt; every other line is a group of the current block. A header seen
// twice continues the same block.
func Parse(r io.Reader) (Declarations, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read symmetry file: %w", err)
	}
	src := string(data)
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	tree, err := fileParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	var decls Declarations
	var current *Declaration
	for _, line := range tree.Lines {
		if isHeader(line.Names) {
			current = decls.block(line.Names[0])
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%w: line %d: group %q before any subckt header",
				ErrMalformedFile, line.Pos.Line, strings.Join(line.Names, " "))
		}
		current.Groups = append(current.Groups, Group(line.Names))
	}
	return decls, nil
}

// ParseFile reads a symmetry file from path.
func ParseFile(path string) (Declarations, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	decls, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decls, nil
}

func isHeader(names []string) bool {
	return len(names) == 1 && !strings.HasPrefix(strings.ToLower(names[0]), "x")
}
