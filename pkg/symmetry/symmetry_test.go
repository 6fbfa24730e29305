package symmetry

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/spiceflat/pkg/config"
	"github.com/OpenTraceLab/spiceflat/pkg/flatten"
	"github.com/OpenTraceLab/spiceflat/pkg/hier"
	"github.com/OpenTraceLab/spiceflat/pkg/spice"
)

const diffPair = `
.subckt PAIR inp inn outp outn tail vss
M1 outp inp tail vss nch sg=in
M2 outn inn tail vss nch sg=in
R1 outp vss res
R2 outn vss res
.ends
`

type fixture struct {
	nl    *spice.Netlist
	h     *hier.Hierarchy
	root  *spice.Subckt
	graph *flatten.Graph
}

func setup(t *testing.T, input, root string) *fixture {
	t.Helper()
	p, err := spice.NewParser()
	require.NoError(t, err)
	nl, err := p.ParseString(input)
	require.NoError(t, err)

	cfg, err := config.Default()
	require.NoError(t, err)
	cls, err := cfg.Classifier()
	require.NoError(t, err)

	h := hier.Build(nl)
	s, ok := nl.Lookup(root)
	require.True(t, ok)
	g, err := flatten.Flatten(context.Background(), h, s, cls)
	require.NoError(t, err)
	return &fixture{nl: nl, h: h, root: s, graph: g}
}

func (f *fixture) resolve(decls Declarations, policy Policy) (*Result, error) {
	m := &Mapper{Graph: f.graph, Hierarchy: f.h, Root: f.root, Policy: policy}
	return m.Resolve(context.Background(), decls)
}

func mustParse(t *testing.T, src string) Declarations {
	t.Helper()
	decls, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return decls
}

func TestParseFile(t *testing.T) {
	src := `* symmetry constraints
# generated
TOP
M1 M2
x1 x2
XP

PAIR
M1 M2
TOP
M4 M5`
	decls := mustParse(t, src)

	require.Len(t, decls, 2)
	assert.Equal(t, "TOP", decls[0].Subckt)
	assert.Equal(t, []Group{{"M1", "M2"}, {"x1", "x2"}, {"XP"}, {"M4", "M5"}}, decls[0].Groups)
	assert.Equal(t, "PAIR", decls[1].Subckt)
	assert.Equal(t, []Group{{"M1", "M2"}}, decls[1].Groups)
	assert.Equal(t, 5, decls.GroupCount())

	var buf bytes.Buffer
	_, err := decls.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, decls, mustParse(t, buf.String()))
}

func TestParseGroupBeforeHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("M1 M2\nTOP\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFile))
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amp.txt")
	require.NoError(t, os.WriteFile(path, []byte("AMP\nM1 M2\n"), 0o644))

	decls, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, Declarations{{Subckt: "AMP", Groups: []Group{{"M1", "M2"}}}}, decls)

	_, err = ParseFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestFromAttributes(t *testing.T) {
	p, err := spice.NewParser()
	require.NoError(t, err)
	nl, err := p.ParseString(`
.subckt TOP a b c vss
A a b c vss nch sg=g1
B a b c vss nch sg=g1
D a b c vss nch
C a b c vss nch sg=g1
E a b c vss nch sg=g2
.ends
.subckt EMPTY a
R1 a 0 res
.ends
`)
	require.NoError(t, err)

	decls := FromAttributes(nl)
	require.Len(t, decls, 1)
	assert.Equal(t, "TOP", decls[0].Subckt)
	assert.Equal(t, []Group{{"A", "B"}, {"A", "C"}, {"B", "C"}}, decls[0].Groups)
}

func TestResolveRootPair(t *testing.T) {
	f := setup(t, `
.subckt TOP a b c vss
M1 a b c vss nch
M2 b a c vss nch
.ends
`, "TOP")

	res, err := f.resolve(mustParse(t, "TOP\nM1 M2\n"), PolicyRequireSingle)
	require.NoError(t, err)

	m1 := f.graph.NodesNamed("TOP/M1")[0]
	m2 := f.graph.NodesNamed("TOP/M2")[0]
	assert.Equal(t, [][]int{{m1, m2}}, res.Pairs())
	require.Len(t, res.Groups, 1)
	assert.Equal(t, []string{"TOP/M1", "TOP/M2"}, res.Groups[0].Names)
	assert.Empty(t, res.Groups[0].Path)
	assert.Empty(t, res.SelfSymmetric())
}

func TestResolveNonRoot(t *testing.T) {
	f := setup(t, diffPair+`
.subckt TOP inp inn outp outn vss
XP inp inn outp outn tail vss PAIR
R9 tail vss res
.ends
`, "TOP")

	res, err := f.resolve(FromAttributes(f.nl), PolicyRequireSingle)
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	g := res.Groups[0]
	assert.Equal(t, "PAIR", g.Subckt)
	assert.Equal(t, "XP", g.Path)
	assert.Equal(t, []string{"TOP/XP/M1", "TOP/XP/M2"}, g.Names)
	assert.Equal(t, []int{f.graph.NodesNamed("TOP/XP/M1")[0], f.graph.NodesNamed("TOP/XP/M2")[0]}, g.Nodes)
}

const twoPairs = diffPair + `
.subckt TOP inp inn outp outn vss
XP0 inp inn outp outn tail vss PAIR
XP1 inn inp outn outp tail vss PAIR
.ends
`

func TestResolveAmbiguousInstance(t *testing.T) {
	f := setup(t, twoPairs, "TOP")
	decls := mustParse(t, "PAIR\nM1 M2\n")

	_, err := f.resolve(decls, PolicyRequireSingle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmbiguousInstance))
	assert.Contains(t, err.Error(), "XP0, XP1")

	res, err := f.resolve(decls, PolicyApplyAll)
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "XP0", res.Groups[0].Path)
	assert.Equal(t, []string{"TOP/XP1/M1", "TOP/XP1/M2"}, res.Groups[1].Names)
	assert.Len(t, res.Pairs(), 2)
}

func TestResolveSelfSymmetry(t *testing.T) {
	f := setup(t, diffPair+`
.subckt TOP inp inn outp outn vss
XP inp inn outp outn tail vss PAIR
R9 tail vss res
.ends
`, "TOP")

	decls := Declarations{
		{Subckt: "TOP", Groups: []Group{{"R9"}, {"XP"}}},
		{Subckt: "PAIR", Groups: []Group{{"R1", "R2"}}},
	}
	res, err := f.resolve(decls, PolicyRequireSingle)
	require.NoError(t, err)
	require.Len(t, res.Groups, 3)

	self := res.SelfSymmetric()
	require.Len(t, self, 2)
	assert.False(t, self[0].Block)
	assert.Equal(t, []int{f.graph.NodesNamed("TOP/R9")[0]}, self[0].Nodes)

	assert.True(t, self[1].Block)
	assert.Equal(t, []string{"TOP/XP"}, self[1].Names)
	assert.Len(t, self[1].Nodes, 4)

	assert.Equal(t, [][]int{{
		f.graph.NodesNamed("TOP/XP/R1")[0],
		f.graph.NodesNamed("TOP/XP/R2")[0],
	}}, res.Pairs())
}

func TestResolveErrors(t *testing.T) {
	f := setup(t, twoPairs+`
.subckt UNUSED a
R1 a 0 res
.ends
`, "TOP")

	tests := []struct {
		name string
		src  string
		want error
	}{
		{"missing element", "TOP\nXP0 M9\n", ErrInconsistent},
		{"instance is not a device", "TOP\nXP0 XP1\n", ErrInconsistent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.resolve(mustParse(t, tt.src), PolicyApplyAll)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	// Declarations for a subckt the root never reaches are skipped.
	decls := Declarations{{Subckt: "UNUSED", Groups: []Group{{"R1"}}}}
	res, err := f.resolve(decls, PolicyRequireSingle)
	require.NoError(t, err)
	assert.Empty(t, res.Groups)
}

func TestResolveSkipsUndefinedSubckt(t *testing.T) {
	f := setup(t, twoPairs, "TOP")

	// A bare device name reads as a header for a subckt that does not exist.
	decls := mustParse(t, "PAIR\nM1 M2\nM7\nM3 M4\nNOPE\nM1 M2\n")
	require.Len(t, decls, 3)
	assert.Equal(t, "M7", decls[1].Subckt)

	res, err := f.resolve(decls, PolicyApplyAll)
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, []string{"TOP/XP0/M1", "TOP/XP0/M2"}, res.Groups[0].Names)
	assert.Equal(t, []string{"TOP/XP1/M1", "TOP/XP1/M2"}, res.Groups[1].Names)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("all")
	require.NoError(t, err)
	assert.Equal(t, PolicyApplyAll, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRequireSingle, p)
	assert.Equal(t, "single", p.String())

	_, err = ParsePolicy("some")
	assert.Error(t, err)
}
