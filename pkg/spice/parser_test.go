package spice

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string, opts ...Option) *Netlist {
	t.Helper()
	p, err := NewParser(opts...)
	require.NoError(t, err)
	nl, err := p.ParseString(input)
	require.NoError(t, err)
	return nl
}

func TestParseSimpleSubckt(t *testing.T) {
	input := `* two-stage amplifier
.subckt AMP inp inn out vdd gnd
M1 n1 inp tail gnd nch w=2u l=180n nf=2
M2 out inn tail gnd nch w=2u l=180n
R1 (n1 vdd) res
.ends AMP
`
	nl := mustParse(t, input)

	require.Len(t, nl.Subckts, 1)
	amp := nl.Subckts[0]
	assert.Equal(t, "AMP", amp.Name)
	assert.Equal(t, []string{"inp", "inn", "out", "vdd", "gnd"}, amp.Pins)
	assert.False(t, amp.Top)
	require.Len(t, amp.Entries, 3)

	m1 := amp.Entries[0]
	assert.Equal(t, "M1", m1.Name)
	assert.Equal(t, []string{"n1", "inp", "tail", "gnd"}, m1.Pins)
	assert.Equal(t, "nch", m1.Cell)
	assert.Equal(t, 2e-6, m1.Attrs.Width)
	assert.Equal(t, 180e-9, m1.Attrs.Length)
	assert.Equal(t, 2, m1.Attrs.Fingers)
	assert.Equal(t, 0, m1.Attrs.Potential)
	assert.Equal(t, 3, m1.Line)

	assert.Equal(t, 1, amp.Entries[1].Attrs.Fingers)

	r1 := amp.Entries[2]
	assert.Equal(t, []string{"n1", "vdd"}, r1.Pins)
	assert.Equal(t, "res", r1.Cell)
	assert.Equal(t, DefaultWidth, r1.Attrs.Width)
	assert.Equal(t, DefaultLength, r1.Attrs.Length)

	got, ok := nl.Lookup("AMP")
	require.True(t, ok)
	assert.Same(t, amp, got)
	assert.True(t, nl.IsSubckt("AMP"))
	assert.False(t, nl.IsSubckt("nch"))
}

func TestParseDirectivesCaseInsensitive(t *testing.T) {
	input := `.SUBCKT INV a y vdd vss
MP y a vdd vdd pch
MN y a vss vss nch
.ENDS
.topckt TOP in out vdd vss
XI0 in mid vdd vss INV
XI1 mid out vdd vss INV
.ends TOP
.end
`
	nl := mustParse(t, input)
	require.Len(t, nl.Subckts, 2)
	assert.False(t, nl.Subckts[0].Top)
	assert.True(t, nl.Subckts[1].Top)
	assert.Equal(t, "INV", nl.Subckts[1].Entries[0].Cell)
	assert.Equal(t, []string{"in", "mid", "vdd", "vss"}, nl.Subckts[1].Entries[0].Pins)
}

func TestParseBlankAndCommentLinesKeepMode(t *testing.T) {
	input := `
.subckt A x y

* a comment inside the block
R1 x y res

.ends
* trailing comment
`
	nl := mustParse(t, input)
	require.Len(t, nl.Subckts, 1)
	assert.Len(t, nl.Subckts[0].Entries, 1)
}

func TestParseContinuationLines(t *testing.T) {
	input := `.subckt A d g s b
M1 d g s b
+ nch w=4u
+ l=1u
.ends
`
	nl := mustParse(t, input)
	e := nl.Subckts[0].Entries[0]
	assert.Equal(t, []string{"d", "g", "s", "b"}, e.Pins)
	assert.Equal(t, "nch", e.Cell)
	assert.Equal(t, 4e-6, e.Attrs.Width)
	assert.Equal(t, 1e-6, e.Attrs.Length)
}

func TestParseWithoutTrailingNewline(t *testing.T) {
	nl := mustParse(t, ".subckt A x\nR1 x 0 res\n.ends")
	assert.Len(t, nl.Subckts[0].Entries, 1)
}

func TestParseUnitConversion(t *testing.T) {
	tests := []struct {
		param string
		width float64
	}{
		{"w=2u", 2e-6},
		{"w=5n", 5e-9},
		{"w=3", 3},
		{"w=w1", 2.0e-6},
		{"wr=1.5u", 1.5e-6},
		{"wt=w0", 1e-6},
		{"W=7u", 7e-6},
		{"w=2U", 2e-6},
		{"w=5N", 5e-9},
		{"w=(2u)", 2e-6},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			nl := mustParse(t, ".subckt A d g s b\nM1 d g s b nch "+tt.param+"\n.ends\n")
			assert.Equal(t, tt.width, nl.Subckts[0].Entries[0].Attrs.Width)
		})
	}

	nl := mustParse(t, ".subckt A d g s b\nM1 d g s b nch l=l2 mf=4\nM2 d g s b nch lr=30n\n.ends\n")
	assert.Equal(t, 3e-6, nl.Subckts[0].Entries[0].Attrs.Length)
	assert.Equal(t, 4, nl.Subckts[0].Entries[0].Attrs.Fingers)
	assert.Equal(t, 30e-9, nl.Subckts[0].Entries[1].Attrs.Length)
}

func TestParseParenthesesInsideTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pins  []string
		cell  string
		width float64
	}{
		{"indexed subckt pins", ".subckt TOP bus(0) bus(1) g b\nM1 bus(0) g bus(1) b nch\n.ends\n",
			[]string{"bus0", "g", "bus1", "b"}, "nch", DefaultWidth},
		{"parenthesized value", ".subckt TOP d g s b\nM1 d g s b nch w=(2u)\n.ends\n",
			[]string{"d", "g", "s", "b"}, "nch", 2e-6},
		{"pin list glued to parentheses", ".subckt TOP d g s b\nM1 (d g s b)\n+ nch w=(4u)\n.ends\n",
			[]string{"d", "g", "s", "b"}, "nch", 4e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nl := mustParse(t, tt.input)
			top := nl.Subckts[0]
			require.Len(t, top.Entries, 1)
			e := top.Entries[0]
			assert.Equal(t, tt.pins, e.Pins)
			assert.Equal(t, tt.cell, e.Cell)
			assert.Equal(t, tt.width, e.Attrs.Width)
		})
	}

	nl := mustParse(t, ".subckt TOP bus(0) bus(1)\nR1 bus(0) bus(1) res\n.ends\n")
	assert.Equal(t, []string{"bus0", "bus1"}, nl.Subckts[0].Pins)
}

func TestParseKeepsUnknownParameters(t *testing.T) {
	nl := mustParse(t, ".subckt A d g s b\nM1 d g s b nch m=2 ad=1p sg=g1\n.ends\n")
	attrs := nl.Subckts[0].Entries[0].Attrs
	assert.Equal(t, map[string]string{"m": "2", "ad": "1p"}, attrs.Extra)
	assert.Equal(t, "g1", attrs.SymmetryGroup)
}

func TestParseCustomSymmetryKey(t *testing.T) {
	nl := mustParse(t, ".subckt A d g s b\nM1 d g s b nch match=g7 sg=x\n.ends\n", WithSymmetryKey("match"))
	attrs := nl.Subckts[0].Entries[0].Attrs
	assert.Equal(t, "g7", attrs.SymmetryGroup)
	assert.Equal(t, map[string]string{"sg": "x"}, attrs.Extra)
}

func TestParseLeftmostDuplicateParameterWins(t *testing.T) {
	nl := mustParse(t, ".subckt A d g s b\nM1 d g s b nch w=1u w=9u\n.ends\n")
	assert.Equal(t, 1e-6, nl.Subckts[0].Entries[0].Attrs.Width)
}

func TestParsePotentialGroups(t *testing.T) {
	input := `.subckt A d g s b dnw1 dnw2 pw
M1 d g s b dnw1 pw nch_5 w=1u
M2 d g s b dnw1 pw nch_5 w=1u
M3 d g s b dnw2 pw nch_5 w=1u
M4 d g s b nch
X5 d g s b dnw1 pw CELL
.ends
`
	nl := mustParse(t, input)
	e := nl.Subckts[0].Entries

	assert.Equal(t, []string{"d", "g", "s", "b"}, e[0].Pins)
	assert.Equal(t, 1, e[0].Attrs.Potential)
	assert.Equal(t, 1, e[1].Attrs.Potential)
	assert.Equal(t, 2, e[2].Attrs.Potential)
	assert.Equal(t, 0, e[3].Attrs.Potential)

	// Without any parameter the extra pins stay in the pin list.
	assert.Equal(t, []string{"d", "g", "s", "b", "dnw1", "pw"}, e[4].Pins)
	assert.Equal(t, 0, e[4].Attrs.Potential)

	require.Len(t, nl.Potentials, 3)
	assert.Nil(t, nl.Potentials[0])
	assert.Equal(t, []string{"dnw1", "pw"}, nl.Potentials[1])
	assert.Equal(t, []string{"dnw2", "pw"}, nl.Potentials[2])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"instance outside subckt", "M1 d g s b nch\n", ErrNotInSubckt},
		{"instance after ends", ".subckt A x\n.ends\nR1 x y res\n", ErrNotInSubckt},
		{"malformed parameter", ".subckt A d g s b\nM1 d g s b nch w=1=2\n.ends\n", ErrMalformedParameter},
		{"bad width", ".subckt A d g s b\nM1 d g s b nch w=abc\n.ends\n", ErrMalformedParameter},
		{"bad fingers", ".subckt A d g s b\nM1 d g s b nch nf=two\n.ends\n", ErrMalformedParameter},
		{"missing cell", ".subckt A x\nR1 w=1u\n.ends\n", ErrMissingCell},
		{"name only", ".subckt A x\nR1\n.ends\n", ErrMissingCell},
		{"missing subckt name", ".subckt\n.ends\n", ErrMissingName},
		{"duplicate subckt", ".subckt A x\n.ends\n.subckt A y\n.ends\n", ErrDuplicateSubckt},
		{"param directive", ".param vdd=1.8\n", ErrUnsupportedDirective},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParser()
			require.NoError(t, err)
			_, err = p.ParseString(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseErrorReportsLine(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)
	_, err = p.ParseString("* header\n\nM1 d g s b nch\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amp.sp")
	require.NoError(t, os.WriteFile(path, []byte(".subckt AMP a b\nR1 a b res\n.ends\n"), 0o644))

	p, err := NewParser()
	require.NoError(t, err)

	nl, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "AMP", nl.Subckts[0].Name)

	_, err = p.ParseFile(filepath.Join(dir, "missing.sp"))
	assert.Error(t, err)
}

func TestParseDimension(t *testing.T) {
	v, err := ParseDimension("l3", 'l')
	require.NoError(t, err)
	assert.Equal(t, 4e-6, v)

	_, err = ParseDimension("", 'w')
	assert.Error(t, err)

	_, err = ParseDimension("w", 'w')
	assert.Error(t, err)
}

func TestEntryString(t *testing.T) {
	nl := mustParse(t, ".subckt A d g s b\nM1 d g s b nch w=2u\n.ends\n")
	assert.Equal(t,
		"name: M1; pins: d g s b; cell: nch; attr: {w: 2e-06, l: 1e-06, nf: 1, potential: 0}",
		nl.Subckts[0].Entries[0].String())
}
