package spice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Default attribute values applied before an instance's own parameters.
const (
	DefaultWidth   = 1.0e-6
	DefaultLength  = 1.0e-6
	DefaultFingers = 1
)

// Attributes are the normalized parameters of one instance. Recognized keys
// map to typed fields; everything else is kept verbatim in Extra.
type Attributes struct {
	Width     float64
	Length    float64
	Fingers   int
	Potential int

	// SymmetryGroup is the symmetry tag; empty when the instance has none.
	SymmetryGroup string

	Extra map[string]string
}

// DefaultAttributes returns the attributes of an instance without parameters.
func DefaultAttributes() Attributes {
	return Attributes{
		Width:   DefaultWidth,
		Length:  DefaultLength,
		Fingers: DefaultFingers,
	}
}

// KeyValues renders the attributes as ordered key/value pairs: w, l, nf,
// potential, the symmetry tag (under symKey) and then extras by key.
func (a Attributes) KeyValues(symKey string) [][2]string {
	kv := [][2]string{
		{"w", formatFloat(a.Width)},
		{"l", formatFloat(a.Length)},
		{"nf", strconv.Itoa(a.Fingers)},
		{"potential", strconv.Itoa(a.Potential)},
	}
	if a.SymmetryGroup != "" {
		kv = append(kv, [2]string{symKey, a.SymmetryGroup})
	}
	keys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, [2]string{k, a.Extra[k]})
	}
	return kv
}

func (a Attributes) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, kv := range a.KeyValues("sg") {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", kv[0], kv[1])
	}
	b.WriteString("}")
	return b.String()
}

type paramKind int

const (
	paramOther paramKind = iota
	paramWidth
	paramLength
	paramFingers
	paramSymmetry
)

func classifyParam(key, symKey string) paramKind {
	switch strings.ToLower(key) {
	case "w", "wr", "wt":
		return paramWidth
	case "l", "lr", "lt":
		return paramLength
	case "nf", "mf":
		return paramFingers
	}
	if strings.EqualFold(key, symKey) {
		return paramSymmetry
	}
	return paramOther
}

// applyParam splits a key=value token and stores it in a.
func applyParam(a *Attributes, token, symKey string) error {
	parts := strings.Split(token, "=")
	if len(parts) != 2 {
		return fmt.Errorf("%w: %q", ErrMalformedParameter, token)
	}
	key, value := parts[0], parts[1]

	switch classifyParam(key, symKey) {
	case paramWidth:
		v, err := ParseDimension(value, 'w')
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrMalformedParameter, token, err)
		}
		a.Width = v
	case paramLength:
		v, err := ParseDimension(value, 'l')
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrMalformedParameter, token, err)
		}
		a.Length = v
	case paramFingers:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrMalformedParameter, token, err)
		}
		a.Fingers = n
	case paramSymmetry:
		a.SymmetryGroup = value
	default:
		if a.Extra == nil {
			a.Extra = make(map[string]string)
		}
		a.Extra[key] = value
	}
	return nil
}

// ParseDimension normalizes a width or length value to meters.
//
//	"2u"  -> 2e-6 ("2U" too)
//	"5n"  -> 5e-9
//	"3"   -> 3
//	"w1"  -> 2e-6 (legacy pattern: letter followed by index, (index+1) microns)
//
// letter is the parameter's own letter ('w' or 'l').
func ParseDimension(value string, letter byte) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}
	if value[0]|0x20 == letter {
		n, err := strconv.ParseFloat(value[1:], 64)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strconv.FormatFloat(n+1, 'f', -1, 64)+"e-6", 64)
	}
	switch value[len(value)-1] | 0x20 {
	case 'u':
		return strconv.ParseFloat(value[:len(value)-1]+"e-6", 64)
	case 'n':
		return strconv.ParseFloat(value[:len(value)-1]+"e-9", 64)
	}
	return strconv.ParseFloat(value, 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
