// Package config loads the device-family tables, power net names and
// symmetry tag key from HCL. The built-in defaults are embedded; a user file
// may replace any section and can refer to the defaults through the
// "defaults" variable:
//
//	family "mosfet" {
//	  polarity = "n"
//	  cells    = concat(defaults.nmos, ["my_nfet"])
//	}
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/OpenTraceLab/spiceflat/pkg/device"
)

//go:embed defaults.hcl
var defaultsHCL []byte

// DefaultSymmetryTag is the instance parameter key carrying symmetry groups.
const DefaultSymmetryTag = "sg"

// Config is the immutable classification data injected into the parser and
// flattener at startup.
type Config struct {
	Families    []device.Table
	Power       device.PowerNames
	SymmetryTag string
}

type fileRoot struct {
	Families []*familyBlock `hcl:"family,block"`
	Power    *powerBlock    `hcl:"power,block"`
	Symmetry *symmetryBlock `hcl:"symmetry,block"`
}

type familyBlock struct {
	Kind     string   `hcl:"kind,label"`
	Polarity string   `hcl:"polarity,optional"`
	Cells    []string `hcl:"cells"`
}

type powerBlock struct {
	Supply []string `hcl:"supply,optional"`
	Ground []string `hcl:"ground,optional"`
}

type symmetryBlock struct {
	Tag string `hcl:"tag"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	root, err := decode(defaultsHCL, "defaults.hcl", baseEvalContext())
	if err != nil {
		return nil, err
	}
	cfg := &Config{SymmetryTag: DefaultSymmetryTag}
	if err := cfg.apply(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a user configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes src on top of the defaults. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	evalCtx := baseEvalContext()
	evalCtx.Variables = map[string]cty.Value{"defaults": cfg.defaultsValue()}

	root, err := decode(src, filename, evalCtx)
	if err != nil {
		return nil, err
	}
	if err := cfg.apply(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Classifier builds a device classifier from the configured tables.
func (c *Config) Classifier() (*device.Classifier, error) {
	return device.NewClassifier(c.Families, c.Power)
}

func decode(src []byte, filename string, evalCtx *hcl.EvalContext) (*fileRoot, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to parse %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalCtx, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to decode %s: %w", filename, diags)
	}
	return &root, nil
}

// apply replaces every section that root declares.
func (c *Config) apply(root *fileRoot) error {
	if len(root.Families) > 0 {
		tables := make([]device.Table, 0, len(root.Families))
		for _, fb := range root.Families {
			kind, err := device.ParseKind(fb.Kind)
			if err != nil {
				return fmt.Errorf("config: family %q: %w", fb.Kind, err)
			}
			pol, err := device.ParsePolarity(fb.Polarity)
			if err != nil {
				return fmt.Errorf("config: family %q: %w", fb.Kind, err)
			}
			fam := device.Family{Kind: kind, Polarity: pol}
			if !fam.Valid() {
				return fmt.Errorf("config: family %q: polarity %q not allowed", fb.Kind, fb.Polarity)
			}
			tables = append(tables, device.Table{Family: fam, Cells: fb.Cells})
		}
		c.Families = tables
	}
	if root.Power != nil {
		c.Power = device.PowerNames{Supply: root.Power.Supply, Ground: root.Power.Ground}
	}
	if root.Symmetry != nil {
		if root.Symmetry.Tag == "" {
			return fmt.Errorf("config: symmetry tag must not be empty")
		}
		c.SymmetryTag = root.Symmetry.Tag
	}
	return nil
}

// defaultsValue exposes the current tables to user files as an HCL object.
func (c *Config) defaultsValue() cty.Value {
	cells := make(map[string][]string)
	for _, t := range c.Families {
		key := t.Family.String()
		cells[key] = append(cells[key], t.Cells...)
	}
	attrs := map[string]cty.Value{
		"supply": stringList(c.Power.Supply),
		"ground": stringList(c.Power.Ground),
	}
	for _, f := range []device.Family{device.PMOS, device.NMOS, device.NPN, device.PNP, device.Resistor, device.Capacitor, device.Diode} {
		attrs[f.String()] = stringList(cells[f.String()])
	}
	return cty.ObjectVal(attrs)
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}

func baseEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"concat":   stdlib.ConcatFunc,
			"distinct": stdlib.DistinctFunc,
			"lower":    stdlib.LowerFunc,
			"upper":    stdlib.UpperFunc,
		},
	}
}
