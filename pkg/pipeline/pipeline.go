// Package pipeline runs the per-netlist stages in order: parse, build the
// hierarchy, pick the root, flatten, extract symmetry and map it onto the
// graph. The first failing stage aborts the netlist and no partial result
// is returned.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/spiceflat/internal/ctxlog"
	"github.com/OpenTraceLab/spiceflat/pkg/config"
	"github.com/OpenTraceLab/spiceflat/pkg/flatten"
	"github.com/OpenTraceLab/spiceflat/pkg/hier"
	"github.com/OpenTraceLab/spiceflat/pkg/spice"
	"github.com/OpenTraceLab/spiceflat/pkg/symmetry"
)

// SymmetrySource tells where the declarations of a run came from.
type SymmetrySource string

const (
	SourceFile       SymmetrySource = "file"
	SourceAttributes SymmetrySource = "attributes"
)

// Options control a single run. The zero value uses the file name as root
// hint, the side file if present, PolicyRequireSingle and the built-in
// configuration.
type Options struct {
	RootHint     string
	SymmetryFile string
	Policy       symmetry.Policy
	Config       *config.Config
}

// Result holds every artifact of a successful run.
type Result struct {
	Path           string
	Netlist        *spice.Netlist
	Hierarchy      *hier.Hierarchy
	Root           *spice.Subckt
	Graph          *flatten.Graph
	SymmetrySource SymmetrySource
	SymmetryFile   string
	Symmetry       *symmetry.Result
}

// RootHint returns the base name of path without its extension.
func RootHint(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SideFile returns the symmetry file next to path ("amp.sp" -> "amp.txt")
// if it exists.
func SideFile(path string) (string, bool) {
	side := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	if side == path {
		return "", false
	}
	info, err := os.Stat(side)
	if err != nil || info.IsDir() {
		return "", false
	}
	return side, true
}

// Load parses path and builds its hierarchy without flattening.
func Load(ctx context.Context, path string, cfg *config.Config) (*spice.Netlist, *hier.Hierarchy, error) {
	logger := ctxlog.FromContext(ctx)

	cfg, err := orDefault(cfg)
	if err != nil {
		return nil, nil, err
	}
	parser, err := spice.NewParser(spice.WithSymmetryKey(cfg.SymmetryTag))
	if err != nil {
		return nil, nil, err
	}
	nl, err := parser.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Parsed netlist.", "path", path, "subckts", len(nl.Subckts))

	return nl, hier.Build(nl), nil
}

// Run processes the netlist at path.
func Run(ctx context.Context, path string, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("netlist", path)
	ctx = ctxlog.WithLogger(ctx, logger)

	cfg, err := orDefault(opts.Config)
	if err != nil {
		return nil, err
	}
	cls, err := cfg.Classifier()
	if err != nil {
		return nil, err
	}

	nl, h, err := Load(ctx, path, cfg)
	if err != nil {
		return nil, err
	}

	// A fully cyclic hierarchy has no root candidate at all.
	if err := h.DetectCycles(); err != nil {
		return nil, err
	}

	hint := opts.RootHint
	if hint == "" {
		hint = RootHint(path)
	}
	root, err := h.ResolveRoot(hint)
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved root subckt.", "root", root.Name, "hint", hint)

	graph, err := flatten.Flatten(ctx, h, root, cls)
	if err != nil {
		return nil, fmt.Errorf("flatten %s: %w", root.Name, err)
	}

	res := &Result{
		Path:      path,
		Netlist:   nl,
		Hierarchy: h,
		Root:      root,
		Graph:     graph,
	}

	decls, err := res.declarations(opts.SymmetryFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("Extracted symmetry declarations.",
		"source", res.SymmetrySource,
		"file", res.SymmetryFile,
		"subckts", len(decls),
		"groups", decls.GroupCount())

	mapper := &symmetry.Mapper{Graph: graph, Hierarchy: h, Root: root, Policy: opts.Policy}
	res.Symmetry, err = mapper.Resolve(ctx, decls)
	if err != nil {
		return nil, err
	}

	logger.Info("Processed netlist.",
		"root", root.Name,
		"nodes", len(graph.Nodes),
		"nets", len(graph.Nets),
		"pairs", len(res.Symmetry.Pairs()))
	return res, nil
}

// declarations reads an explicit symmetry file, else the side file, else
// the instance tags.
func (r *Result) declarations(file string) (symmetry.Declarations, error) {
	if file == "" {
		file, _ = SideFile(r.Path)
	}
	if file != "" {
		decls, err := symmetry.ParseFile(file)
		if err != nil {
			return nil, err
		}
		r.SymmetrySource = SourceFile
		r.SymmetryFile = file
		return decls, nil
	}
	r.SymmetrySource = SourceAttributes
	return symmetry.FromAttributes(r.Netlist), nil
}

func orDefault(cfg *config.Config) (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	cfg, err := config.Default()
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to load default configuration: %w", err)
	}
	return cfg, nil
}
