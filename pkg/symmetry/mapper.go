package symmetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/spiceflat/internal/ctxlog"
	"github.com/OpenTraceLab/spiceflat/pkg/flatten"
	"github.com/OpenTraceLab/spiceflat/pkg/hier"
	"github.com/OpenTraceLab/spiceflat/pkg/spice"
)

// Mapper resolves declarations against the graph flattened from Root.
type Mapper struct {
	Graph     *flatten.Graph
	Hierarchy *hier.Hierarchy
	Root      *spice.Subckt
	Policy    Policy
}

// Resolve maps every declared group onto node ids. Declarations of the root
// are looked up as "root/elem"; declarations of any other subckt are looked
// up below each instance path that leads to it, as "root/path/elem".
func (m *Mapper) Resolve(ctx context.Context, decls Declarations) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	res := &Result{Declarations: decls}

	for _, d := range decls {
		s, ok := m.Hierarchy.Subckt(d.Subckt)
		if !ok {
			logger.Warn("Symmetry declarations name an undefined subckt, skipping them.",
				"subckt", d.Subckt, "groups", len(d.Groups))
			continue
		}

		paths := []string{""}
		if s.Name != m.Root.Name {
			paths = m.Hierarchy.InstancePaths(m.Root.Name, s.Name)
			switch {
			case len(paths) == 0:
				logger.Warn("Subckt is not instantiated under the root, skipping its declarations.",
					"subckt", s.Name, "root", m.Root.Name, "groups", len(d.Groups))
				continue
			case len(paths) > 1 && m.Policy == PolicyRequireSingle:
				return nil, fmt.Errorf("%w: %s appears at %s under %s",
					ErrAmbiguousInstance, s.Name, strings.Join(paths, ", "), m.Root.Name)
			}
		}

		for _, path := range paths {
			prefix := m.Root.Name + "/"
			if path != "" {
				prefix += path + "/"
			}
			for _, g := range d.Groups {
				rg, err := m.resolveGroup(s, prefix, g)
				if err != nil {
					return nil, fmt.Errorf("subckt %s: %w", s.Name, err)
				}
				rg.Subckt = s.Name
				rg.Path = path
				res.Groups = append(res.Groups, rg)
			}
		}
	}

	logger.Debug("Resolved symmetry declarations.",
		"declarations", len(decls),
		"groups", len(res.Groups),
		"pairs", len(res.Pairs()))
	return res, nil
}

func (m *Mapper) resolveGroup(s *spice.Subckt, prefix string, g Group) (ResolvedGroup, error) {
	if len(g) == 0 {
		return ResolvedGroup{}, fmt.Errorf("%w: empty group", ErrInconsistent)
	}

	if len(g) == 1 {
		if e, ok := s.Entry(g[0]); ok && m.Hierarchy.Netlist().IsSubckt(e.Cell) {
			return m.resolveBlock(prefix + g[0])
		}
	}

	rg := ResolvedGroup{
		Names: make([]string, 0, len(g)),
		Nodes: make([]int, 0, len(g)),
	}
	for _, elem := range g {
		name := prefix + elem
		ids := m.Graph.NodesNamed(name)
		if len(ids) != 1 {
			return ResolvedGroup{}, fmt.Errorf("%w: %s matches %d nodes", ErrInconsistent, name, len(ids))
		}
		rg.Names = append(rg.Names, name)
		rg.Nodes = append(rg.Nodes, ids[0])
	}
	return rg, nil
}

// resolveBlock collects every node flattened from the instance called name.
func (m *Mapper) resolveBlock(name string) (ResolvedGroup, error) {
	rg := ResolvedGroup{Names: []string{name}, Block: true}
	inside := name + "/"
	for _, n := range m.Graph.Nodes {
		if strings.HasPrefix(n.Name, inside) {
			rg.Nodes = append(rg.Nodes, n.ID)
		}
	}
	if len(rg.Nodes) == 0 {
		return ResolvedGroup{}, fmt.Errorf("%w: instance %s contains no devices", ErrInconsistent, name)
	}
	return rg, nil
}
