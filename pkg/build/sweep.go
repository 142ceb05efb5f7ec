package build

import (
	"fmt"

	"github.com/chazu/burl/pkg/kernel"
)

// Sweep moves section faces along a path. The path comes from WithPath
// or from the builder's pending edges assembled into a wire; sections
// come from WithSections or the pending faces. Consumed pending
// geometry is cleared. With Multisection all sections sweep as one
// solid; otherwise each section sweeps independently.
func Sweep(c *Context, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	k := c.kern

	// Frenet orientation, a fixed normal and a binormal guide are
	// alternative ways to orient the section; at most one applies.
	guides := 0
	if s.frenet {
		guides++
	}
	if s.normal != nil {
		guides++
	}
	if s.binormal != nil {
		guides++
	}
	if guides > 1 {
		return nil, fmt.Errorf("sweep: frenet, normal and binormal are mutually exclusive")
	}
	guide := kernel.SweepGuide{Frenet: s.frenet, Normal: s.normal, Binormal: s.binormal}

	path := s.path
	if path == nil {
		if len(p.pendingEdges) == 0 {
			return nil, fmt.Errorf("sweep: no path")
		}
		path, err = p.PendingEdgesAsWire()
		if err != nil {
			return nil, fmt.Errorf("sweep: assemble path: %w", err)
		}
		p.clearPendingEdges()
	}

	sections := s.sections
	if len(sections) == 0 {
		sections = p.pendingFaces
		p.clearPendingFaces()
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("sweep: no section faces")
	}

	var solids []kernel.Shape
	if s.multi {
		solid, err := k.SweepMulti(sections, path, guide)
		if err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
		solids = append(solids, solid)
	} else {
		for _, f := range sections {
			solid, err := k.Sweep(f, path, guide, s.transition)
			if err != nil {
				return nil, fmt.Errorf("sweep: %w", err)
			}
			solids = append(solids, solid)
		}
	}

	// The swept solids land at every active placement.
	var placed []kernel.Shape
	for _, pl := range p.locs.Current() {
		for _, solid := range solids {
			placed = append(placed, k.Moved(solid, pl.Loc))
		}
	}
	if err := p.addToContext(placed, true, s.mode); err != nil {
		return nil, err
	}
	p.locs.Reset()
	return k.Compound(placed...), nil
}
