package build

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/kernel"
)

// down is the local drilling direction of the hole family.
var down = v3.Vec{Z: -1}

// inferDepth estimates a depth guaranteed to pass through the whole
// part at the given placement: the diagonal of the bounding box of the
// part fused with a unit probe box at the placement. The fuse is only
// for the box; the result is discarded.
func inferDepth(p *PartBuilder, pl Placement) (float64, error) {
	k := p.ctx.kern
	if p.part == nil {
		return 0, fmt.Errorf("infer hole depth: %w", ErrNothingToSubtractFrom)
	}
	probe, err := k.MakeBox(1, 1, 1, v3.Vec{X: -0.5, Y: -0.5, Z: -0.5})
	if err != nil {
		return 0, err
	}
	fused, err := k.Fuse(p.part, k.Moved(probe, pl.Loc))
	if err != nil {
		return 0, fmt.Errorf("infer hole depth: %w", err)
	}
	return k.BoundingBox(fused).Diagonal(), nil
}

// Hole drills a cylindrical hole at every active placement. Without
// Depth the hole passes through the whole part: the inferred depth is
// doubled and the cylinder straddles the placement so it starts above
// the part and exits below. With an explicit Depth the hole starts at
// the placement and drills down. Default mode is Subtract.
func Hole(c *Context, radius float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeSubtract)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	k := c.kern

	var solids []kernel.Shape
	for _, pl := range p.locs.Current() {
		depth := s.depth
		origin := v3.Vec{}
		if depth == 0 {
			d, err := inferDepth(p, pl)
			if err != nil {
				return nil, err
			}
			// The inferred cutter straddles the placement so it
			// enters above the part and exits below it.
			depth = 2 * d
			origin = v3.Vec{Z: depth / 2}
		}
		cyl, err := k.MakeCylinder(radius, depth, origin, down, 360)
		if err != nil {
			return nil, err
		}
		solids = append(solids, k.Moved(cyl, pl.Loc))
	}
	if err := p.addToContext(solids, true, s.mode); err != nil {
		return nil, err
	}
	p.locs.Reset()
	return k.Compound(solids...), nil
}

// CounterBoreHole drills a hole with a flat-bottomed enlargement at
// the surface, at every active placement.
func CounterBoreHole(c *Context, radius, boreRadius, boreDepth float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeSubtract)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	k := c.kern

	var solids []kernel.Shape
	for _, pl := range p.locs.Current() {
		depth := s.depth
		if depth == 0 {
			depth, err = inferDepth(p, pl)
			if err != nil {
				return nil, err
			}
		}
		hole, err := k.MakeCylinder(radius, depth, v3.Vec{}, down, 360)
		if err != nil {
			return nil, err
		}
		bore, err := k.MakeCylinder(boreRadius, boreDepth, v3.Vec{}, down, 360)
		if err != nil {
			return nil, err
		}
		cutter, err := k.Fuse(hole, bore)
		if err != nil {
			return nil, err
		}
		solids = append(solids, k.Moved(cutter, pl.Loc))
	}
	if err := p.addToContext(solids, true, s.mode); err != nil {
		return nil, err
	}
	p.locs.Reset()
	return k.Compound(solids...), nil
}

// CounterSinkHole drills a hole with a conical enlargement at the
// surface, at every active placement. SinkAngle sets the full cone
// angle in degrees.
func CounterSinkHole(c *Context, radius, sinkRadius float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeSubtract)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	k := c.kern

	coneHeight := sinkRadius / math.Tan(s.sinkAngle*math.Pi/360)
	var solids []kernel.Shape
	for _, pl := range p.locs.Current() {
		depth := s.depth
		if depth == 0 {
			depth, err = inferDepth(p, pl)
			if err != nil {
				return nil, err
			}
		}
		hole, err := k.MakeCylinder(radius, depth, v3.Vec{}, down, 360)
		if err != nil {
			return nil, err
		}
		sink, err := k.MakeCone(sinkRadius, 0, coneHeight, v3.Vec{}, down, 360)
		if err != nil {
			return nil, err
		}
		cutter, err := k.Fuse(hole, sink)
		if err != nil {
			return nil, err
		}
		solids = append(solids, k.Moved(cutter, pl.Loc))
	}
	if err := p.addToContext(solids, true, s.mode); err != nil {
		return nil, err
	}
	p.locs.Reset()
	return k.Compound(solids...), nil
}
