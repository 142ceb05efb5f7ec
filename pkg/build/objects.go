package build

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/geom"
	"github.com/chazu/burl/pkg/kernel"
)

// replicate moves base by the builder's rotation and every active
// placement, merges the copies into the part, and resets the active
// placement set.
func replicate(p *PartBuilder, base kernel.Shape, s *settings) (kernel.Shape, error) {
	k := p.ctx.kern
	var solids []kernel.Shape
	for _, pl := range p.locs.Current() {
		solids = append(solids, k.Moved(base, pl.Loc.Mul(s.rotation)))
	}
	if err := p.addToContext(solids, true, s.mode); err != nil {
		return nil, err
	}
	p.locs.Reset()
	return k.Compound(solids...), nil
}

// Box creates a length x width x height box at every active placement.
func Box(c *Context, length, width, height float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	origin := v3.Vec{
		X: cornerOffset(length, s.centered[0]),
		Y: cornerOffset(width, s.centered[1]),
		Z: cornerOffset(height, s.centered[2]),
	}
	base, err := c.kern.MakeBox(length, width, height, origin)
	if err != nil {
		return nil, err
	}
	return replicate(p, base, &s)
}

// Cylinder creates a cylinder of the given radius and height along the
// local Z axis at every active placement.
func Cylinder(c *Context, radius, height float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	origin := v3.Vec{Z: cornerOffset(height, s.centered[2])}
	base, err := c.kern.MakeCylinder(radius, height, origin, v3.Vec{Z: 1}, s.arc)
	if err != nil {
		return nil, err
	}
	return replicate(p, base, &s)
}

// Cone creates a truncated cone along the local Z axis at every active
// placement.
func Cone(c *Context, bottomRadius, topRadius, height float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	origin := v3.Vec{Z: cornerOffset(height, s.centered[2])}
	base, err := c.kern.MakeCone(bottomRadius, topRadius, height, origin, v3.Vec{Z: 1}, s.arc)
	if err != nil {
		return nil, err
	}
	return replicate(p, base, &s)
}

// Sphere creates a sphere at every active placement.
func Sphere(c *Context, radius float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	origin := v3.Vec{
		X: edgeOffset(radius, s.centered[0]),
		Y: edgeOffset(radius, s.centered[1]),
		Z: edgeOffset(radius, s.centered[2]),
	}
	base, err := c.kern.MakeSphere(radius, origin, s.arc, s.arc2, s.arc3)
	if err != nil {
		return nil, err
	}
	return replicate(p, base, &s)
}

// Torus creates a torus around the local Z axis at every active
// placement.
func Torus(c *Context, majorRadius, minorRadius float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	origin := v3.Vec{
		X: edgeOffset(majorRadius+minorRadius, s.centered[0]),
		Y: edgeOffset(majorRadius+minorRadius, s.centered[1]),
		Z: edgeOffset(minorRadius, s.centered[2]),
	}
	base, err := c.kern.MakeTorus(majorRadius, minorRadius, origin, v3.Vec{Z: 1}, s.arc, s.arc2)
	if err != nil {
		return nil, err
	}
	return replicate(p, base, &s)
}

// Wedge creates a wedge at every active placement. The top face at
// y=dy spans [xmin,xmax] x [zmin,zmax].
func Wedge(c *Context, dx, dy, dz, xmin, zmin, xmax, zmax float64, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	base, err := c.kern.MakeWedge(dx, dy, dz, xmin, zmin, xmax, zmax)
	if err != nil {
		return nil, err
	}
	off := v3.Vec{
		X: cornerOffset(dx, s.centered[0]),
		Y: cornerOffset(dy, s.centered[1]),
		Z: cornerOffset(dz, s.centered[2]),
	}
	if off.Length() != 0 {
		base = c.kern.Moved(base, geom.Translation(off))
	}
	return replicate(p, base, &s)
}

func cornerOffset(dim float64, centered bool) float64 {
	if centered {
		return -dim / 2
	}
	return 0
}

func edgeOffset(r float64, centered bool) float64 {
	if centered {
		return 0
	}
	return r
}
