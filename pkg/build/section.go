package build

import (
	"fmt"

	"github.com/chazu/burl/pkg/kernel"
)

// Section cuts the part with plane faces, keeping the planar cross
// sections. Planes come from SectionBy or from the active placements,
// offset along their normals by AtHeight. Default mode is Intersect.
func Section(c *Context, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeIntersect)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	if p.part == nil {
		return nil, fmt.Errorf("section: %w", ErrNothingToIntersectWith)
	}
	k := c.kern

	maxSize := k.BoundingBox(p.part).Diagonal()

	planes := s.planes
	fromPlacements := len(planes) == 0
	if fromPlacements {
		for _, pl := range p.locs.Current() {
			planes = append(planes, pl.Plane)
		}
	}

	var faces []kernel.Shape
	for _, pl := range planes {
		base := pl.Origin.Add(pl.ZDir.Normalize().MulScalar(s.height))
		f, err := k.MakePlaneFace(2*maxSize, 2*maxSize, base, pl.ZDir)
		if err != nil {
			return nil, fmt.Errorf("section: %w", err)
		}
		faces = append(faces, f)
	}

	// section planes are cutting tools, not sketch material
	if err := p.addToContext(faces, false, s.mode); err != nil {
		return nil, err
	}
	if fromPlacements {
		p.locs.Reset()
	}
	return k.Compound(faces...), nil
}
