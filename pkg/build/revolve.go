package build

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/kernel"
)

const coplanarTol = 1e-9

// Revolve spins profile faces around an axis. Profiles come from
// WithSections or the builder's pending faces, which are consumed. The
// axis must lie in each profile's plane. ArcSize limits the sweep
// angle; the default and any multiple of 360 is a full revolution.
func Revolve(c *Context, axisOrigin, axisDir v3.Vec, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	k := c.kern

	arc := math.Mod(s.arc, 360)
	if arc < 0 {
		arc += 360
	}
	if arc == 0 {
		arc = 360
	}

	profiles := s.sections
	planes := make([]Placement, 0)
	if len(profiles) == 0 {
		profiles = p.pendingFaces
		for i := range p.pendingFacePlanes {
			planes = append(planes, Placement{Plane: p.pendingFacePlanes[i]})
		}
		p.clearPendingFaces()
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("revolve: no profile faces")
	}

	var solids []kernel.Shape
	for i, f := range profiles {
		pl := planeOfFace(k, f)
		if i < len(planes) {
			pl = planes[i].Plane
		}
		if !pl.ContainsLine(axisOrigin, axisDir, coplanarTol) {
			return nil, fmt.Errorf("revolve: axis not in profile plane: %w", ErrInvalidAxis)
		}
		solid, err := k.Revolve(f, arc, axisOrigin, axisDir)
		if err != nil {
			return nil, fmt.Errorf("revolve: %w", err)
		}
		solids = append(solids, solid)
	}

	// The revolved solids land at every active placement.
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
