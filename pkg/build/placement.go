package build

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/geom"
)

// Placement is a location paired with the workplane it was defined on.
// Operations that consume placements use the plane for orientation
// (extrusion direction, pending-face planes) and the location for
// positioning.
type Placement struct {
	Loc   geom.Location
	Plane geom.Plane
}

// Locations is a builder's placement stack: a stack of placement sets.
// The bootstrap frame holds a single identity placement on the
// builder's initial workplane and can never be popped.
type Locations struct {
	frames [][]Placement
}

// NewLocations creates a placement stack bootstrapped with an identity
// placement on the given plane.
func NewLocations(p geom.Plane) *Locations {
	return &Locations{
		frames: [][]Placement{{{Loc: geom.Identity(), Plane: p}}},
	}
}

func (l *Locations) bootstrap() Placement {
	return l.frames[0][0]
}

// Current returns the active placement set. Callers must not mutate
// the returned slice.
func (l *Locations) Current() []Placement {
	return l.frames[len(l.frames)-1]
}

// Set replaces the active placement set. Placements with an unset
// plane inherit the bootstrap plane moved by their location.
func (l *Locations) Set(ps ...Placement) error {
	if len(ps) == 0 {
		return fmt.Errorf("set: %w", ErrEmptyPlacementSet)
	}
	l.frames[len(l.frames)-1] = l.adopt(ps)
	return nil
}

// Push saves the active set and makes ps the new active set.
func (l *Locations) Push(ps ...Placement) error {
	if len(ps) == 0 {
		return fmt.Errorf("push: %w", ErrEmptyPlacementSet)
	}
	l.frames = append(l.frames, l.adopt(ps))
	return nil
}

// Pop restores the previously saved placement set. The bootstrap frame
// cannot be popped.
func (l *Locations) Pop() error {
	if len(l.frames) == 1 {
		return fmt.Errorf("pop: placement stack at bootstrap: %w", ErrEmptyPlacementSet)
	}
	l.frames[len(l.frames)-1] = nil
	l.frames = l.frames[:len(l.frames)-1]
	return nil
}

// Reset restores the active set to the bootstrap placement. Operations
// call this after consuming the active set.
func (l *Locations) Reset() {
	l.frames[len(l.frames)-1] = []Placement{l.bootstrap()}
}

func (l *Locations) adopt(ps []Placement) []Placement {
	base := l.bootstrap().Plane
	out := make([]Placement, len(ps))
	for i, p := range ps {
		if p.Plane.ZDir.Length() == 0 {
			p.Plane = base.Moved(p.Loc)
		}
		out[i] = p
	}
	return out
}

// At builds placements from translation offsets on the current
// bootstrap plane, a convenience for grids of features.
func At(points ...[3]float64) []Placement {
	out := make([]Placement, len(points))
	for i, pt := range points {
		out[i] = Placement{Loc: geom.Translation(v3.Vec{X: pt[0], Y: pt[1], Z: pt[2]})}
	}
	return out
}
