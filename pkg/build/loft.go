package build

import (
	"fmt"

	"github.com/chazu/burl/pkg/kernel"
)

// Loft skins a solid through section faces, supplied with WithSections
// or taken from the builder's pending faces, which are consumed. When
// the direct loft is invalid the solid is rebuilt from a shell of the
// loft's own faces plus the sections; if that is still invalid the
// loft fails.
func Loft(c *Context, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	k := c.kern

	sections := s.sections
	if len(sections) == 0 {
		sections = p.pendingFaces
		p.clearPendingFaces()
	}
	if len(sections) < 2 {
		return nil, fmt.Errorf("loft: need at least two sections, have %d: %w", len(sections), ErrLoftFailed)
	}

	wires := make([]kernel.Shape, len(sections))
	for i, f := range sections {
		w, err := k.OuterWire(f)
		if err != nil {
			return nil, fmt.Errorf("loft: section %d: %w", i, err)
		}
		wires[i] = w
	}

	solid, err := k.Loft(wires, s.ruled)
	if err != nil {
		return nil, fmt.Errorf("loft: %w", err)
	}
	if !k.IsValid(solid) {
		shell := append(k.Faces(solid), sections...)
		solid, err = k.SolidFromFaces(shell)
		if err != nil {
			return nil, ErrLoftFailed
		}
		solid = k.Clean(solid)
		if !k.IsValid(solid) {
			return nil, ErrLoftFailed
		}
	}

	if err := p.addToContext([]kernel.Shape{solid}, true, s.mode); err != nil {
		return nil, err
	}
	return solid, nil
}
