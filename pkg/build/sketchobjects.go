package build

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/kernel"
)

// Rectangle creates a width x height planar face at every active
// placement. Inside a sketch the face joins the sketch surface; inside
// a part builder it goes straight to the pending faces.
func Rectangle(c *Context, width, height float64, opts ...Option) (kernel.Shape, error) {
	return sketchObject(c, opts, func(origin, normal v3.Vec) (kernel.Shape, error) {
		return c.kern.MakePlaneFace(width, height, origin, normal)
	})
}

// Circle creates a disc face at every active placement.
func Circle(c *Context, radius float64, opts ...Option) (kernel.Shape, error) {
	return sketchObject(c, opts, func(origin, normal v3.Vec) (kernel.Shape, error) {
		return c.kern.MakeCircleFace(radius, origin, normal)
	})
}

// sketchObject materializes a planar face maker on the current
// builder. In a sketch the face is replicated over the sketch's
// placements; in a part builder a single face on the builder plane is
// handed to the merge step, which replicates pending faces itself.
func sketchObject(c *Context, opts []Option, mk func(origin, normal v3.Vec) (kernel.Shape, error)) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	b, err := c.current()
	if err != nil {
		return nil, err
	}
	k := c.kern

	switch t := b.(type) {
	case *SketchBuilder:
		var faces []kernel.Shape
		for _, pl := range t.locs.Current() {
			f, err := mk(pl.Plane.Origin, pl.Plane.ZDir)
			if err != nil {
				return nil, err
			}
			faces = append(faces, f)
		}
		if err := t.addToContext(faces, true, s.mode); err != nil {
			return nil, err
		}
		t.locs.Reset()
		return k.Compound(faces...), nil
	case *PartBuilder:
		f, err := mk(t.plane.Origin, t.plane.ZDir)
		if err != nil {
			return nil, err
		}
		if err := t.addToContext([]kernel.Shape{f}, true, s.mode); err != nil {
			return nil, err
		}
		t.locs.Reset()
		return f, nil
	}
	return nil, fmt.Errorf("sketch object: unsupported builder %T", b)
}
