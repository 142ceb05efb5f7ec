package build

import (
	"fmt"

	"github.com/chazu/burl/pkg/geom"
	"github.com/chazu/burl/pkg/kernel"
)

// SketchBuilder accumulates planar geometry. Closing the sketch folds
// its faces into the enclosing builder as pending geometry.
type SketchBuilder struct {
	ctx   *Context
	plane geom.Plane
	locs  *Locations
	mode  Mode

	faces        []kernel.Shape
	pendingEdges []kernel.Shape
}

// NewSketch opens a sketch builder on the context. The sketch's faces
// land in the enclosing builder, under the sketch's mode, when the
// sketch is closed.
func NewSketch(c *Context, opts ...Option) *SketchBuilder {
	s := newSettings(ModeAdd)
	s.apply(opts)
	plane := geom.XY()
	if s.plane != nil {
		plane = *s.plane
	}
	sk := &SketchBuilder{
		ctx:   c,
		plane: plane,
		locs:  NewLocations(plane),
		mode:  s.mode,
	}
	c.push(sk)
	return sk
}

func (sk *SketchBuilder) locations() *Locations { return sk.locs }

// Locations exposes the placement stack.
func (sk *SketchBuilder) Locations() *Locations { return sk.locs }

// Faces returns the sketch's accumulated faces.
func (sk *SketchBuilder) Faces() []kernel.Shape { return sk.faces }

// Sketch returns the sketch surface as a single compound.
func (sk *SketchBuilder) Sketch() kernel.Shape {
	return sk.ctx.kern.Compound(sk.faces...)
}

func (sk *SketchBuilder) addToContext(shapes []kernel.Shape, facesToPending bool, mode Mode) error {
	if !mode.known() {
		return fmt.Errorf("mode %d: %w", mode, ErrInvalidMode)
	}
	if mode == ModePrivate || len(shapes) == 0 {
		return nil
	}
	k := sk.ctx.kern

	var faces, edges []kernel.Shape
	var flatten func(s kernel.Shape)
	flatten = func(s kernel.Shape) {
		if s == nil {
			return
		}
		switch s.Kind() {
		case kernel.KindEdge:
			edges = append(edges, s)
		case kernel.KindWire:
			edges = append(edges, k.Edges(s)...)
		case kernel.KindFace:
			faces = append(faces, s)
		case kernel.KindShell, kernel.KindCompound:
			for _, c := range k.Children(s) {
				flatten(c)
			}
		}
	}
	for _, s := range shapes {
		flatten(s)
	}
	sk.pendingEdges = append(sk.pendingEdges, edges...)

	switch mode {
	case ModeAdd, ModeConstruction:
		sk.faces = append(sk.faces, faces...)
	case ModeSubtract:
		if len(sk.faces) == 0 {
			return fmt.Errorf("sketch: %w", ErrNothingToSubtractFrom)
		}
		return sk.surfaceBoolean(k.Cut, faces)
	case ModeIntersect:
		if len(sk.faces) == 0 {
			return fmt.Errorf("sketch: %w", ErrNothingToIntersectWith)
		}
		return sk.surfaceBoolean(k.Intersect, faces)
	case ModeReplace:
		sk.faces = faces
	}
	return nil
}

// surfaceBoolean applies a kernel boolean to every sketch face against
// the new faces and keeps the surviving pieces.
func (sk *SketchBuilder) surfaceBoolean(op func(kernel.Shape, ...kernel.Shape) (kernel.Shape, error), tools []kernel.Shape) error {
	if len(tools) == 0 {
		return nil
	}
	k := sk.ctx.kern
	var kept []kernel.Shape
	for _, f := range sk.faces {
		res, err := op(f, tools...)
		if err != nil {
			return err
		}
		kept = append(kept, k.Faces(res)...)
	}
	sk.faces = kept
	return nil
}

// Close removes the sketch from the stack and folds its faces into the
// enclosing builder, where they become pending geometry.
func (sk *SketchBuilder) Close() error {
	sk.ctx.pop(sk)
	outer, err := sk.ctx.current()
	if err != nil {
		// top-level sketch, nothing to fold into
		return nil
	}
	shapes := append(append([]kernel.Shape{}, sk.faces...), sk.pendingEdges...)
	return outer.addToContext(shapes, true, sk.mode)
}
