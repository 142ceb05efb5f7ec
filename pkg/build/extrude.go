package build

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/burl/pkg/geom"
	"github.com/chazu/burl/pkg/kernel"
)

// Extrude turns faces into solids along their plane normals. With
// Amount the distance is fixed; with UntilSurface the extrusion is
// trimmed against the existing part. Faces come from WithFace or from
// the builder's pending faces, which are consumed.
func Extrude(c *Context, opts ...Option) (kernel.Shape, error) {
	s := newSettings(ModeAdd)
	s.apply(opts)
	p, err := c.currentPart()
	if err != nil {
		return nil, err
	}
	k := c.kern

	var faces []kernel.Shape
	var planes []geom.Plane
	if s.face != nil {
		// An explicit face is replicated at every active placement;
		// pending faces were already placed when they were pended.
		for _, pl := range p.locs.Current() {
			f := k.Moved(s.face, pl.Loc)
			faces = append(faces, f)
			planes = append(planes, planeOfFace(k, f))
		}
	} else {
		faces = p.pendingFaces
		planes = p.pendingFacePlanes
		p.clearPendingFaces()
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("extrude: no faces to extrude")
	}

	var solids []kernel.Shape
	if s.until != 0 {
		if p.part == nil {
			return nil, fmt.Errorf("extrude: until-surface needs an existing part: %w", ErrNothingToIntersectWith)
		}
		for i, f := range faces {
			bounded, err := extrudeUntil(c, p.part, f, planes[i].ZDir.Normalize(), s.taper, s.until)
			if err != nil {
				return nil, err
			}
			solids = append(solids, bounded)
		}
	} else {
		for i, f := range faces {
			dir := planes[i].ZDir.Normalize().MulScalar(s.amount)
			solid, err := k.ExtrudeLinear(f, dir, s.taper)
			if err != nil {
				return nil, fmt.Errorf("extrude: %w", err)
			}
			solids = append(solids, solid)
			if s.both {
				back, err := k.ExtrudeLinear(f, dir.MulScalar(-1), s.taper)
				if err != nil {
					return nil, fmt.Errorf("extrude: %w", err)
				}
				solids = append(solids, back)
			}
		}
	}

	if err := p.addToContext(solids, true, s.mode); err != nil {
		return nil, err
	}
	if s.face != nil {
		p.locs.Reset()
	}
	return k.Compound(solids...), nil
}

// extrudeUntil extrudes a face along dir until it reaches a surface of
// target. The stopping surface is chosen among the target's faces that
// the full-length extrusion crosses: candidate faces are clustered
// into connected shells, each shell's face normals are summed, and the
// shell whose aggregate normal makes the largest angle with dir wins
// for UntilNext, the smallest for UntilLast.
func extrudeUntil(c *Context, target kernel.Shape, face kernel.Shape, dir v3.Vec, taper float64, until Until) (kernel.Shape, error) {
	k := c.kern

	// long enough to cross the whole scene from any start point
	maxDim := k.BoundingBox(face).Union(k.BoundingBox(target)).Diagonal()

	test, err := k.ExtrudeLinear(face, dir.MulScalar(maxDim), taper)
	if err != nil {
		return nil, fmt.Errorf("extrude until: test solid: %w", err)
	}

	var candidates []kernel.Shape
	for _, tf := range k.Faces(target) {
		clipped, err := k.Intersect(tf, test)
		if err != nil {
			c.log.Warn("dropping unclippable candidate face",
				zap.String("face", tf.ID()),
				zap.Error(err),
			)
			continue
		}
		for _, cf := range k.Faces(clipped) {
			n := k.NormalAt(cf, k.Center(cf))
			if n.Dot(dir) == 0 {
				continue
			}
			candidates = append(candidates, cf)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("extrude until: no surface of the part lies along the extrusion")
	}

	shells := k.ConnectedShells(candidates)
	var chosen kernel.Shape
	var chosenAngle float64
	for _, sh := range shells {
		var agg v3.Vec
		for _, f := range k.Faces(sh) {
			agg = agg.Add(k.NormalAt(f, k.Center(f)))
		}
		ang := geom.Angle(agg, dir)
		better := ang > chosenAngle
		if until == UntilLast {
			better = ang < chosenAngle
		}
		if chosen == nil || better {
			chosen, chosenAngle = sh, ang
		}
	}

	var trims []kernel.Shape
	for _, f := range k.Faces(chosen) {
		trim, err := k.ExtrudeLinear(f, dir.MulScalar(-maxDim), -taper)
		if err != nil || !k.IsValid(trim) {
			c.log.Warn("dropping invalid trim extrusion",
				zap.String("face", f.ID()),
				zap.Error(err),
			)
			continue
		}
		trims = append(trims, trim)
	}
	if len(trims) == 0 {
		return nil, fmt.Errorf("extrude until: every trim extrusion was invalid")
	}

	trimVolume, err := k.Fuse(trims[0], trims[1:]...)
	if err != nil {
		return nil, fmt.Errorf("extrude until: fuse trims: %w", err)
	}
	bounded, err := k.Intersect(test, trimVolume)
	if err != nil {
		return nil, fmt.Errorf("extrude until: trim: %w", err)
	}
	return bounded, nil
}

// planeOfFace derives a reference plane for an explicitly supplied
// face from its center and normal.
func planeOfFace(k kernel.Kernel, f kernel.Shape) geom.Plane {
	n := k.NormalAt(f, k.Center(f)).Normalize()
	x := v3.Vec{X: 1}
	if abs(n.X) > 0.5 {
		x = v3.Vec{Y: 1}
	}
	return geom.Plane{Origin: k.Center(f), XDir: x, ZDir: n}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
