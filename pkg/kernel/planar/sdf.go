package planar

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/kernel"
)

// sdfHandle is the signed distance field every solid carries. It backs
// point membership, volume estimation and meshing.
type sdfHandle = sdf.SDF3

// boxSDF builds the SDF of an axis-aligned box given by its bounds.
func boxSDF(b kernel.Box) sdfHandle {
	size := b.Max.Sub(b.Min)
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		// Degenerate boxes (zero extent) still need a handle; collapse
		// to a point-sized box.
		s, _ = sdf.Box3D(v3.Vec{X: 1e-9, Y: 1e-9, Z: 1e-9}, 0)
	}
	center := b.Min.Add(size.MulScalar(0.5))
	return sdf.Transform3D(s, sdf.Translate3d(center))
}

// axisRotation returns a matrix rotating the +Z axis onto the given
// axis-aligned unit direction.
func axisRotation(axis v3.Vec) sdf.M44 {
	switch axisOf(axis) {
	case 0:
		if axis.X >= 0 {
			return sdf.RotateY(math.Pi / 2)
		}
		return sdf.RotateY(-math.Pi / 2)
	case 1:
		if axis.Y >= 0 {
			return sdf.RotateX(-math.Pi / 2)
		}
		return sdf.RotateX(math.Pi / 2)
	default:
		if axis.Z >= 0 {
			return sdf.Identity3d()
		}
		return sdf.RotateX(math.Pi)
	}
}

// cylinderSDF builds a cylinder from origin along axis.
func cylinderSDF(radius, height float64, origin, axis v3.Vec) sdfHandle {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return boxSDF(kernel.Box{Min: origin, Max: origin})
	}
	mid := origin.Add(axis.Normalize().MulScalar(height / 2))
	m := sdf.Translate3d(mid).Mul(axisRotation(axis))
	return sdf.Transform3D(s, m)
}

// coneSDF builds a truncated cone from origin along axis.
func coneSDF(bottomRadius, topRadius, height float64, origin, axis v3.Vec) sdfHandle {
	s, err := sdf.Cone3D(height, bottomRadius, topRadius, 0)
	if err != nil {
		return boxSDF(kernel.Box{Min: origin, Max: origin})
	}
	mid := origin.Add(axis.Normalize().MulScalar(height / 2))
	m := sdf.Translate3d(mid).Mul(axisRotation(axis))
	return sdf.Transform3D(s, m)
}

// sphereSDF builds a sphere centered at origin.
func sphereSDF(radius float64, origin v3.Vec) sdfHandle {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return boxSDF(kernel.Box{Min: origin, Max: origin})
	}
	return sdf.Transform3D(s, sdf.Translate3d(origin))
}

// torusSDF is a torus around an axis through the origin of its local
// frame. sdfx has no torus primitive, so the distance field is written
// out directly.
type torusSDF struct {
	major, minor float64
}

func (t *torusSDF) Evaluate(p v3.Vec) float64 {
	q := math.Sqrt(p.X*p.X+p.Y*p.Y) - t.major
	return math.Sqrt(q*q+p.Z*p.Z) - t.minor
}

func (t *torusSDF) BoundingBox() sdf.Box3 {
	r := t.major + t.minor
	return sdf.Box3{
		Min: v3.Vec{X: -r, Y: -r, Z: -t.minor},
		Max: v3.Vec{X: r, Y: r, Z: t.minor},
	}
}

// halfSpace is one bounding plane of a convex polyhedron: the set of
// points with dot(normal, p) <= offset.
type halfSpace struct {
	normal v3.Vec // unit length
	offset float64
}

// convexSDF is the signed distance bound of a convex polyhedron given
// by its face planes (exact outside near faces, a lower bound near
// edges, which is sufficient for membership and meshing).
type convexSDF struct {
	planes []halfSpace
	bounds kernel.Box
}

func (c *convexSDF) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for _, h := range c.planes {
		if v := h.normal.Dot(p) - h.offset; v > d {
			d = v
		}
	}
	return d
}

func (c *convexSDF) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: c.bounds.Min, Max: c.bounds.Max}
}

// sdfOf returns the membership field for a solid or compound, unioning
// children as needed. Non-volumetric shapes yield nil.
func sdfOf(s *shape) sdfHandle {
	switch s.kind {
	case kernel.KindSolid:
		return s.sdf3
	case kernel.KindCompound:
		var parts []sdfHandle
		for _, c := range s.children {
			if h := sdfOf(c); h != nil {
				parts = append(parts, h)
			}
		}
		return unionSDF(parts)
	}
	return nil
}

func unionSDF(parts []sdfHandle) sdfHandle {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}
	u := parts[0]
	for _, p := range parts[1:] {
		u = sdf.Union3D(u, p)
	}
	return u
}

// slabSDF gives a face enough thickness to participate in booleans when
// it stands in for a cutting or sectioning tool.
func slabSDF(f *shape) sdfHandle {
	const eps = 1e-6
	b := f.box
	pad := v3.Vec{X: eps, Y: eps, Z: eps}
	return boxSDF(kernel.Box{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)})
}

// boxIntersect intersects two boxes; ok is false when they are disjoint
// beyond tolerance. Degenerate (zero-extent) overlaps are valid.
func boxIntersect(a, b kernel.Box) (kernel.Box, bool) {
	const tol = 1e-9
	r := kernel.Box{Min: a.Min.Max(b.Min), Max: a.Max.Min(b.Max)}
	d := r.Max.Sub(r.Min)
	if d.X < -tol || d.Y < -tol || d.Z < -tol {
		return kernel.Box{}, false
	}
	r.Max = r.Max.Max(r.Min)
	return r, true
}
