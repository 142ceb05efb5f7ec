// Package geom provides the small amount of 3D math the builder needs:
// rigid placements (Location) and oriented reference planes (Plane).
// Vectors and transform matrices come from the sdfx vec/matrix types so
// the same representation flows straight into the geometry kernel.
package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Location is a rigid transform (rotation + translation).
// The zero value is not valid; use Identity, Translation or Rotation.
type Location struct {
	m  sdf.M44
	ok bool
}

// Identity returns the identity placement.
func Identity() Location {
	return Location{m: sdf.Identity3d(), ok: true}
}

// Translation returns a placement that translates by v.
func Translation(v v3.Vec) Location {
	return Location{m: sdf.Translate3d(v), ok: true}
}

// Rotation returns a placement rotating by Euler angles (degrees)
// around the X, Y and Z axes, applied in X, Y, Z order.
func Rotation(rx, ry, rz float64) Location {
	m := sdf.RotateZ(rz * math.Pi / 180.0).
		Mul(sdf.RotateY(ry * math.Pi / 180.0)).
		Mul(sdf.RotateX(rx * math.Pi / 180.0))
	return Location{m: m, ok: true}
}

// Mul composes two placements: (l.Mul(o)).Apply(p) == l.Apply(o.Apply(p)).
func (l Location) Mul(o Location) Location {
	return Location{m: l.M44().Mul(o.M44()), ok: true}
}

// M44 returns the placement as an sdf transform matrix.
// The zero Location maps to the identity matrix.
func (l Location) M44() sdf.M44 {
	if !l.ok {
		return sdf.Identity3d()
	}
	return l.m
}

// Apply transforms a point.
func (l Location) Apply(p v3.Vec) v3.Vec {
	return l.M44().MulPosition(p)
}

// ApplyDir transforms a direction (rotation only, no translation).
func (l Location) ApplyDir(d v3.Vec) v3.Vec {
	m := l.M44()
	return m.MulPosition(d).Sub(m.MulPosition(v3.Vec{}))
}

// Plane is an oriented reference plane: an origin, an in-plane X
// direction, and the plane normal (the local Z direction).
type Plane struct {
	Origin v3.Vec
	XDir   v3.Vec
	ZDir   v3.Vec
}

// XY returns the standard XY plane (normal +Z).
func XY() Plane {
	return Plane{XDir: v3.Vec{X: 1}, ZDir: v3.Vec{Z: 1}}
}

// XZ returns the standard XZ plane (normal -Y, matching the OCCT
// convention for a front plane).
func XZ() Plane {
	return Plane{XDir: v3.Vec{X: 1}, ZDir: v3.Vec{Y: -1}}
}

// YZ returns the standard YZ plane (normal +X).
func YZ() Plane {
	return Plane{XDir: v3.Vec{Y: 1}, ZDir: v3.Vec{X: 1}}
}

// Named returns a standard plane by name ("XY", "XZ" or "YZ").
func Named(name string) (Plane, error) {
	switch name {
	case "XY":
		return XY(), nil
	case "XZ":
		return XZ(), nil
	case "YZ":
		return YZ(), nil
	}
	return Plane{}, fmt.Errorf("geom: unknown plane %q", name)
}

// YDir returns the in-plane Y direction (ZDir x XDir).
func (p Plane) YDir() v3.Vec {
	return p.ZDir.Cross(p.XDir)
}

// Moved returns the plane transformed by a placement.
func (p Plane) Moved(l Location) Plane {
	return Plane{
		Origin: l.Apply(p.Origin),
		XDir:   l.ApplyDir(p.XDir),
		ZDir:   l.ApplyDir(p.ZDir),
	}
}

// Contains reports whether a point lies on the plane within tol.
func (p Plane) Contains(pt v3.Vec, tol float64) bool {
	return math.Abs(pt.Sub(p.Origin).Dot(p.ZDir.Normalize())) <= tol
}

// ContainsLine reports whether the line through origin along dir lies
// entirely on the plane within tol.
func (p Plane) ContainsLine(origin, dir v3.Vec, tol float64) bool {
	if !p.Contains(origin, tol) {
		return false
	}
	return math.Abs(dir.Normalize().Dot(p.ZDir.Normalize())) <= tol
}

// Angle returns the angle in radians between two vectors.
// Zero-length vectors yield an angle of zero.
func Angle(a, b v3.Vec) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}
