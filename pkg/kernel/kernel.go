// Package kernel defines the abstract geometry kernel interface.
// Implementations (planar, or bindings to a full B-rep kernel) provide
// primitive construction, boolean operations and topology queries behind
// this interface. The builder core in pkg/build composes and queries
// shapes exclusively through it and never constructs geometry itself.
package kernel

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/geom"
)

// Kind is the closed set of shape kinds a kernel can produce.
type Kind int

const (
	KindVertex Kind = iota
	KindEdge
	KindWire
	KindFace
	KindShell
	KindSolid
	KindCompound
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	case KindWire:
		return "wire"
	case KindFace:
		return "face"
	case KindShell:
		return "shell"
	case KindSolid:
		return "solid"
	case KindCompound:
		return "compound"
	}
	return "unknown"
}

// Shape is an opaque handle to kernel geometry. Handles are comparable
// and stable: a kernel must return fresh handles from every boolean
// operation and never reuse a handle across distinct results, so that
// callers can diff topology sets by handle identity.
type Shape interface {
	// Kind returns the shape kind.
	Kind() Kind
	// ID returns a stable unique identifier for the handle.
	ID() string
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max v3.Vec
}

// Diagonal returns the Euclidean length of the box diagonal.
func (b Box) Diagonal() float64 {
	d := b.Max.Sub(b.Min)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Transition controls how a sweep handles path discontinuities.
type Transition int

const (
	TransitionTransformed Transition = iota
	TransitionRight
	TransitionRound
)

// SweepGuide orients the swept section along the path. At most one of
// Frenet, Normal and Binormal is set; the zero value lets the backend
// pick its default orientation. Backends without an orientation model
// may ignore the guide.
type SweepGuide struct {
	Frenet   bool
	Normal   *v3.Vec
	Binormal Shape
}

// Kernel is the geometry kernel facade. Generative operations may
// return geometrically invalid shapes; callers check IsValid and decide
// whether to recover or fail.
type Kernel interface {
	// Boolean operations. Each returns a fresh solid handle.
	Fuse(base Shape, tools ...Shape) (Shape, error)
	Cut(base Shape, tools ...Shape) (Shape, error)
	Intersect(base Shape, tools ...Shape) (Shape, error)
	// Clean removes degenerate or duplicate topology left by booleans.
	Clean(s Shape) Shape

	// Primitive factories. Solids are built in local coordinates and
	// positioned afterwards with Moved.
	MakeBox(length, width, height float64, origin v3.Vec) (Shape, error)
	MakeCylinder(radius, height float64, origin, axis v3.Vec, arc float64) (Shape, error)
	MakeCone(bottomRadius, topRadius, height float64, origin, axis v3.Vec, arc float64) (Shape, error)
	MakeSphere(radius float64, origin v3.Vec, arc1, arc2, arc3 float64) (Shape, error)
	MakeTorus(majorRadius, minorRadius float64, origin, axis v3.Vec, majorArc, minorArc float64) (Shape, error)
	MakeWedge(dx, dy, dz, xmin, zmin, xmax, zmax float64) (Shape, error)
	MakePlaneFace(width, height float64, base, normal v3.Vec) (Shape, error)
	MakeCircleFace(radius float64, base, normal v3.Vec) (Shape, error)

	// Topology queries. Each returns the unique sub-shapes of the given
	// kind in deterministic order, recursing through compounds.
	Vertices(s Shape) []Shape
	Edges(s Shape) []Shape
	Wires(s Shape) []Shape
	Faces(s Shape) []Shape
	Solids(s Shape) []Shape
	// Children returns the direct constituents of a compound, wire or
	// shell, without recursion.
	Children(s Shape) []Shape

	BoundingBox(s Shape) Box
	// NormalAt returns the surface normal of a face at a point.
	NormalAt(face Shape, at v3.Vec) v3.Vec
	// Center returns the center of a face.
	Center(face Shape) v3.Vec
	// Area returns the surface area of a face.
	Area(face Shape) float64
	// IsValid reports whether the shape is geometrically valid.
	IsValid(s Shape) bool

	// Moved returns the shape transformed by a placement.
	Moved(s Shape, loc geom.Location) Shape
	// Compound wraps shapes into a single compound.
	Compound(shapes ...Shape) Shape
	// OuterWire returns the outer boundary wire of a face.
	OuterWire(face Shape) (Shape, error)
	// AssembleWire joins edges into a single wire.
	AssembleWire(edges []Shape) (Shape, error)
	// ConnectedShells groups faces into shells of faces sharing boundary.
	ConnectedShells(faces []Shape) []Shape

	// Generative operations.
	ExtrudeLinear(face Shape, dir v3.Vec, taper float64) (Shape, error)
	Revolve(face Shape, angle float64, axisOrigin, axisDir v3.Vec) (Shape, error)
	Sweep(section, path Shape, guide SweepGuide, transition Transition) (Shape, error)
	SweepMulti(sections []Shape, path Shape, guide SweepGuide) (Shape, error)
	Loft(wires []Shape, ruled bool) (Shape, error)
	// SolidFromFaces sews faces into a shell and builds a solid from it.
	SolidFromFaces(faces []Shape) (Shape, error)

	// ToMesh converts a solid or compound to a triangle mesh.
	ToMesh(s Shape) (*Mesh, error)
}
