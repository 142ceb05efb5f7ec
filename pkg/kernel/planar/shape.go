package planar

import (
	"github.com/google/uuid"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/kernel"
)

// shape is the single concrete implementation of kernel.Shape for the
// planar backend. The kind tag selects which fields are meaningful.
type shape struct {
	id   string
	kind kernel.Kind

	// vertex
	point v3.Vec

	// edge: either a line segment (p0, p1) or a circle
	// (center, radius, normal).
	p0, p1 v3.Vec
	circle bool

	// face: axis-aligned rectangle stored as a degenerate box, or a
	// disc (circle=true). Curved faces (cylinder sides, spheres) carry
	// a zero normal and only approximate extents.
	center v3.Vec
	radius float64
	normal v3.Vec
	area   float64

	// wires, shells, compounds and wire/face boundary structure.
	children []*shape

	// solid payload
	faces []*shape
	sdf3  sdfHandle
	box   kernel.Box
	isBox bool

	valid bool
}

// Kind returns the shape kind.
func (s *shape) Kind() kernel.Kind { return s.kind }

// ID returns the handle identity.
func (s *shape) ID() string { return s.id }

func newID() string { return uuid.NewString() }

func newVertex(p v3.Vec) *shape {
	return &shape{
		id:    newID(),
		kind:  kernel.KindVertex,
		point: p,
		box:   kernel.Box{Min: p, Max: p},
		valid: true,
	}
}

func newEdge(a, b *shape) *shape {
	return &shape{
		id:       newID(),
		kind:     kernel.KindEdge,
		p0:       a.point,
		p1:       b.point,
		children: []*shape{a, b},
		box:      kernel.Box{Min: a.point.Min(b.point), Max: a.point.Max(b.point)},
		valid:    true,
	}
}

func newCircleEdge(center v3.Vec, radius float64, normal v3.Vec) *shape {
	ext := radialExtents(normal, radius)
	return &shape{
		id:     newID(),
		kind:   kernel.KindEdge,
		circle: true,
		center: center,
		radius: radius,
		normal: normal,
		box:    kernel.Box{Min: center.Sub(ext), Max: center.Add(ext)},
		valid:  true,
	}
}

// newRectFace builds a rectangular planar face from a degenerate box
// (zero extent along the normal axis), including its boundary topology.
func newRectFace(b kernel.Box, normal v3.Vec) *shape {
	corners := rectCorners(b, normal)
	verts := make([]*shape, len(corners))
	for i, c := range corners {
		verts[i] = newVertex(c)
	}
	edges := make([]*shape, len(verts))
	for i := range verts {
		edges[i] = newEdge(verts[i], verts[(i+1)%len(verts)])
	}
	d := b.Max.Sub(b.Min)
	area := rectArea(d, normal)
	return &shape{
		id:       newID(),
		kind:     kernel.KindFace,
		center:   b.Min.Add(d.MulScalar(0.5)),
		normal:   normal,
		area:     area,
		children: edges,
		box:      b,
		valid:    area > 0,
	}
}

func newDiscFace(center v3.Vec, radius float64, normal v3.Vec) *shape {
	ext := radialExtents(normal, radius)
	return &shape{
		id:       newID(),
		kind:     kernel.KindFace,
		circle:   true,
		center:   center,
		radius:   radius,
		normal:   normal,
		area:     pi * radius * radius,
		children: []*shape{newCircleEdge(center, radius, normal)},
		box:      kernel.Box{Min: center.Sub(ext), Max: center.Add(ext)},
		valid:    radius > 0,
	}
}

// newCurvedFace is a face with no planar normal (cylinder barrels,
// sphere surfaces, surfaces of revolution). Only extents and area are
// tracked.
func newCurvedFace(b kernel.Box, area float64) *shape {
	d := b.Max.Sub(b.Min)
	return &shape{
		id:     newID(),
		kind:   kernel.KindFace,
		center: b.Min.Add(d.MulScalar(0.5)),
		area:   area,
		box:    b,
		valid:  true,
	}
}

func newWire(edges []*shape, normal v3.Vec) *shape {
	b := edges[0].box
	for _, e := range edges[1:] {
		b = b.Union(e.box)
	}
	return &shape{
		id:       newID(),
		kind:     kernel.KindWire,
		children: edges,
		normal:   normal,
		box:      b,
		valid:    true,
	}
}

func newShell(faces []*shape) *shape {
	b := faces[0].box
	for _, f := range faces[1:] {
		b = b.Union(f.box)
	}
	return &shape{
		id:       newID(),
		kind:     kernel.KindShell,
		children: faces,
		box:      b,
		valid:    true,
	}
}

func newCompound(children []*shape) *shape {
	b := kernel.Box{}
	for i, c := range children {
		if i == 0 {
			b = c.box
		} else {
			b = b.Union(c.box)
		}
	}
	return &shape{
		id:       newID(),
		kind:     kernel.KindCompound,
		children: children,
		box:      b,
		valid:    true,
	}
}

func newSolid(faces []*shape, b kernel.Box, s sdfHandle, isBox, valid bool) *shape {
	return &shape{
		id:    newID(),
		kind:  kernel.KindSolid,
		faces: faces,
		box:   b,
		sdf3:  s,
		isBox: isBox,
		valid: valid,
	}
}

// boxFaces builds the full boundary topology of an axis-aligned box:
// 8 shared vertices, 12 shared edges, 6 faces.
func boxFaces(b kernel.Box) []*shape {
	lo, hi := b.Min, b.Max
	// Vertex index bit layout: bit0=x, bit1=y, bit2=z.
	verts := make([]*shape, 8)
	for i := 0; i < 8; i++ {
		p := v3.Vec{X: lo.X, Y: lo.Y, Z: lo.Z}
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Y = hi.Y
		}
		if i&4 != 0 {
			p.Z = hi.Z
		}
		verts[i] = newVertex(p)
	}
	edgePairs := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along x
		{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along y
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along z
	}
	edges := make([]*shape, 12)
	edgeIdx := map[[2]int]int{}
	for i, p := range edgePairs {
		edges[i] = newEdge(verts[p[0]], verts[p[1]])
		edgeIdx[p] = i
	}
	edgeFor := func(a, c int) *shape {
		if a > c {
			a, c = c, a
		}
		return edges[edgeIdx[[2]int{a, c}]]
	}
	type faceSpec struct {
		normal v3.Vec
		quad   [4]int // vertex loop
	}
	specs := []faceSpec{
		{v3.Vec{X: -1}, [4]int{0, 2, 6, 4}},
		{v3.Vec{X: 1}, [4]int{1, 3, 7, 5}},
		{v3.Vec{Y: -1}, [4]int{0, 1, 5, 4}},
		{v3.Vec{Y: 1}, [4]int{2, 3, 7, 6}},
		{v3.Vec{Z: -1}, [4]int{0, 1, 3, 2}},
		{v3.Vec{Z: 1}, [4]int{4, 5, 7, 6}},
	}
	faces := make([]*shape, 0, 6)
	for _, fs := range specs {
		var loop []*shape
		var fb kernel.Box
		for i := 0; i < 4; i++ {
			a, c := fs.quad[i], fs.quad[(i+1)%4]
			loop = append(loop, edgeFor(a, c))
			p := verts[fs.quad[i]].point
			if i == 0 {
				fb = kernel.Box{Min: p, Max: p}
			} else {
				fb = kernel.Box{Min: fb.Min.Min(p), Max: fb.Max.Max(p)}
			}
		}
		d := fb.Max.Sub(fb.Min)
		faces = append(faces, &shape{
			id:       newID(),
			kind:     kernel.KindFace,
			center:   fb.Min.Add(d.MulScalar(0.5)),
			normal:   fs.normal,
			area:     rectArea(d, fs.normal),
			children: loop,
			box:      fb,
			valid:    true,
		})
	}
	return faces
}

// copyTopo deep-copies topology with fresh handle identities, preserving
// sharing (a vertex shared by two edges stays shared in the copy). Used
// by booleans, which must never reuse handles from their operands.
func copyTopo(shapes []*shape, seen map[*shape]*shape) []*shape {
	if seen == nil {
		seen = map[*shape]*shape{}
	}
	out := make([]*shape, 0, len(shapes))
	for _, s := range shapes {
		out = append(out, copyOne(s, seen))
	}
	return out
}

func copyOne(s *shape, seen map[*shape]*shape) *shape {
	if c, ok := seen[s]; ok {
		return c
	}
	c := &shape{}
	*c = *s
	c.id = newID()
	seen[s] = c
	if len(s.children) > 0 {
		c.children = copyTopo(s.children, seen)
	}
	if len(s.faces) > 0 {
		c.faces = copyTopo(s.faces, seen)
	}
	return c
}

// collect walks a shape gathering unique sub-shapes of the given kind.
func collect(s *shape, kind kernel.Kind, out *[]kernel.Shape, seen map[string]bool) {
	if s == nil || seen[s.id] {
		return
	}
	seen[s.id] = true
	if s.kind == kind {
		*out = append(*out, s)
		if kind != kernel.KindSolid && kind != kernel.KindCompound {
			// Vertices/edges/faces do not nest below themselves.
			return
		}
	}
	for _, c := range s.children {
		collect(c, kind, out, seen)
	}
	for _, f := range s.faces {
		collect(f, kind, out, seen)
	}
}

const pi = 3.14159265358979323846

// radialExtents returns the half-extents of a circle of the given
// radius lying in the plane perpendicular to normal (axis-aligned).
func radialExtents(normal v3.Vec, radius float64) v3.Vec {
	a := axisOf(normal)
	switch a {
	case 0:
		return v3.Vec{Y: radius, Z: radius}
	case 1:
		return v3.Vec{X: radius, Z: radius}
	default:
		return v3.Vec{X: radius, Y: radius}
	}
}

// axisOf returns the dominant axis of a vector: 0=x, 1=y, 2=z.
func axisOf(v v3.Vec) int {
	ax, ay, az := abs(v.X), abs(v.Y), abs(v.Z)
	if ax >= ay && ax >= az {
		return 0
	}
	if ay >= az {
		return 1
	}
	return 2
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// rectArea computes a rectangle's area from its box extents, ignoring
// the (degenerate) normal axis.
func rectArea(d v3.Vec, normal v3.Vec) float64 {
	switch axisOf(normal) {
	case 0:
		return d.Y * d.Z
	case 1:
		return d.X * d.Z
	default:
		return d.X * d.Y
	}
}

// rectCorners returns the 4 corners of a degenerate box in loop order.
func rectCorners(b kernel.Box, normal v3.Vec) []v3.Vec {
	lo, hi := b.Min, b.Max
	switch axisOf(normal) {
	case 0:
		return []v3.Vec{
			{X: lo.X, Y: lo.Y, Z: lo.Z},
			{X: lo.X, Y: hi.Y, Z: lo.Z},
			{X: lo.X, Y: hi.Y, Z: hi.Z},
			{X: lo.X, Y: lo.Y, Z: hi.Z},
		}
	case 1:
		return []v3.Vec{
			{X: lo.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: lo.Y, Z: hi.Z},
			{X: lo.X, Y: lo.Y, Z: hi.Z},
		}
	default:
		return []v3.Vec{
			{X: lo.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: hi.Y, Z: lo.Z},
			{X: lo.X, Y: hi.Y, Z: lo.Z},
		}
	}
}
