// Package planar implements the kernel.Kernel interface with a pure-Go
// backend that is exact for axis-aligned planar B-rep geometry and
// conservative elsewhere. Every solid carries a signed distance field
// built on github.com/deadsy/sdfx, which backs point membership, volume
// estimation and mesh output.
//
// Capability limits (documented, by design of a reference backend):
//   - Faces are axis-aligned rectangles or discs; arbitrary-orientation
//     faces carry only extents and area.
//   - Face/solid intersection is exact against box solids and falls back
//     to bounding-box clipping otherwise.
//   - Extrusion taper and partial arcs are accepted but ignored.
//   - Loft, revolve and sweep produce solids with conservative extents
//     and synthesized boundary topology.
//
// Booleans always return fresh shape handles and never reuse a handle
// from an operand, which is the identity contract topology diffing
// relies on.
package planar

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/geom"
	"github.com/chazu/burl/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

const tol = 1e-9

// Kernel is the planar reference backend.
type Kernel struct{}

// New returns a new planar Kernel.
func New() *Kernel {
	return &Kernel{}
}

func asShape(s kernel.Shape) *shape {
	return s.(*shape)
}

func asShapes(in []kernel.Shape) []*shape {
	out := make([]*shape, len(in))
	for i, s := range in {
		out[i] = asShape(s)
	}
	return out
}

// topoFaces gathers the *shape faces of a solid or compound.
func topoFaces(s *shape) []*shape {
	var out []kernel.Shape
	collect(s, kernel.KindFace, &out, map[string]bool{})
	return asShapes(out)
}

// ---------------------------------------------------------------------------
// Booleans
// ---------------------------------------------------------------------------

// Fuse unions tools into base. With no tools it is a no-op returning
// base unchanged.
func (k *Kernel) Fuse(base kernel.Shape, tools ...kernel.Shape) (kernel.Shape, error) {
	b := asShape(base)
	if len(tools) == 0 {
		return base, nil
	}
	bbox := b.box
	sdfs := []sdfHandle{sdfOf(b)}
	valid := b.valid
	var faces []*shape
	seen := map[*shape]*shape{}
	faces = append(faces, copyTopo(topoFaces(b), seen)...)
	for _, t := range tools {
		ts := asShape(t)
		bbox = bbox.Union(ts.box)
		if h := sdfOf(ts); h != nil {
			sdfs = append(sdfs, h)
		}
		valid = valid && ts.valid
		faces = append(faces, copyTopo(topoFaces(ts), seen)...)
	}
	return newSolid(faces, bbox, unionSDF(sdfs), false, valid), nil
}

// Cut subtracts tools from base. A face base keeps the axis-aligned
// rectangular remainders; a solid base carves cavities.
func (k *Kernel) Cut(base kernel.Shape, tools ...kernel.Shape) (kernel.Shape, error) {
	b := asShape(base)
	if len(tools) == 0 {
		return base, nil
	}
	if b.kind == kernel.KindFace {
		pieces := []*shape{b}
		for _, t := range tools {
			var next []*shape
			for _, p := range pieces {
				next = append(next, cutFaceByFace(p, asShape(t))...)
			}
			pieces = next
		}
		if len(pieces) == 1 {
			return pieces[0], nil
		}
		return newCompound(pieces), nil
	}
	h := sdfOf(b)
	if h == nil {
		return nil, fmt.Errorf("planar: cut base %s has no volume", base.Kind())
	}
	seen := map[*shape]*shape{}
	faces := copyTopo(topoFaces(b), seen)
	for _, t := range tools {
		ts := asShape(t)
		th := sdfOf(ts)
		if th == nil {
			th = slabSDF(ts)
		}
		h = sdf.Difference3D(h, th)
		// Tool boundary becomes cavity walls.
		faces = append(faces, copyTopo(topoFaces(ts), seen)...)
	}
	return newSolid(faces, b.box, h, false, b.valid), nil
}

// Intersect intersects base with tools. A face base is clipped to the
// tool volumes; a solid base produces the common volume.
func (k *Kernel) Intersect(base kernel.Shape, tools ...kernel.Shape) (kernel.Shape, error) {
	b := asShape(base)
	if len(tools) == 0 {
		return base, nil
	}
	if b.kind == kernel.KindFace {
		cur := b
		for _, t := range tools {
			cur = clipFaceToSolid(cur, asShape(t))
			if cur == nil {
				return newCompound(nil), nil
			}
		}
		return cur, nil
	}

	bbox := b.box
	allBox := b.isBox
	h := sdfOf(b)
	if h == nil {
		return nil, fmt.Errorf("planar: intersect base %s has no volume", base.Kind())
	}
	for _, t := range tools {
		ts := asShape(t)
		ob, ok := boxIntersect(bbox, ts.box)
		if !ok {
			return newCompound(nil), nil
		}
		bbox = ob
		allBox = allBox && ts.isBox
		th := sdfOf(ts)
		if th == nil {
			th = slabSDF(ts)
		}
		h = sdf.Intersect3D(h, th)
	}
	if allBox {
		return newBoxSolid(bbox), nil
	}
	return newSolid(copyTopo(topoFaces(b), nil), bbox, h, false, true), nil
}

// Clean is a no-op: the planar backend never emits the degenerate
// topology a B-rep kernel's booleans can leave behind.
func (k *Kernel) Clean(s kernel.Shape) kernel.Shape {
	return s
}

// clipFaceToSolid clips a rectangular or disc face against a solid.
// Exact for box solids, bounding-box approximation otherwise. Returns
// nil when nothing remains.
func clipFaceToSolid(f *shape, tool *shape) *shape {
	ob, ok := boxIntersect(f.box, tool.box)
	if !ok {
		return nil
	}
	if f.circle {
		// Discs are kept whole or dropped; partial disc clipping is
		// beyond this backend.
		if ob.Max.Sub(ob.Min).Sub(f.box.Max.Sub(f.box.Min)).Length() > tol {
			return nil
		}
		return copyOne(f, map[*shape]*shape{})
	}
	d := ob.Max.Sub(ob.Min)
	if rectArea(d, f.normal) <= tol {
		return nil
	}
	return newRectFace(ob, f.normal)
}

// cutFaceByFace returns what remains of a face after subtracting the
// tool's footprint. Exact for rectangles, which split into up to four
// rectangular remainders; discs are kept whole unless fully covered.
func cutFaceByFace(f, tool *shape) []*shape {
	ob, ok := boxIntersect(f.box, tool.box)
	if !ok {
		return []*shape{copyOne(f, map[*shape]*shape{})}
	}
	if f.circle {
		if ob.Max.Sub(ob.Min).Sub(f.box.Max.Sub(f.box.Min)).Length() > tol {
			return []*shape{copyOne(f, map[*shape]*shape{})}
		}
		return nil
	}
	a1, a2 := inPlaneAxes(f.normal)
	var out []*shape
	emit := func(b kernel.Box) {
		if rectArea(b.Max.Sub(b.Min), f.normal) > tol {
			out = append(out, newRectFace(b, f.normal))
		}
	}
	// Guillotine split: full-height strips beside the overlap along
	// a1, then the band above and below it along a2.
	left, right := f.box, f.box
	setComp(&left.Max, a1, comp(ob.Min, a1))
	setComp(&right.Min, a1, comp(ob.Max, a1))
	emit(left)
	emit(right)
	mid := f.box
	setComp(&mid.Min, a1, comp(ob.Min, a1))
	setComp(&mid.Max, a1, comp(ob.Max, a1))
	below, above := mid, mid
	setComp(&below.Max, a2, comp(ob.Min, a2))
	setComp(&above.Min, a2, comp(ob.Max, a2))
	emit(below)
	emit(above)
	return out
}

// inPlaneAxes returns the two axes spanning a face with the given
// axis-aligned normal.
func inPlaneAxes(normal v3.Vec) (int, int) {
	switch axisOf(normal) {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

func comp(v v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setComp(v *v3.Vec, axis int, val float64) {
	switch axis {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
}

// ---------------------------------------------------------------------------
// Primitive factories
// ---------------------------------------------------------------------------

func newBoxSolid(b kernel.Box) *shape {
	d := b.Max.Sub(b.Min)
	valid := d.X > tol && d.Y > tol && d.Z > tol
	return newSolid(boxFaces(b), b, boxSDF(b), true, valid)
}

// MakeBox builds an axis-aligned box with its minimum corner at origin.
func (k *Kernel) MakeBox(length, width, height float64, origin v3.Vec) (kernel.Shape, error) {
	if length <= 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("planar: box dimensions must be positive, got %g x %g x %g", length, width, height)
	}
	b := kernel.Box{Min: origin, Max: origin.Add(v3.Vec{X: length, Y: width, Z: height})}
	return newBoxSolid(b), nil
}

// discWithSeam builds a disc face whose rim edge carries a seam vertex,
// matching the vertex count a B-rep kernel reports for cylinder ends.
func discWithSeam(center v3.Vec, radius float64, normal v3.Vec) *shape {
	f := newDiscFace(center, radius, normal)
	rim := f.children[0]
	seam := center.Add(v3.Vec{X: radius})
	if axisOf(normal) == 0 {
		seam = center.Add(v3.Vec{Y: radius})
	}
	rim.children = []*shape{newVertex(seam)}
	return f
}

func newCylinderSolid(radius, height float64, origin, axis v3.Vec) *shape {
	u := axis.Normalize()
	end := origin.Add(u.MulScalar(height))
	bottom := discWithSeam(origin, radius, u.MulScalar(-1))
	top := discWithSeam(end, radius, u)
	bbox := bottom.box.Union(top.box)
	side := newCurvedFace(bbox, 2*pi*radius*height)
	return newSolid([]*shape{bottom, top, side}, bbox,
		cylinderSDF(radius, height, origin, u), false, radius > tol && height > tol)
}

// MakeCylinder builds a cylinder from origin along an axis-aligned
// direction. The arc parameter is accepted and ignored.
func (k *Kernel) MakeCylinder(radius, height float64, origin, axis v3.Vec, arc float64) (kernel.Shape, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("planar: cylinder radius and height must be positive, got r=%g h=%g", radius, height)
	}
	return newCylinderSolid(radius, height, origin, axis), nil
}

// MakeCone builds a (truncated) cone from origin along axis.
func (k *Kernel) MakeCone(bottomRadius, topRadius, height float64, origin, axis v3.Vec, arc float64) (kernel.Shape, error) {
	if height <= 0 || bottomRadius < 0 || topRadius < 0 {
		return nil, fmt.Errorf("planar: invalid cone r1=%g r2=%g h=%g", bottomRadius, topRadius, height)
	}
	u := axis.Normalize()
	end := origin.Add(u.MulScalar(height))
	faces := []*shape{discWithSeam(origin, bottomRadius, u.MulScalar(-1))}
	bbox := faces[0].box
	if topRadius > tol {
		topDisc := discWithSeam(end, topRadius, u)
		faces = append(faces, topDisc)
		bbox = bbox.Union(topDisc.box)
	} else {
		bbox = bbox.Union(kernel.Box{Min: end, Max: end})
	}
	slant := math.Sqrt(height*height + (bottomRadius-topRadius)*(bottomRadius-topRadius))
	side := newCurvedFace(bbox, pi*(bottomRadius+topRadius)*slant)
	if topRadius <= tol {
		side.children = []*shape{newVertex(end)}
	}
	faces = append(faces, side)
	return newSolid(faces, bbox, coneSDF(bottomRadius, topRadius, height, origin, u), false, true), nil
}

// MakeSphere builds a sphere centered at origin. Arc limits are
// accepted and ignored.
func (k *Kernel) MakeSphere(radius float64, origin v3.Vec, arc1, arc2, arc3 float64) (kernel.Shape, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("planar: sphere radius must be positive, got %g", radius)
	}
	r := v3.Vec{X: radius, Y: radius, Z: radius}
	bbox := kernel.Box{Min: origin.Sub(r), Max: origin.Add(r)}
	surface := newCurvedFace(bbox, 4*pi*radius*radius)
	return newSolid([]*shape{surface}, bbox, sphereSDF(radius, origin), false, true), nil
}

// MakeTorus builds a torus around an axis-aligned axis through origin.
// Arc limits are accepted and ignored.
func (k *Kernel) MakeTorus(majorRadius, minorRadius float64, origin, axis v3.Vec, majorArc, minorArc float64) (kernel.Shape, error) {
	if majorRadius <= 0 || minorRadius <= 0 {
		return nil, fmt.Errorf("planar: torus radii must be positive, got R=%g r=%g", majorRadius, minorRadius)
	}
	u := axis.Normalize()
	cross := radialExtents(u, majorRadius+minorRadius)
	axial := u.MulScalar(minorRadius)
	axial = v3.Vec{X: abs(axial.X), Y: abs(axial.Y), Z: abs(axial.Z)}
	ext := cross.Add(axial)
	bbox := kernel.Box{Min: origin.Sub(ext), Max: origin.Add(ext)}
	surface := newCurvedFace(bbox, 4*pi*pi*majorRadius*minorRadius)
	h := sdf.Transform3D(
		&torusSDF{major: majorRadius, minor: minorRadius},
		sdf.Translate3d(origin).Mul(axisRotation(u)),
	)
	return newSolid([]*shape{surface}, bbox, h, false, true), nil
}

// MakeWedge builds a wedge: a dx by dy by dz block whose face at y=dy
// is the rectangle [xmin,xmax] x [zmin,zmax].
func (k *Kernel) MakeWedge(dx, dy, dz, xmin, zmin, xmax, zmax float64) (kernel.Shape, error) {
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return nil, fmt.Errorf("planar: wedge dimensions must be positive, got %g x %g x %g", dx, dy, dz)
	}
	bottom := []v3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: dx, Y: 0, Z: 0}, {X: dx, Y: 0, Z: dz}, {X: 0, Y: 0, Z: dz},
	}
	top := []v3.Vec{
		{X: xmin, Y: dy, Z: zmin}, {X: xmax, Y: dy, Z: zmin}, {X: xmax, Y: dy, Z: zmax}, {X: xmin, Y: dy, Z: zmax},
	}
	bbox := kernel.Box{Min: bottom[0], Max: bottom[0]}
	for _, p := range append(append([]v3.Vec{}, bottom...), top...) {
		bbox = bbox.Union(kernel.Box{Min: p, Max: p})
	}
	planes := []halfSpace{
		{v3.Vec{Y: -1}, 0},
		{v3.Vec{Y: 1}, dy},
		norm(v3.Vec{X: -dy, Y: xmin}, 0),
		norm(v3.Vec{X: dy, Y: dx - xmax}, dy*dx),
		norm(v3.Vec{Y: zmin, Z: -dy}, 0),
		norm(v3.Vec{Y: dz - zmax, Z: dy}, dy*dz),
	}
	quads := [][]v3.Vec{
		bottom,
		top,
		{bottom[0], bottom[3], top[3], top[0]}, // -x
		{bottom[1], bottom[2], top[2], top[1]}, // +x
		{bottom[0], bottom[1], top[1], top[0]}, // -z
		{bottom[3], bottom[2], top[2], top[3]}, // +z
	}
	var faces []*shape
	for _, q := range quads {
		fb := kernel.Box{Min: q[0], Max: q[0]}
		for _, p := range q[1:] {
			fb = fb.Union(kernel.Box{Min: p, Max: p})
		}
		d := fb.Max.Sub(fb.Min)
		faces = append(faces, newCurvedFace(fb, d.X*d.Y+d.Y*d.Z+d.X*d.Z))
	}
	faces[0].normal = v3.Vec{Y: -1}
	faces[1].normal = v3.Vec{Y: 1}
	h := &convexSDF{planes: planes, bounds: bbox}
	return newSolid(faces, bbox, h, false, true), nil
}

// norm normalizes a half-space so its normal has unit length.
func norm(n v3.Vec, off float64) halfSpace {
	l := n.Length()
	if l == 0 {
		return halfSpace{n, off}
	}
	return halfSpace{n.MulScalar(1 / l), off / l}
}

// MakePlaneFace builds a rectangular face of the given extents centered
// at base with an axis-aligned normal. Width and height map to the two
// in-plane axes in (x, y, z) order.
func (k *Kernel) MakePlaneFace(width, height float64, base, normal v3.Vec) (kernel.Shape, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("planar: plane face extents must be positive, got %g x %g", width, height)
	}
	var ext v3.Vec
	switch axisOf(normal) {
	case 0:
		ext = v3.Vec{Y: width / 2, Z: height / 2}
	case 1:
		ext = v3.Vec{X: width / 2, Z: height / 2}
	default:
		ext = v3.Vec{X: width / 2, Y: height / 2}
	}
	b := kernel.Box{Min: base.Sub(ext), Max: base.Add(ext)}
	n := normal.Normalize()
	return newRectFace(b, n), nil
}

// MakeCircleFace builds a disc face centered at base.
func (k *Kernel) MakeCircleFace(radius float64, base, normal v3.Vec) (kernel.Shape, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("planar: circle radius must be positive, got %g", radius)
	}
	return discWithSeam(base, radius, normal.Normalize()), nil
}

// ---------------------------------------------------------------------------
// Topology queries
// ---------------------------------------------------------------------------

func (k *Kernel) query(s kernel.Shape, kind kernel.Kind) []kernel.Shape {
	if s == nil {
		return nil
	}
	var out []kernel.Shape
	collect(asShape(s), kind, &out, map[string]bool{})
	return out
}

// Vertices returns the unique vertices of a shape.
func (k *Kernel) Vertices(s kernel.Shape) []kernel.Shape { return k.query(s, kernel.KindVertex) }

// Edges returns the unique edges of a shape.
func (k *Kernel) Edges(s kernel.Shape) []kernel.Shape { return k.query(s, kernel.KindEdge) }

// Wires returns the unique wires of a shape.
func (k *Kernel) Wires(s kernel.Shape) []kernel.Shape { return k.query(s, kernel.KindWire) }

// Faces returns the unique faces of a shape.
func (k *Kernel) Faces(s kernel.Shape) []kernel.Shape { return k.query(s, kernel.KindFace) }

// Solids returns the unique solids of a shape.
func (k *Kernel) Solids(s kernel.Shape) []kernel.Shape { return k.query(s, kernel.KindSolid) }

// Children returns the direct constituents of a shape.
func (k *Kernel) Children(s kernel.Shape) []kernel.Shape {
	sh := asShape(s)
	var kids []*shape
	if sh.kind == kernel.KindSolid {
		kids = sh.faces
	} else {
		kids = sh.children
	}
	out := make([]kernel.Shape, len(kids))
	for i, c := range kids {
		out[i] = c
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of a shape.
func (k *Kernel) BoundingBox(s kernel.Shape) kernel.Box {
	return asShape(s).box
}

// NormalAt returns the face normal. Curved faces report a zero vector.
func (k *Kernel) NormalAt(face kernel.Shape, at v3.Vec) v3.Vec {
	return asShape(face).normal
}

// Center returns the face center.
func (k *Kernel) Center(face kernel.Shape) v3.Vec {
	return asShape(face).center
}

// Area returns the face area.
func (k *Kernel) Area(face kernel.Shape) float64 {
	return asShape(face).area
}

// IsValid reports shape validity.
func (k *Kernel) IsValid(s kernel.Shape) bool {
	return asShape(s).valid
}

// ---------------------------------------------------------------------------
// Composition and transform
// ---------------------------------------------------------------------------

// Moved returns a fresh copy of the shape transformed by the placement.
func (k *Kernel) Moved(s kernel.Shape, loc geom.Location) kernel.Shape {
	return moveShape(asShape(s), loc, map[*shape]*shape{})
}

func moveShape(s *shape, loc geom.Location, seen map[*shape]*shape) *shape {
	if c, ok := seen[s]; ok {
		return c
	}
	c := &shape{}
	*c = *s
	c.id = newID()
	seen[s] = c
	c.point = loc.Apply(s.point)
	c.p0 = loc.Apply(s.p0)
	c.p1 = loc.Apply(s.p1)
	c.center = loc.Apply(s.center)
	if s.normal.Length() > 0 {
		c.normal = loc.ApplyDir(s.normal).Normalize()
	}
	c.box = moveBox(s.box, loc)
	if s.sdf3 != nil {
		c.sdf3 = sdf.Transform3D(s.sdf3, loc.M44())
	}
	c.isBox = s.isBox && axisPreserving(loc)
	if len(s.children) > 0 {
		c.children = make([]*shape, len(s.children))
		for i, ch := range s.children {
			c.children[i] = moveShape(ch, loc, seen)
		}
	}
	if len(s.faces) > 0 {
		c.faces = make([]*shape, len(s.faces))
		for i, f := range s.faces {
			c.faces[i] = moveShape(f, loc, seen)
		}
	}
	return c
}

func moveBox(b kernel.Box, loc geom.Location) kernel.Box {
	corners := []v3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z}, {X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z}, {X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	out := kernel.Box{Min: loc.Apply(corners[0]), Max: loc.Apply(corners[0])}
	for _, p := range corners[1:] {
		q := loc.Apply(p)
		out.Min = out.Min.Min(q)
		out.Max = out.Max.Max(q)
	}
	return out
}

// axisPreserving reports whether the placement maps coordinate axes
// onto (signed) coordinate axes, preserving axis alignment.
func axisPreserving(loc geom.Location) bool {
	for _, e := range []v3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		d := loc.ApplyDir(e)
		n := abs(d.X) + abs(d.Y) + abs(d.Z)
		m := math.Max(abs(d.X), math.Max(abs(d.Y), abs(d.Z)))
		if abs(n-m) > 1e-9 || abs(m-1) > 1e-9 {
			return false
		}
	}
	return true
}

// Compound wraps shapes into a compound.
func (k *Kernel) Compound(shapes ...kernel.Shape) kernel.Shape {
	return newCompound(asShapes(shapes))
}

// OuterWire returns the boundary wire of a face.
func (k *Kernel) OuterWire(face kernel.Shape) (kernel.Shape, error) {
	f := asShape(face)
	if len(f.children) == 0 {
		return nil, fmt.Errorf("planar: face has no boundary edges")
	}
	return newWire(f.children, f.normal), nil
}

// AssembleWire joins edges into a wire.
func (k *Kernel) AssembleWire(edges []kernel.Shape) (kernel.Shape, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("planar: cannot assemble a wire from zero edges")
	}
	return newWire(asShapes(edges), v3.Vec{}), nil
}

// ConnectedShells groups faces into shells of faces sharing boundary.
// Two faces are connected when their extents overlap along a segment or
// an area; point contact does not connect.
func (k *Kernel) ConnectedShells(faces []kernel.Shape) []kernel.Shape {
	fs := asShapes(faces)
	parent := make([]int, len(fs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := 0; i < len(fs); i++ {
		for j := i + 1; j < len(fs); j++ {
			if facesTouch(fs[i], fs[j]) {
				parent[find(j)] = find(i)
			}
		}
	}
	groups := map[int][]*shape{}
	var order []int
	for i := range fs {
		r := find(i)
		if _, seen := groups[r]; !seen {
			order = append(order, r)
		}
		groups[r] = append(groups[r], fs[i])
	}
	out := make([]kernel.Shape, 0, len(order))
	for _, r := range order {
		out = append(out, newShell(groups[r]))
	}
	return out
}

func facesTouch(a, b *shape) bool {
	ob, ok := boxIntersect(a.box, b.box)
	if !ok {
		return false
	}
	d := ob.Max.Sub(ob.Min)
	return d.X > tol || d.Y > tol || d.Z > tol
}

// ---------------------------------------------------------------------------
// Generative operations
// ---------------------------------------------------------------------------

// ExtrudeLinear extrudes a face along dir. Exact when the face normal
// is parallel to an axis-aligned dir; otherwise the result is the
// conservative prism hull. A degenerate face yields an invalid solid
// rather than an error so callers can warn and continue.
func (k *Kernel) ExtrudeLinear(face kernel.Shape, dir v3.Vec, taper float64) (kernel.Shape, error) {
	f := asShape(face)
	if f.area <= tol || dir.Length() <= tol {
		return newSolid(nil, f.box, slabSDF(f), false, false), nil
	}
	if f.circle && parallel(f.normal, dir) {
		origin := f.center
		u := dir.Normalize()
		return newCylinderSolid(f.radius, dir.Length(), origin, u), nil
	}
	translated := moveBox(f.box, geom.Translation(dir))
	hull := f.box.Union(translated)
	if !f.circle && parallel(f.normal, dir) && axisUnitDir(dir) {
		return newBoxSolid(hull), nil
	}
	s := newBoxSolid(hull)
	s.isBox = false
	return s, nil
}

func parallel(a, b v3.Vec) bool {
	if a.Length() == 0 || b.Length() == 0 {
		return false
	}
	return a.Normalize().Cross(b.Normalize()).Length() <= 1e-9
}

// axisUnitDir reports whether dir points along a coordinate axis.
func axisUnitDir(dir v3.Vec) bool {
	n := abs(dir.X) + abs(dir.Y) + abs(dir.Z)
	m := math.Max(abs(dir.X), math.Max(abs(dir.Y), abs(dir.Z)))
	return abs(n-m) <= 1e-9
}

// Revolve rotates a face around an axis. The result carries exact
// extents for full revolutions around axis-aligned axes and a
// conservative cylindrical membership field.
func (k *Kernel) Revolve(face kernel.Shape, angle float64, axisOrigin, axisDir v3.Vec) (kernel.Shape, error) {
	f := asShape(face)
	u := axisDir.Normalize()
	var radius float64
	t0, t1 := math.Inf(1), math.Inf(-1)
	for _, c := range rectCorners(f.box, orNormal(f.normal)) {
		rel := c.Sub(axisOrigin)
		t := rel.Dot(u)
		radial := rel.Sub(u.MulScalar(t)).Length()
		if radial > radius {
			radius = radial
		}
		if t < t0 {
			t0 = t
		}
		if t > t1 {
			t1 = t
		}
	}
	if radius <= tol {
		radius = f.box.Diagonal() / 2
	}
	if t1-t0 <= tol {
		t1 = t0 + tol
	}
	origin := axisOrigin.Add(u.MulScalar(t0))
	h := cylinderSDF(radius, t1-t0, origin, u)
	cross := radialExtents(u, radius)
	lo := origin.Sub(cross)
	hi := axisOrigin.Add(u.MulScalar(t1)).Add(cross)
	bbox := kernel.Box{Min: lo.Min(hi), Max: lo.Max(hi)}
	surface := newCurvedFace(bbox, 2*pi*radius*(t1-t0))
	return newSolid([]*shape{surface}, bbox, h, false, true), nil
}

func orNormal(n v3.Vec) v3.Vec {
	if n.Length() == 0 {
		return v3.Vec{Z: 1}
	}
	return n
}

// Sweep sweeps a section face along a path wire. Extents are the path
// bounds grown by the section's half extents; the orientation guide is
// ignored, this backend has no orientation model.
func (k *Kernel) Sweep(section, path kernel.Shape, guide kernel.SweepGuide, transition kernel.Transition) (kernel.Shape, error) {
	return sweepExtents([]kernel.Shape{section}, path)
}

// SweepMulti sweeps multiple sections along a path.
func (k *Kernel) SweepMulti(sections []kernel.Shape, path kernel.Shape, guide kernel.SweepGuide) (kernel.Shape, error) {
	return sweepExtents(sections, path)
}

func sweepExtents(sections []kernel.Shape, path kernel.Shape) (kernel.Shape, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("planar: sweep requires at least one section")
	}
	p := asShape(path)
	if len(p.children) == 0 {
		return nil, fmt.Errorf("planar: sweep path has no edges")
	}
	var half v3.Vec
	for _, sec := range sections {
		s := asShape(sec)
		e := s.box.Max.Sub(s.box.Min).MulScalar(0.5)
		half = half.Max(e)
	}
	r := math.Max(half.X, math.Max(half.Y, half.Z))
	grow := v3.Vec{X: r, Y: r, Z: r}
	bbox := kernel.Box{Min: p.box.Min.Sub(grow), Max: p.box.Max.Add(grow)}
	surface := newCurvedFace(bbox, 0)
	return newSolid([]*shape{surface}, bbox, boxSDF(bbox), false, true), nil
}

// Loft builds a solid through section wires. Parallel same-size
// rectangular sections produce an exact prism; other configurations
// produce a conservative hull, and under-determined input produces an
// invalid solid for the caller's recovery path.
func (k *Kernel) Loft(wires []kernel.Shape, ruled bool) (kernel.Shape, error) {
	ws := asShapes(wires)
	bbox := kernel.Box{}
	for i, w := range ws {
		if i == 0 {
			bbox = w.box
		} else {
			bbox = bbox.Union(w.box)
		}
	}
	if len(ws) < 2 {
		return newSolid(nil, bbox, boxSDF(bbox), false, false), nil
	}
	ref := ws[0].normal
	sameSize := true
	for _, w := range ws[1:] {
		if ref.Length() == 0 || w.normal.Length() == 0 || !parallel(ref, w.normal) {
			return newSolid(nil, bbox, boxSDF(bbox), false, false), nil
		}
		a := crossExtents(ws[0].box, ref)
		b := crossExtents(w.box, ref)
		if a.Sub(b).Length() > tol {
			sameSize = false
		}
	}
	if sameSize && axisUnitDir(ref) {
		return newBoxSolid(bbox), nil
	}
	s := newBoxSolid(bbox)
	s.isBox = false
	return s, nil
}

// crossExtents returns box extents in the plane perpendicular to n.
func crossExtents(b kernel.Box, n v3.Vec) v3.Vec {
	d := b.Max.Sub(b.Min)
	switch axisOf(n) {
	case 0:
		return v3.Vec{Y: d.Y, Z: d.Z}
	case 1:
		return v3.Vec{X: d.X, Z: d.Z}
	default:
		return v3.Vec{X: d.X, Y: d.Y}
	}
}

// SolidFromFaces sews faces into a closed solid. The planar backend
// accepts any face set that spans a positive volume.
func (k *Kernel) SolidFromFaces(faces []kernel.Shape) (kernel.Shape, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("planar: cannot build a solid from zero faces")
	}
	fs := asShapes(faces)
	bbox := fs[0].box
	for _, f := range fs[1:] {
		bbox = bbox.Union(f.box)
	}
	d := bbox.Max.Sub(bbox.Min)
	valid := d.X > tol && d.Y > tol && d.Z > tol
	return newSolid(copyTopo(fs, nil), bbox, boxSDF(bbox), false, valid), nil
}
