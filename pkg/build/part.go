package build

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/burl/pkg/geom"
	"github.com/chazu/burl/pkg/kernel"
)

// PartBuilder accumulates 3D geometry. Solids merge into the part
// under a combination mode; faces and edges produced inside the
// builder are held pending until a 3D operation consumes them.
type PartBuilder struct {
	ctx   *Context
	plane geom.Plane
	locs  *Locations
	mode  Mode

	// part is nil until the first solid lands.
	part kernel.Shape

	pendingFaces      []kernel.Shape
	pendingFacePlanes []geom.Plane
	pendingEdges      []kernel.Shape
	pendingEdgePlanes []geom.Plane

	lastVertices []kernel.Shape
	lastEdges    []kernel.Shape
	lastFaces    []kernel.Shape
	lastSolids   []kernel.Shape
}

// NewPart opens a part builder on the context. OnPlane sets the
// initial workplane (default XY); WithMode sets the default
// combination mode (default Add).
func NewPart(c *Context, opts ...Option) *PartBuilder {
	s := newSettings(ModeAdd)
	s.apply(opts)
	plane := geom.XY()
	if s.plane != nil {
		plane = *s.plane
	}
	p := &PartBuilder{
		ctx:   c,
		plane: plane,
		locs:  NewLocations(plane),
		mode:  s.mode,
	}
	c.push(p)
	return p
}

// Close removes the builder from the context stack.
func (p *PartBuilder) Close() {
	p.ctx.pop(p)
}

func (p *PartBuilder) locations() *Locations { return p.locs }

// Locations exposes the placement stack.
func (p *PartBuilder) Locations() *Locations { return p.locs }

// Part returns the accumulated solid, nil if nothing has landed yet.
func (p *PartBuilder) Part() kernel.Shape { return p.part }

// Plane returns the builder's initial workplane.
func (p *PartBuilder) Plane() geom.Plane { return p.plane }

// PendingFaces returns the faces awaiting a 3D operation.
func (p *PartBuilder) PendingFaces() []kernel.Shape { return p.pendingFaces }

// PendingEdges returns the edges awaiting a 3D operation.
func (p *PartBuilder) PendingEdges() []kernel.Shape { return p.pendingEdges }

// PendingEdgePlanes returns the plane each pending edge was placed on,
// paired 1:1 with PendingEdges.
func (p *PartBuilder) PendingEdgePlanes() []geom.Plane { return p.pendingEdgePlanes }

// PendingEdgesAsWire assembles the pending edges into a single wire.
func (p *PartBuilder) PendingEdgesAsWire() (kernel.Shape, error) {
	return p.ctx.kern.AssembleWire(p.pendingEdges)
}

// addToContext is the single merge point for all geometry produced
// inside the builder. Shapes are partitioned by dimension; solids
// combine with the part under mode, faces go pending (or combine when
// facesToPending is false), edges and wires go pending.
func (p *PartBuilder) addToContext(shapes []kernel.Shape, facesToPending bool, mode Mode) error {
	if !mode.known() {
		return fmt.Errorf("mode %d: %w", mode, ErrInvalidMode)
	}
	if mode == ModePrivate || len(shapes) == 0 {
		return nil
	}
	k := p.ctx.kern

	var edges, faces, solids []kernel.Shape
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
		case kernel.KindSolid:
			solids = append(solids, s)
		case kernel.KindShell, kernel.KindCompound:
			for _, c := range k.Children(s) {
				flatten(c)
			}
		}
	}
	for _, s := range shapes {
		flatten(s)
	}

	var pendFaces []kernel.Shape
	if facesToPending {
		pendFaces, faces = faces, nil
	}

	objects := append(append([]kernel.Shape{}, solids...), faces...)
	if len(objects) == 0 {
		p.addFacesToPending(pendFaces)
		p.addEdgesToPending(edges)
		p.lastVertices, p.lastEdges, p.lastFaces, p.lastSolids = nil, nil, nil, nil
		return nil
	}

	pre := p.snapshot()

	var err error
	switch mode {
	case ModeAdd:
		if p.part == nil && len(objects) == 1 && objects[0].Kind() == kernel.KindSolid {
			p.part = objects[0]
		} else {
			base := p.part
			if base == nil {
				base, objects = objects[0], objects[1:]
			}
			p.part, err = k.Fuse(base, objects...)
			if err == nil {
				p.part = k.Clean(p.part)
			}
		}
	case ModeSubtract:
		if p.part == nil {
			return ErrNothingToSubtractFrom
		}
		p.part, err = k.Cut(p.part, objects...)
		if err == nil {
			p.part = k.Clean(p.part)
		}
	case ModeIntersect:
		if p.part == nil {
			return ErrNothingToIntersectWith
		}
		p.part, err = k.Intersect(p.part, objects...)
		if err == nil {
			p.part = k.Clean(p.part)
		}
	case ModeReplace:
		p.part = k.Clean(k.Compound(objects...))
	case ModeConstruction:
		// construction geometry is visible to queries but never
		// lands in the part
	}
	if err != nil {
		return fmt.Errorf("combine (%s): %w", mode, err)
	}

	// Pending geometry lands only once the booleans have succeeded, so
	// a failed combine leaves no residue behind.
	p.addFacesToPending(pendFaces)
	p.addEdgesToPending(edges)

	post := p.snapshot()
	p.setDiff(pre, post)

	p.ctx.log.Debug("merged into part",
		zap.Stringer("mode", mode),
		zap.Int("solids", len(solids)),
		zap.Int("faces", len(faces)),
		zap.Int("pending_edges", len(p.pendingEdges)),
		zap.Int("new_solids", len(p.lastSolids)),
	)
	return nil
}

func (p *PartBuilder) addFacesToPending(faces []kernel.Shape) {
	if len(faces) == 0 {
		return
	}
	for _, pl := range p.locs.Current() {
		for _, f := range faces {
			p.pendingFaces = append(p.pendingFaces, p.ctx.kern.Moved(f, pl.Loc))
			p.pendingFacePlanes = append(p.pendingFacePlanes, pl.Plane)
		}
	}
}

func (p *PartBuilder) addEdgesToPending(edges []kernel.Shape) {
	if len(edges) == 0 {
		return
	}
	for _, pl := range p.locs.Current() {
		for _, e := range edges {
			p.pendingEdges = append(p.pendingEdges, p.ctx.kern.Moved(e, pl.Loc))
			p.pendingEdgePlanes = append(p.pendingEdgePlanes, pl.Plane)
		}
	}
}

func (p *PartBuilder) clearPendingFaces() {
	p.pendingFaces = nil
	p.pendingFacePlanes = nil
}

func (p *PartBuilder) clearPendingEdges() {
	p.pendingEdges = nil
	p.pendingEdgePlanes = nil
}

// topo is a snapshot of the part's topology by shape identity.
type topo struct {
	vertices, edges, faces, solids []kernel.Shape
}

func (p *PartBuilder) snapshot() *topo {
	if p.part == nil {
		return &topo{}
	}
	k := p.ctx.kern
	return &topo{
		vertices: k.Vertices(p.part),
		edges:    k.Edges(p.part),
		faces:    k.Faces(p.part),
		solids:   k.Solids(p.part),
	}
}

func (p *PartBuilder) setDiff(pre, post *topo) {
	if post == nil {
		post = p.snapshot()
	}
	if pre == nil {
		pre = &topo{}
	}
	p.lastVertices = diffShapes(pre.vertices, post.vertices)
	p.lastEdges = diffShapes(pre.edges, post.edges)
	p.lastFaces = diffShapes(pre.faces, post.faces)
	p.lastSolids = diffShapes(pre.solids, post.solids)
}

// diffShapes returns the members of post not present in pre, by
// identity, preserving post's order.
func diffShapes(pre, post []kernel.Shape) []kernel.Shape {
	seen := make(map[string]struct{}, len(pre))
	for _, s := range pre {
		seen[s.ID()] = struct{}{}
	}
	var out []kernel.Shape
	for _, s := range post {
		if _, ok := seen[s.ID()]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// Vertices returns the part's vertices, or only those created by the
// most recent operation when sel is SelectLast.
func (p *PartBuilder) Vertices(sel Select) []kernel.Shape {
	if sel == SelectLast {
		return p.lastVertices
	}
	if p.part == nil {
		return nil
	}
	return p.ctx.kern.Vertices(p.part)
}

// Edges returns the part's edges, filtered by sel.
func (p *PartBuilder) Edges(sel Select) []kernel.Shape {
	if sel == SelectLast {
		return p.lastEdges
	}
	if p.part == nil {
		return nil
	}
	return p.ctx.kern.Edges(p.part)
}

// Faces returns the part's faces, filtered by sel.
func (p *PartBuilder) Faces(sel Select) []kernel.Shape {
	if sel == SelectLast {
		return p.lastFaces
	}
	if p.part == nil {
		return nil
	}
	return p.ctx.kern.Faces(p.part)
}

// Solids returns the part's solids, filtered by sel.
func (p *PartBuilder) Solids(sel Select) []kernel.Shape {
	if sel == SelectLast {
		return p.lastSolids
	}
	if p.part == nil {
		return nil
	}
	return p.ctx.kern.Solids(p.part)
}
