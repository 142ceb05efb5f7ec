package build

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/geom"
	"github.com/chazu/burl/pkg/kernel"
)

// Option adjusts a primitive or operation call. Options not applicable
// to an operation are ignored by it.
type Option func(*settings)

// settings carries the per-call knobs shared by all operations, with
// one field per keyword the operations understand.
type settings struct {
	mode       Mode
	rotation   geom.Location
	centered   [3]bool
	amount     float64
	until      Until
	both       bool
	taper      float64
	depth      float64
	ruled      bool
	face       kernel.Shape
	sections   []kernel.Shape
	path       kernel.Shape
	multi      bool
	frenet     bool
	transition kernel.Transition
	normal     *v3.Vec
	binormal   kernel.Shape
	planes     []geom.Plane
	height     float64
	arc        float64
	arc2       float64
	arc3       float64
	sinkAngle  float64
	plane      *geom.Plane
}

func newSettings(mode Mode) settings {
	return settings{
		mode:      mode,
		rotation:  geom.Identity(),
		centered:  [3]bool{true, true, true},
		arc:       360,
		arc2:      360,
		arc3:      360,
		sinkAngle: 82, // common countersink tip angle
	}
}

func (s *settings) apply(opts []Option) {
	for _, o := range opts {
		o(s)
	}
}

// WithMode overrides the operation's default combination mode.
func WithMode(m Mode) Option { return func(s *settings) { s.mode = m } }

// Rotated rotates the created geometry by Euler angles in degrees.
func Rotated(rx, ry, rz float64) Option {
	return func(s *settings) { s.rotation = geom.Rotation(rx, ry, rz) }
}

// Centered controls per-axis centering of a primitive about its local
// origin.
func Centered(x, y, z bool) Option {
	return func(s *settings) { s.centered = [3]bool{x, y, z} }
}

// Amount sets a fixed extrusion distance; its sign controls direction.
func Amount(a float64) Option { return func(s *settings) { s.amount = a } }

// UntilSurface extrudes until the next or last surface of the part
// instead of by a fixed amount.
func UntilSurface(u Until) Option { return func(s *settings) { s.until = u } }

// Both extrudes in both directions.
func Both() Option { return func(s *settings) { s.both = true } }

// Taper applies a draft angle in degrees to an extrusion.
func Taper(deg float64) Option { return func(s *settings) { s.taper = deg } }

// Depth sets an explicit hole depth; without it the depth is inferred
// to pass through the whole part.
func Depth(d float64) Option { return func(s *settings) { s.depth = d } }

// Ruled lofts with straight sections between layers.
func Ruled() Option { return func(s *settings) { s.ruled = true } }

// WithFace supplies an explicit face to extrude instead of consuming
// pending faces.
func WithFace(f kernel.Shape) Option { return func(s *settings) { s.face = f } }

// WithSections supplies explicit section faces to a loft, sweep or
// revolve instead of consuming pending faces.
func WithSections(faces ...kernel.Shape) Option {
	return func(s *settings) { s.sections = faces }
}

// WithPath supplies an explicit sweep path (edge or wire).
func WithPath(p kernel.Shape) Option { return func(s *settings) { s.path = p } }

// Multisection sweeps all sections along the path as one solid.
func Multisection() Option { return func(s *settings) { s.multi = true } }

// Frenet uses the frenet algorithm for sweep orientation.
func Frenet() Option { return func(s *settings) { s.frenet = true } }

// WithTransition selects sweep corner handling.
func WithTransition(t kernel.Transition) Option {
	return func(s *settings) { s.transition = t }
}

// WithNormal fixes the section normal to a constant direction.
func WithNormal(n v3.Vec) Option {
	return func(s *settings) { v := n; s.normal = &v }
}

// WithBinormal guides sweep rotation along the path.
func WithBinormal(b kernel.Shape) Option { return func(s *settings) { s.binormal = b } }

// SectionBy supplies explicit section planes.
func SectionBy(planes ...geom.Plane) Option {
	return func(s *settings) { s.planes = planes }
}

// AtHeight offsets a section plane along its normal.
func AtHeight(h float64) Option { return func(s *settings) { s.height = h } }

// ArcSize limits the angular size of a primitive in degrees.
func ArcSize(deg float64) Option { return func(s *settings) { s.arc = deg } }

// ArcSizes sets the three angular limits of a sphere.
func ArcSizes(a1, a2, a3 float64) Option {
	return func(s *settings) { s.arc, s.arc2, s.arc3 = a1, a2, a3 }
}

// SinkAngle sets the countersink cone angle in degrees.
func SinkAngle(deg float64) Option { return func(s *settings) { s.sinkAngle = deg } }

// OnPlane sets the initial workplane of a new builder.
func OnPlane(p geom.Plane) Option { return func(s *settings) { pl := p; s.plane = &pl } }
