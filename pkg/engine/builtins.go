package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/burl/pkg/build"
	"github.com/chazu/burl/pkg/geom"
	"github.com/chazu/burl/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Burl Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: counter-sink-hole -> counter_sink_hole
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps a kernel shape handle so builtins can pass geometry
// to each other.
type sexpShape struct {
	shape kernel.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.shape == nil {
		return "(shape nil)"
	}
	return fmt.Sprintf("(shape %s %s)", s.shape.Kind(), s.shape.ID())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a 3D vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpLoc wraps a placement transform built by (rotation ...) or
// (translation ...).
type sexpLoc struct {
	loc geom.Location
}

func (l *sexpLoc) SexpString(ps *zygo.PrintState) string {
	return "(location)"
}
func (l *sexpLoc) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp. A bare keyword flag (nil value)
// counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_add) and plain strings ("add").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toMode converts a keyword to a combination mode.
func toMode(s zygo.Sexp) (build.Mode, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected mode keyword: %w", err)
	}
	switch name {
	case "add":
		return build.ModeAdd, nil
	case "subtract":
		return build.ModeSubtract, nil
	case "intersect":
		return build.ModeIntersect, nil
	case "replace":
		return build.ModeReplace, nil
	case "construction":
		return build.ModeConstruction, nil
	case "private":
		return build.ModePrivate, nil
	}
	return 0, fmt.Errorf("invalid mode %q", name)
}

// toUntil converts a keyword to an extrusion limit.
func toUntil(s zygo.Sexp) (build.Until, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected until keyword (:next, :last): %w", err)
	}
	switch name {
	case "next":
		return build.UntilNext, nil
	case "last":
		return build.UntilLast, nil
	}
	return 0, fmt.Errorf("invalid until %q, expected next or last", name)
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// floats extracts n positional float arguments.
func floats(pa kwArgs, n int, what string) ([]float64, error) {
	if len(pa.positional) < n {
		return nil, fmt.Errorf("%s requires %d dimensions, got %d", what, n, len(pa.positional))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := toFloat64(pa.positional[i])
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", what, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// commonOptions translates the keyword arguments every operation
// understands into builder options.
func commonOptions(pa kwArgs) ([]build.Option, error) {
	var opts []build.Option
	if v, ok := pa.kw["mode"]; ok {
		m, err := toMode(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, build.WithMode(m))
	}
	if v, ok := pa.kw["rotate"]; ok {
		r, err := toVec3(v)
		if err != nil {
			return nil, fmt.Errorf("rotate: %w", err)
		}
		opts = append(opts, build.Rotated(r.X, r.Y, r.Z))
	}
	if v, ok := pa.kw["centered"]; ok {
		b, err := toBool(v)
		if err != nil {
			return nil, fmt.Errorf("centered: %w", err)
		}
		opts = append(opts, build.Centered(b, b, b))
	}
	if v, ok := pa.kw["amount"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("amount: %w", err)
		}
		opts = append(opts, build.Amount(f))
	}
	if v, ok := pa.kw["until"]; ok {
		u, err := toUntil(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, build.UntilSurface(u))
	}
	if v, ok := pa.kw["both"]; ok {
		b, err := toBool(v)
		if err != nil {
			return nil, fmt.Errorf("both: %w", err)
		}
		if b {
			opts = append(opts, build.Both())
		}
	}
	if v, ok := pa.kw["taper"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("taper: %w", err)
		}
		opts = append(opts, build.Taper(f))
	}
	if v, ok := pa.kw["depth"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("depth: %w", err)
		}
		opts = append(opts, build.Depth(f))
	}
	if v, ok := pa.kw["ruled"]; ok {
		b, err := toBool(v)
		if err != nil {
			return nil, fmt.Errorf("ruled: %w", err)
		}
		if b {
			opts = append(opts, build.Ruled())
		}
	}
	if v, ok := pa.kw["height"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
		opts = append(opts, build.AtHeight(f))
	}
	if v, ok := pa.kw["arc"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("arc: %w", err)
		}
		opts = append(opts, build.ArcSize(f))
	}
	if v, ok := pa.kw["sink-angle"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("sink-angle: %w", err)
		}
		opts = append(opts, build.SinkAngle(f))
	}
	return opts, nil
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// evalState tracks the builders the engine has opened for one program.
// The engine owns all builder open/close calls, so the innermost open
// sketch (or failing that the part) is always the current builder.
type evalState struct {
	ctx      *build.Context
	part     *build.PartBuilder
	sketches []*build.SketchBuilder
}

func (st *evalState) locations() *build.Locations {
	if n := len(st.sketches); n > 0 {
		return st.sketches[n-1].Locations()
	}
	return st.part.Locations()
}

func (st *evalState) popSketch() error {
	n := len(st.sketches)
	if n == 0 {
		return fmt.Errorf("end-sketch: no open sketch")
	}
	sk := st.sketches[n-1]
	st.sketches = st.sketches[:n-1]
	return sk.Close()
}

// closeOpenSketches folds any sketches the program left open, so their
// faces are not silently lost.
func (st *evalState) closeOpenSketches() error {
	for len(st.sketches) > 0 {
		if err := st.popSketch(); err != nil {
			return err
		}
	}
	return nil
}

// placementsFrom converts positional vec3/location arguments into
// placements.
func placementsFrom(args []zygo.Sexp, what string) ([]build.Placement, error) {
	var ps []build.Placement
	for i, a := range args {
		switch v := a.(type) {
		case *sexpVec3:
			ps = append(ps, build.Placement{Loc: geom.Translation(v.vec)})
		case *sexpLoc:
			ps = append(ps, build.Placement{Loc: v.loc})
		default:
			return nil, fmt.Errorf("%s: argument %d: expected vec3 or location, got %T", what, i+1, a)
		}
	}
	return ps, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Burl DSL builtins into a zygomys
// environment. The builtins drive the builders in st during evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals, and kebab-case operation names to underscore form.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {

	shapeResult := func(s kernel.Shape, err error) (zygo.Sexp, error) {
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: s}, nil
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 3, "vec3")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: v3.Vec{X: d[0], Y: d[1], Z: d[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (rotation 0 0 45) -- Euler angles in degrees
	// -----------------------------------------------------------------------
	env.AddFunction("rotation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 3, "rotation")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpLoc{loc: geom.Rotation(d[0], d[1], d[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (translation 10 0 0)
	// -----------------------------------------------------------------------
	env.AddFunction("translation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 3, "translation")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpLoc{loc: geom.Translation(v3.Vec{X: d[0], Y: d[1], Z: d[2]})}, nil
	})

	// -----------------------------------------------------------------------
	// (locations (vec3 0 0 0) (vec3 20 0 0)) -- replace the active set
	// -----------------------------------------------------------------------
	env.AddFunction("locations", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ps, err := placementsFrom(args, "locations")
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := st.locations().Set(ps...); err != nil {
			return zygo.SexpNull, err
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (push-locations ...) / (pop-locations) / (reset-locations)
	// -----------------------------------------------------------------------
	env.AddFunction("push_locations", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ps, err := placementsFrom(args, "push-locations")
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := st.locations().Push(ps...); err != nil {
			return zygo.SexpNull, err
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("pop_locations", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.locations().Pop(); err != nil {
			return zygo.SexpNull, err
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("reset_locations", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		st.locations().Reset()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (box 10 20 30 :mode :add :rotate (vec3 0 0 45))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 3, "box")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return shapeResult(build.Box(st.ctx, d[0], d[1], d[2], opts...))
	})

	// -----------------------------------------------------------------------
	// (cylinder 5 20)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 2, "cylinder")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return shapeResult(build.Cylinder(st.ctx, d[0], d[1], opts...))
	})

	// -----------------------------------------------------------------------
	// (cone 10 2 15)
	// -----------------------------------------------------------------------
	env.AddFunction("cone", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 3, "cone")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cone: %w", err)
		}
		return shapeResult(build.Cone(st.ctx, d[0], d[1], d[2], opts...))
	})

	// -----------------------------------------------------------------------
	// (sphere 8)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 1, "sphere")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return shapeResult(build.Sphere(st.ctx, d[0], opts...))
	})

	// -----------------------------------------------------------------------
	// (torus 20 3)
	// -----------------------------------------------------------------------
	env.AddFunction("torus", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 2, "torus")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("torus: %w", err)
		}
		return shapeResult(build.Torus(st.ctx, d[0], d[1], opts...))
	})

	// -----------------------------------------------------------------------
	// (wedge 10 10 10 2 2 8 8)
	// -----------------------------------------------------------------------
	env.AddFunction("wedge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 7, "wedge")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("wedge: %w", err)
		}
		return shapeResult(build.Wedge(st.ctx, d[0], d[1], d[2], d[3], d[4], d[5], d[6], opts...))
	})

	// -----------------------------------------------------------------------
	// (hole 2 :depth 30) -- depth inferred through the part when omitted
	// -----------------------------------------------------------------------
	env.AddFunction("hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 1, "hole")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hole: %w", err)
		}
		return shapeResult(build.Hole(st.ctx, d[0], opts...))
	})

	// -----------------------------------------------------------------------
	// (counter-bore-hole 2 4 3)
	// -----------------------------------------------------------------------
	env.AddFunction("counter_bore_hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 3, "counter-bore-hole")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("counter-bore-hole: %w", err)
		}
		return shapeResult(build.CounterBoreHole(st.ctx, d[0], d[1], d[2], opts...))
	})

	// -----------------------------------------------------------------------
	// (counter-sink-hole 2 4 :sink-angle 90)
	// -----------------------------------------------------------------------
	env.AddFunction("counter_sink_hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 2, "counter-sink-hole")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("counter-sink-hole: %w", err)
		}
		return shapeResult(build.CounterSinkHole(st.ctx, d[0], d[1], opts...))
	})

	// -----------------------------------------------------------------------
	// (begin-sketch) ... (end-sketch)
	// -----------------------------------------------------------------------
	env.AddFunction("begin_sketch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var opts []build.Option
		if v, ok := pa.kw["mode"]; ok {
			m, err := toMode(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("begin-sketch: %w", err)
			}
			opts = append(opts, build.WithMode(m))
		}
		st.sketches = append(st.sketches, build.NewSketch(st.ctx, opts...))
		return zygo.SexpNull, nil
	})

	env.AddFunction("end_sketch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.popSketch(); err != nil {
			return zygo.SexpNull, err
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (rectangle 10 6) / (circle 4)
	// -----------------------------------------------------------------------
	env.AddFunction("rectangle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 2, "rectangle")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rectangle: %w", err)
		}
		return shapeResult(build.Rectangle(st.ctx, d[0], d[1], opts...))
	})

	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := floats(pa, 1, "circle")
		if err != nil {
			return zygo.SexpNull, err
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		return shapeResult(build.Circle(st.ctx, d[0], opts...))
	})

	// -----------------------------------------------------------------------
	// (extrude :amount 5) / (extrude :until :next)
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		return shapeResult(build.Extrude(st.ctx, opts...))
	})

	// -----------------------------------------------------------------------
	// (loft :ruled true)
	// -----------------------------------------------------------------------
	env.AddFunction("loft", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loft: %w", err)
		}
		return shapeResult(build.Loft(st.ctx, opts...))
	})

	// -----------------------------------------------------------------------
	// (revolve (vec3 0 0 0) (vec3 0 0 1) :arc 180)
	// -----------------------------------------------------------------------
	env.AddFunction("revolve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("revolve requires an axis origin and direction")
		}
		origin, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("revolve: origin: %w", err)
		}
		dir, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("revolve: direction: %w", err)
		}
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("revolve: %w", err)
		}
		return shapeResult(build.Revolve(st.ctx, origin, dir, opts...))
	})

	// -----------------------------------------------------------------------
	// (sweep)
	// -----------------------------------------------------------------------
	env.AddFunction("sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
		}
		return shapeResult(build.Sweep(st.ctx, opts...))
	})

	// -----------------------------------------------------------------------
	// (section :height 5)
	// -----------------------------------------------------------------------
	env.AddFunction("section", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts, err := commonOptions(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("section: %w", err)
		}
		return shapeResult(build.Section(st.ctx, opts...))
	})
}
