package engine

import (
	"math"
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"
)

// kwSexp builds the string form a keyword takes after preprocessing.
func kwSexp(name string) zygo.Sexp {
	return &zygo.SexpStr{S: kwPrefix + name}
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box 10 10 10 :mode :add)`,
			expect: `(box 10 10 10 "__kw_mode" "__kw_add")`,
		},
		{
			name:   "multiple keywords",
			input:  `(extrude :amount 5 :taper 2)`,
			expect: `(extrude "__kw_amount" 5 "__kw_taper" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(counter-sink-hole 2 4)`,
			expect: `(counter_sink_hole 2 4)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:sink-angle`,
			expect: `"__kw_sink-angle"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Primitive programs
// ---------------------------------------------------------------------------

func TestSimpleBox(t *testing.T) {
	eng := newTestEngine()

	res, evalErrs, err := eng.Evaluate(`(box 10 20 30)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Part == nil {
		t.Fatal("expected a part")
	}
	if res.Solids != 1 {
		t.Errorf("solids = %d, want 1", res.Solids)
	}
	if res.Vertices != 8 || res.Edges != 12 || res.Faces != 6 {
		t.Errorf("topology = %d/%d/%d, want 8/12/6", res.Vertices, res.Edges, res.Faces)
	}
	d := res.Bounds.Max.Sub(res.Bounds.Min)
	if math.Abs(d.X-10) > 1e-9 || math.Abs(d.Y-20) > 1e-9 || math.Abs(d.Z-30) > 1e-9 {
		t.Errorf("bounds extent = %v, want 10x20x30", d)
	}
}

func TestBoxWithHole(t *testing.T) {
	eng := newTestEngine()

	source := `
(box 20 20 10)
(hole 2)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Solids != 1 {
		t.Errorf("solids = %d, want 1", res.Solids)
	}
	if res.Faces <= 6 {
		t.Errorf("faces = %d, want the hole walls added to the box faces", res.Faces)
	}
}

func TestVariableReference(t *testing.T) {
	eng := newTestEngine()

	source := `
(def w 15)
(box w w 5)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	d := res.Bounds.Max.Sub(res.Bounds.Min)
	if math.Abs(d.X-15) > 1e-9 {
		t.Errorf("bounds X extent = %g, want 15", d.X)
	}
}

// ---------------------------------------------------------------------------
// Placements
// ---------------------------------------------------------------------------

func TestLocationsGrid(t *testing.T) {
	eng := newTestEngine()

	source := `
(box 60 20 5 :centered false)
(locations (vec3 10 10 5) (vec3 30 10 5) (vec3 50 10 5))
(hole 2)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Solids != 1 {
		t.Errorf("solids = %d, want 1", res.Solids)
	}
	// Three holes each add side walls beyond the plain box.
	if res.Faces < 9 {
		t.Errorf("faces = %d, want walls for three holes", res.Faces)
	}
}

func TestPushPopLocations(t *testing.T) {
	eng := newTestEngine()

	source := `
(box 40 40 5 :centered false)
(push-locations (vec3 10 10 0))
(pop-locations)
(locations (translation 20 20 0))
(box 4 4 20 :mode :subtract)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Solids != 1 {
		t.Errorf("solids = %d, want 1", res.Solids)
	}
}

// ---------------------------------------------------------------------------
// Sketch and extrude
// ---------------------------------------------------------------------------

func TestSketchExtrude(t *testing.T) {
	eng := newTestEngine()

	source := `
(begin-sketch)
(rectangle 10 6)
(end-sketch)
(extrude :amount 4)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Solids != 1 {
		t.Fatalf("solids = %d, want 1", res.Solids)
	}
	if math.Abs(res.Bounds.Max.Z-4) > 1e-9 {
		t.Errorf("extruded height = %g, want 4", res.Bounds.Max.Z)
	}
}

func TestUnclosedSketchIsFoldedAtEnd(t *testing.T) {
	eng := newTestEngine()

	// A sketch the program forgot to close must still fold cleanly
	// instead of panicking the builder stack.
	source := `
(begin-sketch)
(rectangle 10 6)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestEndSketchWithoutBeginFails(t *testing.T) {
	eng := newTestEngine()

	res, evalErrs, err := eng.Evaluate(`(end-sketch)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for end-sketch without begin-sketch")
	}
}

// ---------------------------------------------------------------------------
// Until-surface extrusion through the DSL
// ---------------------------------------------------------------------------

func TestExtrudeUntilKeyword(t *testing.T) {
	eng := newTestEngine()

	source := `
(box 30 10 2 :centered false)
(locations (vec3 15 5 0))
(circle 1.5)
(extrude :until :last)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Solids != 1 {
		t.Errorf("solids = %d, want 1", res.Solids)
	}
}

// ---------------------------------------------------------------------------
// Counter-bored and countersunk holes through the DSL
// ---------------------------------------------------------------------------

func TestCounterBoreHoleKeywords(t *testing.T) {
	eng := newTestEngine()

	source := `
(box 40 20 10)
(counter-bore-hole 2 4 3)
(counter-sink-hole 2 4 :sink-angle 90)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res.Solids != 1 {
		t.Errorf("solids = %d, want 1", res.Solids)
	}
}

// ---------------------------------------------------------------------------
// Argument conversion
// ---------------------------------------------------------------------------

func TestToModeNames(t *testing.T) {
	for _, name := range []string{"add", "subtract", "intersect", "replace", "construction", "private"} {
		if _, err := toMode(kwSexp(name)); err != nil {
			t.Errorf("toMode(%q): %v", name, err)
		}
	}
	if _, err := toMode(kwSexp("bogus")); err == nil {
		t.Error("toMode should reject unknown mode names")
	}
}

func TestToUntilNames(t *testing.T) {
	for _, name := range []string{"next", "last"} {
		if _, err := toUntil(kwSexp(name)); err != nil {
			t.Errorf("toUntil(%q): %v", name, err)
		}
	}
	if _, err := toUntil(kwSexp("sideways")); err == nil {
		t.Error("toUntil should reject unknown surface names")
	}
}
