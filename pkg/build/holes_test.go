package build

import (
	"errors"
	"testing"

	"github.com/chazu/burl/pkg/kernel/planar"
)

func TestHoleInferredDepthSpansPart(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()

	if _, err := Box(c, 10, 10, 10); err != nil {
		t.Fatalf("Box: %v", err)
	}
	cutter, err := Hole(c, 1)
	if err != nil {
		t.Fatalf("Hole: %v", err)
	}

	// The inferred cutter must start above the part and exit below it.
	bb := c.Kernel().BoundingBox(cutter)
	if bb.Max.Z <= 5 || bb.Min.Z >= -5 {
		t.Errorf("cutter Z span = [%g, %g], must straddle [-5, 5]", bb.Min.Z, bb.Max.Z)
	}
	if got := len(p.Solids(SelectAll)); got != 1 {
		t.Errorf("solids after hole = %d, want 1", got)
	}
}

func TestHoleRemovesMaterial(t *testing.T) {
	k := planar.New()
	c := NewContext(k)
	p := NewPart(c)
	defer p.Close()

	if _, err := Box(c, 10, 10, 10); err != nil {
		t.Fatalf("Box: %v", err)
	}
	v0 := k.Volume(p.Part())
	if _, err := Hole(c, 1); err != nil {
		t.Fatalf("Hole: %v", err)
	}
	v1 := k.Volume(p.Part())

	// A through hole of radius 1 removes about pi*10 of material.
	removed := v0 - v1
	if removed < 15 || removed > 50 {
		t.Errorf("material removed = %g, want roughly 31", removed)
	}
}

func TestHoleExplicitDepthIsBlind(t *testing.T) {
	k := planar.New()
	c := NewContext(k)
	p := NewPart(c)
	defer p.Close()

	if _, err := Box(c, 10, 10, 10, Centered(true, true, false)); err != nil {
		t.Fatalf("Box: %v", err)
	}
	v0 := k.Volume(p.Part())
	if err := p.Locations().Set(At([3]float64{0, 0, 10})...); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cutter, err := Hole(c, 1, Depth(4))
	if err != nil {
		t.Fatalf("Hole: %v", err)
	}

	// Explicit depth starts at the placement and drills down.
	bb := k.BoundingBox(cutter)
	if bb.Max.Z > 10+1e-9 || bb.Max.Z < 10-1e-9 {
		t.Errorf("cutter top Z = %g, want the surface at 10", bb.Max.Z)
	}
	if bb.Min.Z > 6+1e-9 || bb.Min.Z < 6-1e-9 {
		t.Errorf("cutter bottom Z = %g, want a blind hole ending at 6", bb.Min.Z)
	}
	removed := v0 - k.Volume(p.Part())
	if removed <= 0 || removed > 15 {
		t.Errorf("material removed = %g, want a small blind-hole amount", removed)
	}
}

func TestHoleWithoutPartFails(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()

	_, err := Hole(c, 1)
	if !errors.Is(err, ErrNothingToSubtractFrom) {
		t.Errorf("Hole on empty part: err = %v, want ErrNothingToSubtractFrom", err)
	}
}

func TestCounterBoreHoleAccumulatesPlacements(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()
	k := c.Kernel()

	if _, err := Box(c, 40, 10, 5, Centered(true, true, false)); err != nil {
		t.Fatalf("Box: %v", err)
	}
	pts := At([3]float64{-10, 0, 5}, [3]float64{10, 0, 5})
	if err := p.Locations().Set(pts...); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cutters, err := CounterBoreHole(c, 1, 2, 1)
	if err != nil {
		t.Fatalf("CounterBoreHole: %v", err)
	}
	if got := len(k.Children(cutters)); got != 2 {
		t.Errorf("cutters = %d, want one per placement", got)
	}
	if got := len(p.Solids(SelectAll)); got != 1 {
		t.Errorf("solids after counter-bore = %d, want 1", got)
	}
	if got := len(p.Locations().Current()); got != 1 {
		t.Errorf("placements after counter-bore = %d, want reset to bootstrap", got)
	}
}

func TestCounterSinkHoleConeAtSurface(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()
	k := c.Kernel()

	if _, err := Box(c, 10, 10, 10, Centered(true, true, false)); err != nil {
		t.Fatalf("Box: %v", err)
	}
	if err := p.Locations().Set(At([3]float64{0, 0, 10})...); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cutter, err := CounterSinkHole(c, 1, 3)
	if err != nil {
		t.Fatalf("CounterSinkHole: %v", err)
	}

	// The sink cone opens to its full radius at the surface.
	bb := k.BoundingBox(cutter)
	if bb.Max.X < 3-1e-9 || bb.Min.X > -3+1e-9 {
		t.Errorf("cutter X span = [%g, %g], want the sink radius 3", bb.Min.X, bb.Max.X)
	}
	if got := len(p.Solids(SelectAll)); got != 1 {
		t.Errorf("solids after counter-sink = %d, want 1", got)
	}
}
