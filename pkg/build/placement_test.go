package build

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/geom"
)

func TestLocationsSetRejectsEmpty(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()

	if err := p.Locations().Set(); !errors.Is(err, ErrEmptyPlacementSet) {
		t.Errorf("Set(): err = %v, want ErrEmptyPlacementSet", err)
	}
	if err := p.Locations().Push(); !errors.Is(err, ErrEmptyPlacementSet) {
		t.Errorf("Push(): err = %v, want ErrEmptyPlacementSet", err)
	}
}

func TestLocationsPopBelowBootstrapFails(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()

	if err := p.Locations().Pop(); err == nil {
		t.Error("Pop at bootstrap frame should fail")
	}

	if err := p.Locations().Push(At([3]float64{1, 0, 0})...); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := p.Locations().Pop(); err != nil {
		t.Errorf("Pop of pushed frame: %v", err)
	}
	if err := p.Locations().Pop(); err == nil {
		t.Error("second Pop should fail, bootstrap frame is not poppable")
	}
}

func TestBareTransformAdoptsBuilderPlane(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()

	loc := geom.Translation(v3.Vec{Z: 5})
	if err := p.Locations().Set(Placement{Loc: loc}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cur := p.Locations().Current()
	if len(cur) != 1 {
		t.Fatalf("current placements = %d, want 1", len(cur))
	}
	pl := cur[0].Plane
	if math.Abs(pl.Origin.Z-5) > 1e-12 {
		t.Errorf("adopted plane origin.Z = %g, want 5", pl.Origin.Z)
	}
	if math.Abs(pl.ZDir.Z-1) > 1e-12 {
		t.Errorf("adopted plane normal = %v, want +Z", pl.ZDir)
	}
}

func TestPlacementsResetAfterConsumingOperation(t *testing.T) {
	c := newTestContext()
	p := NewPart(c)
	defer p.Close()

	pts := At([3]float64{0, 0, 0}, [3]float64{20, 0, 0})
	if err := p.Locations().Set(pts...); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := Box(c, 4, 4, 4); err != nil {
		t.Fatalf("Box: %v", err)
	}

	cur := p.Locations().Current()
	if len(cur) != 1 {
		t.Fatalf("placements after Box = %d, want bootstrap identity", len(cur))
	}
	origin := cur[0].Plane.Origin
	if origin.X != 0 || origin.Y != 0 || origin.Z != 0 {
		t.Errorf("placement after reset not at origin: %v", origin)
	}

	// Both placements produced geometry before the reset.
	bb := c.Kernel().BoundingBox(p.Part())
	if math.Abs(bb.Min.X-(-2)) > 1e-9 || math.Abs(bb.Max.X-22) > 1e-9 {
		t.Errorf("part bounds X = [%g, %g], want [-2, 22]", bb.Min.X, bb.Max.X)
	}
}
