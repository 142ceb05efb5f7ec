package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const eps = 1e-9

func vecNear(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestIdentityApply(t *testing.T) {
	p := v3.Vec{X: 1, Y: 2, Z: 3}
	if got := Identity().Apply(p); !vecNear(got, p) {
		t.Errorf("Identity().Apply(%v) = %v", p, got)
	}
}

func TestZeroLocationActsAsIdentity(t *testing.T) {
	var l Location
	p := v3.Vec{X: 4, Y: -1, Z: 7}
	if got := l.Apply(p); !vecNear(got, p) {
		t.Errorf("zero Location.Apply(%v) = %v, want unchanged", p, got)
	}
}

func TestTranslationApply(t *testing.T) {
	l := Translation(v3.Vec{X: 10, Y: 0, Z: -5})
	got := l.Apply(v3.Vec{X: 1, Y: 1, Z: 1})
	want := v3.Vec{X: 11, Y: 1, Z: -4}
	if !vecNear(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func TestRotationZ90(t *testing.T) {
	l := Rotation(0, 0, 90)
	got := l.Apply(v3.Vec{X: 1})
	want := v3.Vec{Y: 1}
	if !vecNear(got, want) {
		t.Errorf("rotating +X by 90 about Z = %v, want %v", got, want)
	}
}

func TestMulComposesRightToLeft(t *testing.T) {
	rot := Rotation(0, 0, 90)
	shift := Translation(v3.Vec{X: 5})
	// shift after rotation: p -> rot(p) + (5,0,0)
	l := shift.Mul(rot)
	got := l.Apply(v3.Vec{X: 1})
	want := v3.Vec{X: 5, Y: 1}
	if !vecNear(got, want) {
		t.Errorf("composed Apply = %v, want %v", got, want)
	}
}

func TestApplyDirIgnoresTranslation(t *testing.T) {
	l := Translation(v3.Vec{X: 100, Y: 100, Z: 100})
	d := v3.Vec{Z: 1}
	if got := l.ApplyDir(d); !vecNear(got, d) {
		t.Errorf("ApplyDir under pure translation = %v, want %v", got, d)
	}
}

func TestNamedPlanes(t *testing.T) {
	tests := []struct {
		name string
		zdir v3.Vec
	}{
		{"XY", v3.Vec{Z: 1}},
		{"XZ", v3.Vec{Y: -1}},
		{"YZ", v3.Vec{X: 1}},
	}
	for _, tt := range tests {
		p, err := Named(tt.name)
		if err != nil {
			t.Fatalf("Named(%q): %v", tt.name, err)
		}
		if !vecNear(p.ZDir, tt.zdir) {
			t.Errorf("Named(%q).ZDir = %v, want %v", tt.name, p.ZDir, tt.zdir)
		}
	}
	if _, err := Named("UV"); err == nil {
		t.Error("Named(\"UV\") should fail")
	}
}

func TestPlaneYDirOrthogonal(t *testing.T) {
	p := XY()
	y := p.YDir()
	if !vecNear(y, v3.Vec{Y: 1}) {
		t.Errorf("XY().YDir() = %v, want +Y", y)
	}
}

func TestPlaneMoved(t *testing.T) {
	p := XY().Moved(Translation(v3.Vec{Z: 5}))
	if !vecNear(p.Origin, v3.Vec{Z: 5}) {
		t.Errorf("moved origin = %v, want (0,0,5)", p.Origin)
	}
	if !vecNear(p.ZDir, v3.Vec{Z: 1}) {
		t.Errorf("moved normal = %v, want +Z", p.ZDir)
	}
}

func TestPlaneContains(t *testing.T) {
	p := XY()
	if !p.Contains(v3.Vec{X: 3, Y: -2}, eps) {
		t.Error("point on XY plane reported outside")
	}
	if p.Contains(v3.Vec{Z: 1}, eps) {
		t.Error("point off XY plane reported on it")
	}
}

func TestPlaneContainsLine(t *testing.T) {
	p := XY()
	if !p.ContainsLine(v3.Vec{X: 1}, v3.Vec{Y: 1}, eps) {
		t.Error("in-plane line reported outside")
	}
	if p.ContainsLine(v3.Vec{X: 1}, v3.Vec{Z: 1}, eps) {
		t.Error("line leaving the plane reported inside")
	}
	if p.ContainsLine(v3.Vec{Z: 2}, v3.Vec{X: 1}, eps) {
		t.Error("parallel line off the plane reported inside")
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		a, b v3.Vec
		want float64
	}{
		{v3.Vec{X: 1}, v3.Vec{X: 1}, 0},
		{v3.Vec{X: 1}, v3.Vec{Y: 1}, math.Pi / 2},
		{v3.Vec{X: 1}, v3.Vec{X: -1}, math.Pi},
		{v3.Vec{}, v3.Vec{X: 1}, 0},
	}
	for _, tt := range tests {
		if got := Angle(tt.a, tt.b); math.Abs(got-tt.want) > eps {
			t.Errorf("Angle(%v, %v) = %g, want %g", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAngleClampsRoundoff(t *testing.T) {
	// Nearly parallel vectors can push the cosine past 1 in floating
	// point; Angle must not return NaN.
	a := v3.Vec{X: 1, Y: 1e-16}
	if got := Angle(a, a); math.IsNaN(got) {
		t.Error("Angle returned NaN for parallel vectors")
	}
}
