package math

import (
	"testing"
)

const epsilon = 1e-5

func floatNear(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= epsilon
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalized()
	if !floatNear(v.Length(), 1.0) {
		t.Fatalf("expected unit length, got %f", v.Length())
	}
	if !v.Compare(NewVec3(0.6, 0, 0.8), epsilon) {
		t.Fatalf("unexpected direction %+v", v)
	}
}

func TestVec3NormalizedZero(t *testing.T) {
	v := NewVec3Zero().Normalized()
	if v != (Vec3{}) {
		t.Fatalf("normalizing zero vector should be a no-op, got %+v", v)
	}
}

func TestVec3Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := x.Cross(y)
	if !z.Compare(NewVec3(0, 0, 1), epsilon) {
		t.Fatalf("x cross y should be z, got %+v", z)
	}
}

func TestMat4IdentityMul(t *testing.T) {
	id := NewMat4Identity()
	m := NewMat4Translation(NewVec3(1, 2, 3))
	got := id.Mul(m)
	if got != m {
		t.Fatalf("identity multiplication changed the matrix: %+v", got)
	}
}

func TestMat4TranslationTransform(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	p := NewVec3(10, 20, 30).Transform(m)
	if !p.Compare(NewVec3(11, 22, 33), epsilon) {
		t.Fatalf("unexpected translated point %+v", p)
	}
}

func TestMat4ScaleThenTranslate(t *testing.T) {
	// Column-major convention: translate.Mul(scale) scales first.
	m := NewMat4Translation(NewVec3(5, 0, 0)).Mul(NewMat4Scale(NewVec3(2, 2, 2)))
	p := NewVec3(1, 1, 1).Transform(m)
	if !p.Compare(NewVec3(7, 2, 2), epsilon) {
		t.Fatalf("unexpected transformed point %+v", p)
	}
}

func TestMat4EulerYRotatesForward(t *testing.T) {
	m := NewMat4EulerY(DegToRad(90))
	p := NewVec3(0, 0, -1).Transform(m)
	if !p.Compare(NewVec3(-1, 0, 0), epsilon) {
		t.Fatalf("unexpected rotated point %+v", p)
	}
}

func TestMat4LookAtOrigin(t *testing.T) {
	view := NewMat4LookAt(NewVec3(0, 0, 5), NewVec3Zero(), NewVec3Up())
	p := NewVec3Zero().Transform(view)
	if !p.Compare(NewVec3(0, 0, -5), epsilon) {
		t.Fatalf("target should land on the -Z axis in view space, got %+v", p)
	}
}

func TestMat4Transposed(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	tr := NewMat4Transposed(m)
	if tr.Data[3] != 1 || tr.Data[7] != 2 || tr.Data[11] != 3 {
		t.Fatalf("translation column did not become a row: %+v", tr.Data)
	}
	if NewMat4Transposed(tr) != m {
		t.Fatalf("double transpose should round-trip")
	}
}

func TestMat4Perspective(t *testing.T) {
	m := NewMat4Perspective(DegToRad(60), 16.0/9.0, 0.1, 512.0)
	if m.Data[11] != -1.0 {
		t.Fatalf("perspective w row wrong: %f", m.Data[11])
	}
	if m.Data[5] >= 0 {
		t.Fatalf("Y axis must be flipped for Vulkan clip space, got %f", m.Data[5])
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Fatalf("Clamp(5,0,3) = %d", got)
	}
	if got := Clamp(-1.0, 0.0, 3.0); got != 0.0 {
		t.Fatalf("Clamp(-1,0,3) = %f", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Fatalf("Clamp(2,0,3) = %d", got)
	}
}

func TestRangeConvert(t *testing.T) {
	if got := RangeConvert(5, 0, 10, 0, 100); !floatNear(got, 50) {
		t.Fatalf("RangeConvert midpoint = %f", got)
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	if got := RadToDeg(DegToRad(137.5)); !floatNear(got, 137.5) {
		t.Fatalf("round trip = %f", got)
	}
}
