package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("Identity element %d: got %v, want %v", i, m[i], want)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2, 3, 4))
	if got := m.Mul(Identity()); got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
	if got := Identity().Mul(m); got != m {
		t.Errorf("I * M = %v, want %v", got, m)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	if got := m.TransformPoint(Vec3{1, 2, 3}); got != (Vec3{11, 22, 33}) {
		t.Errorf("TransformPoint: got %v, want (11, 22, 33)", got)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 2, 2))
	if got := m.TransformDirection(Vec3{1, 0, 0}); got != (Vec3{2, 0, 0}) {
		t.Errorf("TransformDirection: got %v, want (2, 0, 0)", got)
	}
}

func TestTRSMatchesQuatRotate(t *testing.T) {
	rot := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/3))
	pos := Vec3{4, -2, 1}
	p := Vec3{1, 2, 3}

	got := TRS(pos, rot, Vec3{2, 2, 2}).TransformPoint(p)
	want := rot.Rotate(p.Scale(2)).Add(pos)
	if got.Distance(want) > 0.0001 {
		t.Errorf("TRS point: got %v, want %v", got, want)
	}

	// Same as composing the factors
	composed := Translate(pos.X, pos.Y, pos.Z).Mul(rot.ToMat4()).Mul(Scale(2, 2, 2))
	if d := composed.TransformPoint(p).Distance(got); d > 0.0001 {
		t.Errorf("TRS differs from T*R*S by %v", d)
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	m := TRS(Vec3{3, 1, -7}, QuatFromAxisAngle(Vec3{0, 1, 0}, 0.7), Vec3{1, 2, 0.5})
	inv, ok := m.AffineInverse()
	if !ok {
		t.Fatal("TRS matrix reported singular")
	}
	p := Vec3{0.25, -4, 9}

	if back := inv.TransformPoint(m.TransformPoint(p)); back.Distance(p) > 0.001 {
		t.Errorf("inverse round trip: got %v, want %v", back, p)
	}
	if prod := m.Mul(inv).TransformPoint(p); prod.Distance(p) > 0.001 {
		t.Errorf("M * inv: got %v, want %v", prod, p)
	}
}

func TestAffineInverseSingular(t *testing.T) {
	inv, ok := Scale(0, 1, 1).AffineInverse()
	if ok {
		t.Error("expected singular basis")
	}
	if inv != Identity() {
		t.Error("singular inverse should be identity")
	}
}
