package types

import (
	"math"
	"testing"
)

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))
	got := q.Rotate(Vec3{0, 0, -1})

	expected := Vec3{-1, 0, 0}
	for i := 0; i < 3; i++ {
		if delta := float64(got[i] - expected[i]); math.Abs(delta) > 1e-6 {
			t.Fatalf("expected rotated vector %v; got %v", expected, got)
		}
	}
}

func TestQuatMulComposesRotations(t *testing.T) {
	pitch := QuatFromAxisAngle(Vec3{1, 0, 0}, float32(math.Pi/2))
	yaw := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2))

	got := yaw.Mul(pitch).Normalize().Rotate(Vec3{0, 0, -1})

	// Pitch lifts -Z to +Y; the following yaw leaves +Y in place.
	expected := Vec3{0, 1, 0}
	for i := 0; i < 3; i++ {
		if delta := float64(got[i] - expected[i]); math.Abs(delta) > 1e-6 {
			t.Fatalf("expected composed rotation %v; got %v", expected, got)
		}
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{V: Vec3{0, 3, 0}, W: 4}.Normalize()
	if delta := float64(q.Len() - 1); math.Abs(delta) > 1e-6 {
		t.Fatalf("expected unit length after normalize; got %f", q.Len())
	}

	if q := (Quat{}).Normalize(); q.W != 1 || q.V != (Vec3{}) {
		t.Fatalf("expected the zero quaternion to normalize to identity; got %+v", q)
	}
}
