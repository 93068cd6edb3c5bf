package math3d

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRayIntersectSphere(t *testing.T) {
	tests := []struct {
		name   string
		ray    Ray
		center Vec3
		radius float64
		hit    bool
		dist   float64
	}{
		{"straight hit", Ray{Zero3(), V3(0, 0, -1)}, V3(0, 0, -10), 1, true, 9},
		{"miss sideways", Ray{Zero3(), V3(0, 0, -1)}, V3(5, 0, -10), 1, false, 0},
		{"behind origin", Ray{Zero3(), V3(0, 0, -1)}, V3(0, 0, 10), 1, false, 0},
		{"origin inside", Ray{Zero3(), V3(1, 0, 0)}, Zero3(), 2, true, 2},
		{"grazing", Ray{Zero3(), V3(1, 0, 0)}, V3(5, 1, 0), 1, true, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := tc.ray.IntersectSphere(tc.center, tc.radius)
			if ok != tc.hit {
				t.Fatalf("hit = %v, want %v", ok, tc.hit)
			}
			if ok && !near(d, tc.dist) {
				t.Errorf("distance = %v, want %v", d, tc.dist)
			}
		})
	}
}

func TestRayIntersectPlane(t *testing.T) {
	r := Ray{Origin: V3(0, 10, 0), Dir: V3(1, -1, 0).Normalize()}

	p, ok := r.IntersectPlane(Zero3(), Up())
	if !ok {
		t.Fatal("expected ray to hit the ground plane")
	}
	if !near(p.X, 10) || !near(p.Y, 0) || !near(p.Z, 0) {
		t.Errorf("hit point = %v, want (10, 0, 0)", p)
	}

	parallel := Ray{Origin: V3(0, 10, 0), Dir: V3(1, 0, 0)}
	if _, ok := parallel.IntersectPlane(Zero3(), Up()); ok {
		t.Error("parallel ray should miss")
	}

	away := Ray{Origin: V3(0, 10, 0), Dir: Up()}
	if _, ok := away.IntersectPlane(Zero3(), Up()); ok {
		t.Error("ray pointing away should miss")
	}
}

func TestMat4MulVec3(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(math.Pi / 2))
	got := m.MulVec3(V3(1, 0, 0))
	// RotateY(+90°) takes +X to -Z, then the translation applies.
	if !near(got.X, 1) || !near(got.Y, 2) || !near(got.Z, 2) {
		t.Errorf("got %v, want (1, 2, 2)", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if V3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	if V3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Inf vector reported as finite")
	}
}
