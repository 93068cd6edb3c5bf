package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkRaySphere(b *testing.B) {
	r := Ray{Origin: Zero3(), Dir: V3(1, 0, 0)}
	center := V3(100, 1, 0)

	for b.Loop() {
		_, _ = r.IntersectSphere(center, 5)
	}
}

func BenchmarkViewProjection(b *testing.B) {
	view := RotateY(0.3).Mul(Translate(V3(0, 0, -10)))
	proj := Perspective(math.Pi/3, 1.333, 0.1, 100.0)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}
