package math3d

import "math"

// Ray is a half-line starting at Origin. Dir is expected to be unit length.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// IntersectSphere returns the nearest non-negative distance at which the ray
// enters (or, starting inside, leaves) the sphere.
func (r Ray) IntersectSphere(center Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.LenSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectPlane intersects the ray with the plane through point with the
// given normal. Rays parallel to the plane or pointing away from it miss.
func (r Ray) IntersectPlane(point, normal Vec3) (Vec3, bool) {
	denom := r.Dir.Dot(normal)
	if math.Abs(denom) < 1e-9 {
		return Vec3{}, false
	}
	t := point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return Vec3{}, false
	}
	return r.At(t), true
}
