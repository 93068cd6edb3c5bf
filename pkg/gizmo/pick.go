package gizmo

import (
	"iter"
	"math"

	"github.com/taigrr/panoroom/pkg/math3d"
)

// RayCaster turns a normalized device coordinate into a world-space ray.
// render.Camera implements it.
type RayCaster interface {
	ScreenRay(ndc math3d.Vec2) math3d.Ray
}

// PickController hit-tests pointer rays against handle markers, each a
// sphere of Radius around the handle position.
type PickController struct {
	Radius float64
}

// Pick returns the handle nearest along the ray through ndc, or false when
// the ray misses every marker.
func (p PickController) Pick(ndc math3d.Vec2, camera RayCaster, handles iter.Seq[*Handle]) (*Handle, bool) {
	ray := camera.ScreenRay(ndc)

	var best *Handle
	bestT := math.Inf(1)
	for h := range handles {
		if h.Kind() != KindVertexHandle {
			continue
		}
		t, ok := ray.IntersectSphere(h.Position(), p.Radius)
		if ok && t < bestT {
			best, bestT = h, t
		}
	}
	return best, best != nil
}
