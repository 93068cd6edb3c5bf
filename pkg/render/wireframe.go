package render

import (
	"math"

	"github.com/taigrr/panoroom/pkg/math3d"
)

// Wireframe renders 3D line work: room edges, handle markers and the guide
// sphere shown before a panorama is loaded.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws a line in 3D space, clipped against the near plane.
// The panorama camera sits inside the room, so many edges pass behind it.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	a := w.camera.ToView(p1)
	b := w.camera.ToView(p2)

	nearZ := -w.camera.Near
	if a.Z > nearZ && b.Z > nearZ {
		return
	}
	if a.Z > nearZ {
		a = a.Lerp(b, (nearZ-a.Z)/(b.Z-a.Z))
	} else if b.Z > nearZ {
		b = b.Lerp(a, (nearZ-b.Z)/(a.Z-b.Z))
	}

	x1, y1, _ := w.camera.ViewToScreen(a, w.fb.Width, w.fb.Height)
	x2, y2, _ := w.camera.ViewToScreen(b, w.fb.Width, w.fb.Height)

	// Keep Bresenham bounded when an endpoint projects far off screen.
	limit := float64(4 * max(w.fb.Width, w.fb.Height))
	if math.Abs(x1) > limit || math.Abs(y1) > limit || math.Abs(x2) > limit || math.Abs(y2) > limit {
		var ok bool
		if x1, y1, x2, y2, ok = clipSegment(x1, y1, x2, y2, -limit, limit); !ok {
			return
		}
	}

	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), color)
}

// clipSegment clips a 2D segment to the square [lo, hi]² (Liang–Barsky).
func clipSegment(x1, y1, x2, y2, lo, hi float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x2-x1, y2-y1
	for _, e := range [4][2]float64{{-dx, x1 - lo}, {dx, hi - x1}, {-dy, y1 - lo}, {dy, hi - y1}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
	}
	if t0 > t1 {
		return 0, 0, 0, 0, false
	}
	return x1 + t0*dx, y1 + t0*dy, x1 + t1*dx, y1 + t1*dy, true
}

// DrawEdges draws indexed line segments between points.
func (w *Wireframe) DrawEdges(points []math3d.Vec3, edges [][2]int, color Color) {
	for _, e := range edges {
		w.DrawLine3D(points[e[0]], points[e[1]], color)
	}
}

// DrawMarker draws a handle marker as a filled square of the given pixel
// size. Markers behind the camera are skipped. Selected markers get a
// white outline.
func (w *Wireframe) DrawMarker(pos math3d.Vec3, size int, color Color, selected bool) {
	x, y, _, visible := w.camera.WorldToScreen(pos, w.fb.Width, w.fb.Height)
	if !visible {
		return
	}
	half := size / 2
	w.fb.DrawRect(int(x)-half, int(y)-half, size, size, color)
	if selected {
		w.fb.DrawRectOutline(int(x)-half-1, int(y)-half-1, size+2, size+2, ColorWhite)
	}
}

// DrawGuideSphere draws a latitude/longitude sphere around the origin.
func (w *Wireframe) DrawGuideSphere(radius float64, latSeg, longSeg int, color Color) {
	// Meridians: great circles rotated about the vertical axis.
	for i := range longSeg {
		yaw := math.Pi / float64(longSeg) * float64(i)
		var prev math3d.Vec3
		for j := 0; j <= longSeg; j++ {
			theta := float64(j) / float64(longSeg) * 2 * math.Pi
			p := math3d.V3(
				math.Cos(theta)*radius*math.Cos(yaw),
				math.Sin(theta)*radius,
				math.Cos(theta)*radius*math.Sin(yaw),
			)
			if j > 0 {
				w.DrawLine3D(prev, p, color)
			}
			prev = p
		}
	}

	// Parallels: horizontal circles scaled by latitude.
	for i := range latSeg {
		lat := math.Pi/float64(latSeg)*float64(i) - math.Pi/2
		y := math.Sin(lat) * radius
		r := math.Cos(lat) * radius
		var prev math3d.Vec3
		for j := 0; j <= latSeg; j++ {
			theta := float64(j) / float64(latSeg) * 2 * math.Pi
			p := math3d.V3(math.Cos(theta)*r, y, math.Sin(theta)*r)
			if j > 0 {
				w.DrawLine3D(prev, p, color)
			}
			prev = p
		}
	}
}
