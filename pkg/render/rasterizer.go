package render

import (
	"math"

	"github.com/taigrr/panoroom/pkg/math3d"
)

// Rasterizer fills solid triangles with flat directional lighting and a
// depth buffer. The room is viewed from inside and outside, so both
// windings are drawn.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // Depth buffer (1D array, row-major)
}

// MeshRenderer is implemented by models.Mesh. Declared here so render does
// not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera: camera,
		fb:     fb,
	}
	r.Resize()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// DrawTriangleLit draws a triangle with simple two-sided directional lighting.
// Triangles with any vertex behind the camera are skipped.
func (r *Rasterizer) DrawTriangleLit(v0, v1, v2 math3d.Vec3, baseColor Color, lightDir math3d.Vec3) {
	normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	intensity := 0.3 + 0.7*math.Abs(normal.Dot(lightDir))
	color := MultiplyColor(baseColor, intensity)

	var xs, ys, zs [3]float64
	viewProj := r.camera.ViewProjectionMatrix()
	for i, v := range [3]math3d.Vec3{v0, v1, v2} {
		clip := viewProj.MulVec4(math3d.V4FromV3(v, 1))
		if clip.W <= r.camera.Near {
			return
		}
		ndc := clip.PerspectiveDivide()
		xs[i] = (ndc.X + 1) * 0.5 * float64(r.fb.Width)
		ys[i] = (1 - ndc.Y) * 0.5 * float64(r.fb.Height)
		zs[i] = ndc.Z
	}

	area := (xs[1]-xs[0])*(ys[2]-ys[0]) - (ys[1]-ys[0])*(xs[2]-xs[0])
	if area == 0 {
		return
	}

	minX := max(0, int(math.Floor(min(xs[0], xs[1], xs[2]))))
	maxX := min(r.fb.Width-1, int(math.Ceil(max(xs[0], xs[1], xs[2]))))
	minY := max(0, int(math.Floor(min(ys[0], ys[1], ys[2]))))
	maxY := min(r.fb.Height-1, int(math.Ceil(max(ys[0], ys[1], ys[2]))))

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := ((xs[1]-px)*(ys[2]-py) - (ys[1]-py)*(xs[2]-px)) / area
			w1 := ((xs[2]-px)*(ys[0]-py) - (ys[2]-py)*(xs[0]-px)) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*zs[0] + w1*zs[1] + w2*zs[2]
			idx := y*r.fb.Width + x
			if z >= r.zbuffer[idx] {
				continue
			}
			r.zbuffer[idx] = z
			r.fb.SetPixel(x, y, color)
		}
	}
}

// DrawMesh renders every triangle of a mesh in world space.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, color Color, lightDir math3d.Vec3) {
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])
		r.DrawTriangleLit(p0, p1, p2, color, lightDir)
	}
}
