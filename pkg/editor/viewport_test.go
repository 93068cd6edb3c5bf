package editor

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/panoroom/pkg/gizmo"
	"github.com/taigrr/panoroom/pkg/layout"
	"github.com/taigrr/panoroom/pkg/math3d"
	"github.com/taigrr/panoroom/pkg/models"
	"github.com/taigrr/panoroom/pkg/render"
)

func newTestViewport(t *testing.T, edges int) *Viewport {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EdgeCount = edges
	v, err := NewViewport(render.NewFramebuffer(120, 80), cfg)
	require.NoError(t, err)
	return v
}

func handle(t *testing.T, v *Viewport, ring gizmo.Ring, index int) *gizmo.Handle {
	t.Helper()
	h, err := v.Room().Handles.Get(gizmo.HandleID{Ring: ring, Index: index})
	require.NoError(t, err)
	return h
}

// aimAt turns the panorama camera toward a handle and returns the pixel the
// handle projects to.
func aimAt(t *testing.T, v *Viewport, h *gizmo.Handle) (x, y float64) {
	t.Helper()
	p := h.Position()
	v.LookAround().Lon = mathDeg(math.Atan2(p.Z, p.X))
	v.LookAround().Lat = mathDeg(math.Atan2(p.Y, math.Hypot(p.X, p.Z)))
	v.Tick()

	fb := v.Framebuffer()
	x, y, _, visible := v.CameraModes().Active().WorldToScreen(p, fb.Width, fb.Height)
	require.True(t, visible, "handle %v should be on screen", h.ID())
	return x, y
}

func mathDeg(rad float64) float64 { return rad * 180 / math.Pi }

func TestNewViewportInvalidTarget(t *testing.T) {
	_, err := NewViewport(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = NewViewport(render.NewFramebuffer(0, 10), DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidTarget)

	cfg := DefaultConfig()
	cfg.EdgeCount = 2
	_, err = NewViewport(render.NewFramebuffer(10, 10), cfg)
	assert.ErrorIs(t, err, gizmo.ErrInvalidParameter)
}

func TestModeSwitchDetaches(t *testing.T) {
	v := newTestViewport(t, 4)
	h := handle(t, v, gizmo.Floor, 0)
	x, y := aimAt(t, v, h)

	v.PointerDown(x, y, true)
	require.Equal(t, DraggingVertex, v.Interaction())
	got, attached := v.Tool().Target()
	require.True(t, attached)
	require.Equal(t, h, got)
	assert.False(t, v.CameraModes().LookAroundEnabled(), "look-around is suspended while dragging")

	v.SetCameraMode(ModeObject)
	_, attached = v.Tool().Target()
	assert.False(t, attached)
	assert.Equal(t, Idle, v.Interaction())
	assert.False(t, v.CameraModes().Wireframe())
	assert.False(t, v.CameraModes().PickingEnabled())

	v.SetCameraMode(ModePanorama)
	_, attached = v.Tool().Target()
	assert.False(t, attached)
	assert.True(t, v.CameraModes().Wireframe())
	assert.True(t, v.CameraModes().LookAroundEnabled())
}

func TestLookAroundDelta(t *testing.T) {
	v := newTestViewport(t, 4)
	v.Tick()

	// The view center looks along +X at the horizon, between the corners.
	v.PointerDown(60, 40, true)
	require.Equal(t, LookAround, v.Interaction())

	require.NoError(t, v.PointerMove(70, 45))
	assert.InDelta(t, -1.0, v.LookAround().Lon, 1e-12)
	assert.InDelta(t, 0.5, v.LookAround().Lat, 1e-12)

	// Latitude clamps at 85 degrees.
	require.NoError(t, v.PointerMove(70, 40+2000))
	assert.InDelta(t, 85, v.LookAround().Lat, 1e-12)
	require.NoError(t, v.PointerMove(70, 40-2000))
	assert.InDelta(t, -85, v.LookAround().Lat, 1e-12)

	v.PointerUp(70, 40)
	assert.Equal(t, Idle, v.Interaction())

	// Motion after release does nothing.
	require.NoError(t, v.PointerMove(0, 0))
	assert.InDelta(t, -85, v.LookAround().Lat, 1e-12)
}

func TestLookAroundTarget(t *testing.T) {
	l := NewLookAroundController(0.1, 500, 85)
	assert.InDelta(t, 0, l.Target().Distance(math3d.V3(500, 0, 0)), 1e-9)

	l.Lon = 90
	assert.InDelta(t, 0, l.Target().Distance(math3d.V3(0, 0, 500)), 1e-9)

	l.Lon, l.Lat = 0, 85
	target := l.Target()
	assert.InDelta(t, 500*math.Sin(85*math.Pi/180), target.Y, 1e-9)
	assert.InDelta(t, 500*math.Cos(85*math.Pi/180), target.X, 1e-9)
}

func TestTickAppliesLookAround(t *testing.T) {
	v := newTestViewport(t, 4)
	v.LookAround().Lon = 90
	v.Tick()

	forward := v.CameraModes().Panorama().Forward()
	assert.InDelta(t, 0, forward.Distance(math3d.V3(0, 0, 1)), 1e-9)
}

func TestCeilingDragLayout(t *testing.T) {
	v := newTestViewport(t, 4)
	before := v.Layout()

	v.Tool().Attach(handle(t, v, gizmo.Ceiling, 0))
	require.NoError(t, v.Tool().OnDrag(math3d.V3(0, 120, 0)))
	v.Tool().Detach()

	l := v.Layout()
	assert.Equal(t, 4, l.EdgeCount)
	assert.Equal(t, 120.0, l.CeilingHeight)
	assert.Equal(t, before.Floor, l.Floor)

	half := DefaultConfig().Gizmo.Radius / math.Sqrt2
	for i, p := range l.Floor {
		assert.InDelta(t, half, math.Abs(p.X), 1e-9, "vertex %d", i)
		assert.InDelta(t, half, math.Abs(p.Z), 1e-9, "vertex %d", i)
	}
}

func TestFloorDragLayout(t *testing.T) {
	v := newTestViewport(t, 5)
	before := v.Layout()

	v.Tool().Attach(handle(t, v, gizmo.Floor, 2))
	require.NoError(t, v.Tool().OnDrag(math3d.V3(10, 0, -3)))
	v.Tool().Detach()

	l := v.Layout()
	require.Len(t, l.Floor, 6)
	assert.Equal(t, layout.Point{X: 10, Z: -3}, l.Floor[2])
	for _, i := range []int{0, 1, 3, 4, 5} {
		assert.Equal(t, before.Floor[i], l.Floor[i], "vertex %d", i)
	}
	assert.Equal(t, before.CeilingHeight, l.CeilingHeight)
}

func TestPointerDragFloorHandle(t *testing.T) {
	v := newTestViewport(t, 4)
	h := handle(t, v, gizmo.Floor, 1)
	start := h.Position()
	x, y := aimAt(t, v, h)

	v.PointerDown(x, y, true)
	require.Equal(t, DraggingVertex, v.Interaction())
	require.NoError(t, v.PointerMove(x+6, y+3))

	moved := h.Position()
	assert.Equal(t, start.Y, moved.Y, "floor handles keep their height")
	assert.NotEqual(t, start.Horizontal(), moved.Horizontal())

	v.PointerCancel()
	assert.Equal(t, Idle, v.Interaction())
	_, attached := v.Tool().Target()
	assert.False(t, attached)
}

func TestPointerDragCeilingHandle(t *testing.T) {
	v := newTestViewport(t, 4)
	h := handle(t, v, gizmo.Ceiling, 0)
	start := h.Position()
	x, y := aimAt(t, v, h)

	v.PointerDown(x, y, true)
	require.Equal(t, DraggingVertex, v.Interaction())
	require.NoError(t, v.PointerMove(x, y-5))

	assert.Equal(t, start.Horizontal(), h.Position().Horizontal())
	assert.Greater(t, h.Position().Y, start.Y)
	for c := range v.Room().Handles.Ring(gizmo.Ceiling) {
		assert.Equal(t, h.Position().Y, c.Position().Y)
	}

	v.PointerLeave()
	assert.Equal(t, Idle, v.Interaction())
}

func TestNonPrimaryPointerIgnored(t *testing.T) {
	v := newTestViewport(t, 4)
	v.PointerDown(60, 40, false)
	assert.Equal(t, Idle, v.Interaction())
}

func TestSetEdgeCountReleasesDrag(t *testing.T) {
	v := newTestViewport(t, 4)
	h := handle(t, v, gizmo.Floor, 0)
	x, y := aimAt(t, v, h)
	v.PointerDown(x, y, true)
	require.Equal(t, DraggingVertex, v.Interaction())

	require.NoError(t, v.SetEdgeCount(6))
	assert.Equal(t, Idle, v.Interaction())
	_, attached := v.Tool().Target()
	assert.False(t, attached)
	assert.Equal(t, 14, v.Room().Handles.Len())
	assert.True(t, v.CameraModes().LookAroundEnabled())
}

func TestSetEdgeCountInvalidKeepsRoom(t *testing.T) {
	v := newTestViewport(t, 4)
	room := v.Room()

	for _, n := range []int{2, 11} {
		assert.ErrorIs(t, v.SetEdgeCount(n), gizmo.ErrInvalidParameter)
		assert.Same(t, room, v.Room())
	}
}

func TestOrbitInObjectMode(t *testing.T) {
	v := newTestViewport(t, 4)
	v.SetCameraMode(ModeObject)
	v.Tick()
	before := v.CameraModes().Orbit().Position

	v.PointerDown(60, 40, true)
	require.Equal(t, Orbiting, v.Interaction())
	require.NoError(t, v.PointerMove(90, 40))
	v.PointerUp(90, 40)
	v.Tick()

	after := v.CameraModes().Orbit().Position
	assert.NotEqual(t, before, after)
	center := v.Orbit().Target
	assert.InDelta(t, before.Distance(center), after.Distance(center), 1e-6)
	_, attached := v.Tool().Target()
	assert.False(t, attached, "object mode never picks")
}

func TestOrbitZoomBounds(t *testing.T) {
	cfg := DefaultConfig()
	o := NewOrbitController(cfg, math3d.Vec3{})
	o.Zoom(-1e9)
	assert.Equal(t, cfg.OrbitMinDistance, o.Distance())
	o.Zoom(1e9)
	assert.Equal(t, cfg.OrbitMaxDistance, o.Distance())
}

func TestWheelClampsFOV(t *testing.T) {
	v := newTestViewport(t, 4)
	cam := v.CameraModes().Active()

	v.Wheel(100)
	assert.InDelta(t, 75, mathDeg(cam.FOV), 1e-9)

	v.Wheel(-100)
	assert.InDelta(t, 70, mathDeg(cam.FOV), 1e-9)

	v.Wheel(-1e6)
	assert.InDelta(t, 10, mathDeg(cam.FOV), 1e-9)
}

func TestPanoramaRotation(t *testing.T) {
	v := newTestViewport(t, 4)
	assert.ErrorIs(t, v.SetPanoramaRotation(-1), gizmo.ErrInvalidParameter)
	assert.ErrorIs(t, v.SetPanoramaRotation(360.5), gizmo.ErrInvalidParameter)
	require.NoError(t, v.SetPanoramaRotation(180))
	assert.Equal(t, 180.0, v.Rotation())

	assert.ErrorIs(t, v.SetPanorama(nil), gizmo.ErrInvalidParameter)

	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	require.NoError(t, v.SetPanorama(img))
	assert.True(t, v.HasPanorama())

	// The view center looks at a bare wall, away from every edge.
	v.Tick()
	assert.Equal(t, color.RGBA{200, 200, 200, 200}, v.Framebuffer().GetPixel(60, 40))
}

func TestTickDrawsGuideAndRoom(t *testing.T) {
	v := newTestViewport(t, 4)
	v.Tick()

	counts := map[color.RGBA]int{}
	for _, p := range v.Framebuffer().Pixels {
		counts[p]++
	}
	assert.Positive(t, counts[render.ColorBackground])
	assert.Positive(t, counts[render.ColorGuide], "guide sphere or walls")
}

func TestApplyLayoutRoundTrip(t *testing.T) {
	src := newTestViewport(t, 5)
	src.Tool().Attach(handle(t, src, gizmo.Floor, 3))
	require.NoError(t, src.Tool().OnDrag(math3d.V3(-40, 0, 12)))
	src.Tool().Attach(handle(t, src, gizmo.Ceiling, 1))
	require.NoError(t, src.Tool().OnDrag(math3d.V3(0, 90, 0)))
	src.Tool().Detach()
	require.NoError(t, src.SetPanoramaRotation(45))

	saved := src.Layout()
	dst := newTestViewport(t, 4)
	require.NoError(t, dst.ApplyLayout(saved))

	got := dst.Layout()
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, 5, got.EdgeCount)
	assert.Equal(t, 90.0, got.CeilingHeight)
	assert.Equal(t, 45.0, dst.Rotation())
	require.Len(t, got.Floor, len(saved.Floor))
	for i := range saved.Floor {
		assert.InDelta(t, saved.Floor[i].X, got.Floor[i].X, 1e-9)
		assert.InDelta(t, saved.Floor[i].Z, got.Floor[i].Z, 1e-9)
	}
}

func TestApplyLayoutInvalidKeepsRoom(t *testing.T) {
	v := newTestViewport(t, 4)
	room := v.Room()
	bad := layout.New(4, []math3d.Vec2{{X: 1, Y: 1}}, 100)
	assert.ErrorIs(t, v.ApplyLayout(bad), layout.ErrInvalidLayout)
	assert.Same(t, room, v.Room())
}

func TestGLBExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.glb")

	src := newTestViewport(t, 6)
	src.Tool().Attach(handle(t, src, gizmo.Floor, 4))
	require.NoError(t, src.Tool().OnDrag(math3d.V3(25, 0, -75)))
	src.Tool().Attach(handle(t, src, gizmo.Ceiling, 2))
	require.NoError(t, src.Tool().OnDrag(math3d.V3(0, 64, 0)))
	src.Tool().Detach()
	require.NoError(t, src.ExportGLB(path))

	dst := newTestViewport(t, 3)
	require.NoError(t, dst.ImportGLB(path))

	want, got := src.Layout(), dst.Layout()
	assert.Equal(t, 6, got.EdgeCount)
	assert.InDelta(t, 64, got.CeilingHeight, 1e-4)
	for i := range want.Floor {
		assert.InDelta(t, want.Floor[i].X, got.Floor[i].X, 1e-4, "vertex %d", i)
		assert.InDelta(t, want.Floor[i].Z, got.Floor[i].Z, 1e-4, "vertex %d", i)
	}
}

func TestImportGLBMalformedName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.glb")
	v := newTestViewport(t, 4)
	markers := []models.Marker{
		{Name: "floor:0", Position: math3d.V3(1, -150, 1)},
		{Name: "wall:x", Position: math3d.V3(2, 0, 2)},
	}
	require.NoError(t, models.SaveGLB(path, v.Room().Mesh.Drawable, markers))

	err := v.ImportGLB(path)
	assert.ErrorIs(t, err, gizmo.ErrMalformedHandleIdentity)
	assert.Equal(t, 4, v.Room().EdgeCount())
}

func TestSnapshot(t *testing.T) {
	v := newTestViewport(t, 4)
	v.Tick()
	require.NoError(t, v.Snapshot(filepath.Join(t.TempDir(), "frame.png")))
}

func TestResize(t *testing.T) {
	v := newTestViewport(t, 4)
	v.Resize(0, 0)
	v.Tick()
	v.PointerDown(1, 1, true)
	assert.Equal(t, Idle, v.Interaction())

	v.Resize(200, 100)
	assert.InDelta(t, 2.0, v.CameraModes().Panorama().AspectRatio, 1e-12)
	v.Tick()
}
